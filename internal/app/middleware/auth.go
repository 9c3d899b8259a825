package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"clientadmin/internal/app/config"
	"clientadmin/internal/app/ds"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/sirupsen/logrus"
)

const issuer = "clientadmin"

// Blacklist holds revoked tokens.
type Blacklist interface {
	WriteJWTToBlacklist(ctx context.Context, token string, ttl time.Duration) error
	CheckJWTInBlacklist(ctx context.Context, token string) (bool, error)
}

type AuthMiddleware struct {
	Blacklist Blacklist
	Config    *config.Config
}

func NewAuthMiddleware(blacklist Blacklist, cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{
		Blacklist: blacklist,
		Config:    cfg,
	}
}

// WithAuthCheck guards the admin routes with a bearer JWT. With auth disabled
// every request runs as the local operator.
func (am *AuthMiddleware) WithAuthCheck() gin.HandlerFunc {
	return func(gCtx *gin.Context) {
		if !am.Config.Auth.Enabled {
			setCurrentUser(gCtx, LocalOperator, "")
			gCtx.Next()
			return
		}

		jwtStr := BearerToken(gCtx.GetHeader("Authorization"))
		if jwtStr == "" {
			gCtx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		revoked, err := am.Blacklist.CheckJWTInBlacklist(gCtx.Request.Context(), jwtStr)
		if err != nil {
			logrus.Errorf("token blacklist unavailable: %v", err)
			gCtx.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		if revoked {
			gCtx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := am.ParseToken(jwtStr)
		if err != nil {
			gCtx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		setCurrentUser(gCtx, CurrentUser{ID: claims.UserID, Email: claims.UserEmail}, jwtStr)
		gCtx.Next()
	}
}

// IssueToken signs a session token for a user the backend accepted.
func (am *AuthMiddleware) IssueToken(user ds.User) (string, time.Time, error) {
	issued := time.Now()
	expires := issued.Add(am.Config.JWT.ExpiresIn)
	token := jwt.NewWithClaims(am.Config.JWT.SigningMethod, ds.JWTClaims{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expires.Unix(),
			IssuedAt:  issued.Unix(),
			Issuer:    issuer,
		},
		UserID:    user.UserID,
		UserEmail: user.UserEmail,
	})

	signed, err := token.SignedString([]byte(am.Config.JWT.Token))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ParseToken validates the signature, signing method and expiry of a token.
func (am *AuthMiddleware) ParseToken(tokenString string) (*ds.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ds.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != am.Config.JWT.SigningMethod.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(am.Config.JWT.Token), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*ds.JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// Revoke blacklists a token for the rest of its lifetime.
func (am *AuthMiddleware) Revoke(ctx context.Context, tokenString string) error {
	claims, err := am.ParseToken(tokenString)
	if err != nil {
		return err
	}

	ttl := time.Until(time.Unix(claims.ExpiresAt, 0))
	if ttl <= 0 {
		return nil
	}
	return am.Blacklist.WriteJWTToBlacklist(ctx, tokenString, ttl)
}

// BearerToken strips the "Bearer " prefix if present.
func BearerToken(header string) string {
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
