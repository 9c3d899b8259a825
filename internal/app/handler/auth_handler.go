package handler

import (
	"errors"
	"net/http"
	"time"

	"clientadmin/internal/app/backend"
	"clientadmin/internal/app/ds"
	"clientadmin/internal/app/dto"
	"clientadmin/internal/app/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Signin checks staff credentials against the backend and issues a session token
// @Summary Sign in
// @Description Verifies credentials with the backend and returns a JWT for the admin routes
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.SigninRequest true "Credentials"
// @Success 200 {object} dto.SigninResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/auth/signin [post]
func (h *Handler) Signin(c *gin.Context) {
	var req dto.SigninRequest
	if !h.bind(c, &req) {
		return
	}

	user, err := h.Signer.Signin(c.Request.Context(), ds.SigninRequest{
		UserEmail: req.UserEmail,
		UserPwd:   req.UserPwd,
	})
	if err != nil {
		if rejectedCredentials(err) {
			h.errorResponse(c, http.StatusUnauthorized, "invalid email or password")
			return
		}
		logrus.Error("Error signing in: ", err)
		h.errorResponse(c, http.StatusBadGateway, "sign in is unavailable, please try again")
		return
	}

	token, expires, err := h.Auth.IssueToken(user)
	if err != nil {
		logrus.Error("Error issuing token: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "failed to issue token")
		return
	}

	c.JSON(http.StatusOK, dto.SigninResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(time.Until(expires).Seconds()),
		User:      user,
	})
}

// rejectedCredentials reports whether the backend refused the credentials
// rather than failing to answer.
func rejectedCredentials(err error) bool {
	if errors.Is(err, backend.ErrRejected) {
		return true
	}
	var berr *backend.Error
	if errors.As(err, &berr) {
		return berr.Status >= 400 && berr.Status < 500
	}
	return false
}

// Logout revokes the current token
// @Summary Sign out
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SuccessResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	if token := middleware.GetTokenFromContext(c); token != "" {
		if err := h.Auth.Revoke(c.Request.Context(), token); err != nil {
			logrus.Error("Error revoking token: ", err)
			h.errorResponse(c, http.StatusInternalServerError, "failed to sign out")
			return
		}
	}
	h.successResponse(c, http.StatusOK, "signed out", nil)
}

// Profile
// @Summary Current user
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} middleware.CurrentUser
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/auth/profile [get]
func (h *Handler) Profile(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		h.errorResponse(c, http.StatusUnauthorized, "not signed in")
		return
	}
	c.JSON(http.StatusOK, user)
}
