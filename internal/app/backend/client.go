package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"clientadmin/internal/app/ds"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	ClientPath       = "/api/v1/client-comp"
	ProductPath      = "/api/v1/main-app"
	SubscriptionPath = "/api/v1/subscription"
	LicensePath      = "/api/v1/client-subscription"
	UpdatePlanPath   = "/api/v1/client-subscription/update-plan"
	SigninPath       = "/api/v1/user/signin"
)

// Recorder receives one observation per backend call.
type Recorder interface {
	ObserveRequest(method, path, outcome string, elapsed time.Duration)
}

// Client talks JSON to the remote CRUD backend.
type Client struct {
	baseURL  string
	token    string
	http     *http.Client
	recorder Recorder
}

type Option func(*Client)

// WithToken sends a static bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// call performs one request and decodes the envelope strictly. An empty 2xx body yields a zero envelope.
func call[T any](ctx context.Context, c *Client, op, method, path string, query url.Values, body any) (env Envelope[T], err error) {
	err = c.roundTrip(ctx, op, method, path, query, body, func(raw []byte) (string, error) {
		if err := json.Unmarshal(raw, &env); err != nil {
			return "", fmt.Errorf("%w: %v", ErrDecode, err)
		}
		if env.rejected() {
			return env.Msg, ErrRejected
		}
		return env.Msg, nil
	})
	return env, err
}

// mutate performs an update-style request. Only an explicit success=false fails
// it; data[0] is returned when it decodes as T and ignored otherwise.
func mutate[T any](ctx context.Context, c *Client, op, method, path string, body any) (echo *T, err error) {
	err = c.roundTrip(ctx, op, method, path, nil, body, func(raw []byte) (string, error) {
		var status statusEnvelope
		if err := json.Unmarshal(raw, &status); err != nil {
			logrus.Debugf("%s %s: success body not an envelope, ignored: %v", method, path, err)
			return "", nil
		}
		if status.rejected() {
			return status.Msg, ErrRejected
		}
		var rows []T
		if len(status.Data) > 0 && json.Unmarshal(status.Data, &rows) == nil && len(rows) > 0 {
			echo = &rows[0]
		}
		return status.Msg, nil
	})
	return echo, err
}

// roundTrip sends one request and hands a non-empty 2xx body to decode.
func (c *Client) roundTrip(ctx context.Context, op, method, path string, query url.Values, body any, decode func(raw []byte) (string, error)) (err error) {
	started := time.Now()
	status := 0
	msg := ""
	defer func() {
		if c.recorder != nil {
			c.recorder.ObserveRequest(method, path, outcome(err), time.Since(started))
		}
		if err != nil {
			err = &Error{Op: op, Method: method, Path: path, Status: status, Msg: msg, Err: err}
		}
	}()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrStatus
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	msg, err = decode(raw)
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrStatus):
		return "status"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrRejected):
		return "rejected"
	default:
		return "error"
	}
}

// Signin checks staff credentials against the backend.
func (c *Client) Signin(ctx context.Context, req ds.SigninRequest) (ds.User, error) {
	env, err := call[ds.User](ctx, c, "signin", http.MethodPost, SigninPath, nil, req)
	if err != nil {
		logrus.Warnf("backend signin failed for %s: %v", req.UserEmail, err)
		return ds.User{}, err
	}

	user, ok := env.First()
	if !ok {
		// some backend builds answer signin with an empty data array
		user = ds.User{UserEmail: req.UserEmail}
	}
	return user, nil
}
