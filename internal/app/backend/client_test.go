package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"clientadmin/internal/app/ds"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	method, path, outcome string
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (f *fakeRecorder) ObserveRequest(method, path, outcome string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{method, path, outcome})
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 2*time.Second, opts...)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestListSendsActiveFilterAndKeepsOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, ClientPath, r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("is_active"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"success":    true,
			"statusCode": "200",
			"msg":        "ok",
			"data": []ds.Client{
				{ClientCompID: 3, ClientCompCode: "C003", ClientCompName: "Zeta", IsActive: true},
				{ClientCompID: 1, ClientCompCode: "C001", ClientCompName: "Acme", IsActive: true},
			},
		})
	})

	items, err := c.Clients().List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(3), items[0].ClientCompID)
	assert.Equal(t, int64(1), items[1].ClientCompID)
}

func TestListEmptyDataIsEmptySlice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true, "data": nil})
	})

	items, err := c.Products().List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestNon2xxIsStatusErrorWithoutReadingEnvelope(t *testing.T) {
	rec := &fakeRecorder{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// a successful-looking envelope must not rescue a 500
		writeJSON(t, w, http.StatusInternalServerError, map[string]any{"success": true, "data": []ds.Client{{ClientCompID: 1}}})
	}, WithRecorder(rec))

	_, err := c.Clients().List(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatus))

	var berr *Error
	require.True(t, errors.As(err, &berr))
	assert.Equal(t, http.StatusInternalServerError, berr.Status)
	assert.Equal(t, "list", berr.Op)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, recordedCall{http.MethodGet, ClientPath, "status"}, rec.calls[0])
}

func TestUndecodableBodyIsDecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "<html>gateway</html>")
	})

	_, err := c.Subscriptions().List(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(srv.URL, time.Second)

	_, err := c.Licenses().List(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestExplicitSuccessFalseIsRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"success": false, "statusCode": "409", "msg": "duplicate name"})
	})

	_, err := c.Clients().Create(context.Background(), ds.CreateClientRequest{ClientCompName: "Acme"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRejected))
	assert.Contains(t, err.Error(), "duplicate name")
}

func TestCreateReturnsServerRecord(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Acme", body["client_comp_name"])
		assert.NotContains(t, body, "client_comp_code")

		writeJSON(t, w, http.StatusCreated, map[string]any{
			"success": true,
			"data": []ds.Client{{
				ClientCompID: 7, ClientCompCode: "C007", ClientCompName: "Acme", ClientCompShortName: "ACM", IsActive: true,
			}},
		})
	})

	created, err := c.Clients().Create(context.Background(), ds.CreateClientRequest{
		ClientCompName: "Acme", ClientCompShortName: "ACM", IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ClientCompID)
	assert.Equal(t, "C007", created.ClientCompCode)
}

func TestCreateWithoutDataFails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true, "data": []ds.Client{}})
	})

	_, err := c.Clients().Create(context.Background(), ds.CreateClientRequest{ClientCompName: "Acme"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyData))
}

func TestUpdateEchoAndEmptyBody(t *testing.T) {
	echo := true
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		if !echo {
			w.WriteHeader(http.StatusOK)
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"success": true,
			"data":    []ds.Subscription{{SubscriptionID: 4, SubscriptionPrice: 149.5}},
		})
	})

	got, err := c.Subscriptions().Update(context.Background(), ds.UpdateSubscriptionRequest{SubscriptionID: 4, SubscriptionPrice: 150})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 149.5, got.SubscriptionPrice)

	echo = false
	got, err = c.Subscriptions().Update(context.Background(), ds.UpdateSubscriptionRequest{SubscriptionID: 4})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeactivateSendsIDAndInactiveFlag(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, ProductPath, r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(12), body["main_app_id"])
		assert.Equal(t, false, body["is_active"])
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Products().Deactivate(context.Background(), 12))
}

func TestMutationsOnlyCheckSuccess(t *testing.T) {
	bodies := []string{
		`{"success":true,"data":{"affected_rows":1}}`,
		`{"success":true,"data":"ok"}`,
		`{"success":true,"data":[{"affected_rows":1}]}`,
		`updated`,
	}
	for _, body := range bodies {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = io.WriteString(w, body)
		})

		require.NoError(t, c.Subscriptions().Deactivate(context.Background(), 4), body)

		got, err := c.Subscriptions().Update(context.Background(), ds.UpdateSubscriptionRequest{SubscriptionID: 4})
		require.NoError(t, err, body)
		if got != nil {
			assert.Zero(t, got.SubscriptionID, body)
		}
	}
}

func TestMutationRejectedStillFails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"success": false, "msg": "in use", "data": map[string]any{}})
	})

	err := c.Products().Deactivate(context.Background(), 12)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRejected))
	assert.Contains(t, err.Error(), "in use")

	_, err = c.UpdatePlan(context.Background(), ds.UpdatePlanRequest{ClientCompCode: "C001"})
	assert.True(t, errors.Is(err, ErrRejected))
}

func TestGetScansForID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("client_subscription_id"))
		// backend ignores the filter and returns everything
		writeJSON(t, w, http.StatusOK, map[string]any{
			"data": []ds.License{{ClientSubscriptionID: 1}, {ClientSubscriptionID: 5, ClientCompCode: "C005"}},
		})
	})

	got, err := c.Licenses().Get(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "C005", got.ClientCompCode)

	_, err = c.Licenses().Get(context.Background(), 9)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestTokenAndSignin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, SigninPath, r.URL.Path)
		assert.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))
		var body ds.SigninRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.UserPwd != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"success": true,
			"data":    []ds.User{{UserID: 2, UserEmail: body.UserEmail, UserName: "Ops"}},
		})
	}, WithToken("svc-token"))

	user, err := c.Signin(context.Background(), ds.SigninRequest{UserEmail: "ops@example.com", UserPwd: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), user.UserID)

	_, err = c.Signin(context.Background(), ds.SigninRequest{UserEmail: "ops@example.com", UserPwd: "wrong!"})
	assert.True(t, errors.Is(err, ErrStatus))
}

func TestUpdatePlan(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UpdatePlanPath, r.URL.Path)
		assert.Equal(t, http.MethodPut, r.Method)
		writeJSON(t, w, http.StatusOK, map[string]any{
			"success": true,
			"data":    []ds.License{{ClientSubscriptionID: 3, SubscriptionID: 8}},
		})
	})

	got, err := c.UpdatePlan(context.Background(), ds.UpdatePlanRequest{ClientCompCode: "C001", SubscriptionID: 8, MainAppID: 2, IsActive: true})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(8), got.SubscriptionID)
}

func TestContextCancellationAbortsRequest(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Clients().List(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
}
