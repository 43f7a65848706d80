package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
	"github.com/amply-impact/amply/internal/metrics"
)

type widget struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) (*Client, *metrics.Metrics) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	_, m := metrics.NewRegistry()
	c := New(Options{
		BaseURL:      server.URL + "/v1",
		QueryRetries: 1,
		RetryDelay:   time.Millisecond,
		Tokens:       TokenFunc(func() string { return token }),
		Metrics:      m,
	})
	return c, m
}

func TestGetAttachesHeadersAndDecodes(t *testing.T) {
	c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/widgets/mine", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		json.NewEncoder(w).Encode(widget{ID: "w1", Name: "Button"})
	}, "tok-123")

	var got widget
	err := c.Get(context.Background(), "/widgets/mine", &got, WithQuery(url.Values{"page": {"2"}}))
	require.NoError(t, err)
	assert.Equal(t, widget{ID: "w1", Name: "Button"}, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIRequests.WithLabelValues("GET", "/widgets/mine", "2xx")))
}

func TestUserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "amply-cli/1.0.0 (linux/amd64; abc)", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	c := New(Options{BaseURL: server.URL, UserAgent: "amply-cli/1.0.0 (linux/amd64; abc)"})
	require.NoError(t, c.Get(context.Background(), "/auth/me", nil))
}

func TestNoAuthorizationWithoutToken(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}, "")

	require.NoError(t, c.Post(context.Background(), "/auth/logout", nil, nil))
}

func TestUnauthorizedEndsSessionBeforeReturning(t *testing.T) {
	c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"token_expired","message":"expired"}}`))
	}, "stale")

	var hookCalls int32
	c.OnUnauthorized(func(ctx context.Context) { atomic.AddInt32(&hookCalls, 1) })

	for _, call := range []func() error{
		func() error { return c.Get(context.Background(), "/organizations/mine/donations", nil) },
		func() error { return c.Patch(context.Background(), "/organizations/mine", map[string]string{"city": "Berlin"}, nil) },
		func() error { return c.Delete(context.Background(), "/widgets/mine/w1", nil) },
	} {
		err := call()
		require.Error(t, err)
		assert.True(t, errors.Is(err, amplyerrors.ErrSessionExpired))
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&hookCalls), "every 401 triggers the hook, queries are not retried on 401")
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SessionExpirations))
}

func TestAnonymous401IsAnOrdinaryError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"), "anonymous requests never carry the token")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"invalid_credentials","message":"Invalid email or password"}}`))
	}, "existing-session")

	hookCalled := false
	c.OnUnauthorized(func(context.Context) { hookCalled = true })

	err := c.Post(context.Background(), "/auth/login", map[string]string{"email": "a@b.c"}, nil, Anonymous())
	require.Error(t, err)
	assert.False(t, hookCalled)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid_credentials", apiErr.Code)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
}

func TestExplicitTokenDoesNotTouchSession(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer fresh", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}, "existing-session")

	hookCalled := false
	c.OnUnauthorized(func(context.Context) { hookCalled = true })

	err := c.Get(context.Background(), "/auth/me", nil, WithToken("fresh"))
	require.Error(t, err)
	assert.False(t, hookCalled)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
}

func TestStructuredErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantCode    string
		wantMessage string
		wantParam   string
		wantAmply   amplyerrors.ErrorCode
	}{
		{
			name:        "envelope",
			status:      http.StatusUnprocessableEntity,
			body:        `{"error":{"code":"validation_error","message":"Goal must be positive","param":"goal_amount"}}`,
			wantCode:    "validation_error",
			wantMessage: "Goal must be positive",
			wantParam:   "goal_amount",
			wantAmply:   amplyerrors.ErrCodeFieldInvalid,
		},
		{
			name:        "non json body",
			status:      http.StatusForbidden,
			body:        `<html>forbidden</html>`,
			wantCode:    "unknown",
			wantMessage: "An error occurred",
			wantAmply:   amplyerrors.ErrCodeAPIResponse,
		},
		{
			name:        "empty body",
			status:      http.StatusNotFound,
			wantCode:    "unknown",
			wantMessage: "An error occurred",
			wantAmply:   amplyerrors.ErrCodeAPIResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, "tok")

			err := c.Post(context.Background(), "/campaigns/mine", map[string]any{}, nil)
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.wantParam, apiErr.Param)
			assert.NotEmpty(t, apiErr.RequestID)
			assert.Equal(t, tt.wantAmply, amplyerrors.CodeOf(err))
		})
	}
}

func TestQueriesRetryOnceOnServerError(t *testing.T) {
	var calls int32
	c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(widget{ID: "w1"})
	}, "tok")

	var got widget
	require.NoError(t, c.Get(context.Background(), "/widgets/mine/w1", &got))
	assert.Equal(t, "w1", got.ID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIRetries.WithLabelValues("/widgets/mine/w1")))
}

func TestQueriesGiveUpAfterOneRetry(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, "tok")

	err := c.Get(context.Background(), "/giving/summary", nil)
	assert.True(t, IsStatus(err, http.StatusServiceUnavailable))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestMutationsNeverRetry(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodPatch, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			var calls int32
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(http.StatusInternalServerError)
			}, "tok")

			var err error
			switch method {
			case http.MethodPost:
				err = c.Post(context.Background(), "/organizations/mine/funds", map[string]string{"name": "x"}, nil)
			case http.MethodPatch:
				err = c.Patch(context.Background(), "/organizations/mine/funds/f1", map[string]string{"name": "x"}, nil)
			case http.MethodDelete:
				err = c.Delete(context.Background(), "/widgets/mine/w1", nil)
			}
			require.Error(t, err)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		})
	}
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}, "tok")

	require.Error(t, c.Get(context.Background(), "/campaigns/mine/missing", nil))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNetworkErrorIsCoded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := server.URL
	server.Close()

	c := New(Options{BaseURL: base, RetryDelay: time.Millisecond})
	err := c.Get(context.Background(), "/auth/me", nil)
	require.Error(t, err)
	assert.Equal(t, amplyerrors.CategoryServer, amplyerrors.CategoryOf(err))
}

func TestCancelledContext(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, "tok")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.Get(ctx, "/giving/history", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDecodeError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 12`))
	}, "tok")

	var got widget
	err := c.Get(context.Background(), "/widgets/mine/w1", &got)
	assert.Equal(t, amplyerrors.ErrCodeAPIDecode, amplyerrors.CodeOf(err))
}

func TestEndpointLabel(t *testing.T) {
	tests := map[string]string{
		"/organizations/mine/funds":                            "/organizations/mine/funds",
		"/campaigns/mine/3f2b8c1e-9d4a-4e8b-a1c2-0f9e8d7c6b5a": "/campaigns/mine/:id",
		"/widgets/mine/42?x=1":                                 "/widgets/mine/:id",
	}
	for in, want := range tests {
		assert.Equal(t, want, EndpointLabel(in))
	}
}
