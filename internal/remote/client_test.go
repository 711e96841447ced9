package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nhle/notifeed/internal/credential"
	"github.com/nhle/notifeed/internal/model"
)

type recorded struct {
	method string
	path   string
	auth   string
	body   int64
}

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, recorded{
			method: r.Method,
			path:   r.URL.EscapedPath(),
			auth:   r.Header.Get("Authorization"),
			body:   r.ContentLength,
		})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestListTargets(t *testing.T) {
	items := []model.Notification{
		{ID: "1", Type: model.TypeAnimal, Title: "Fox", CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{ID: "2", Type: model.TypePlant, Title: "Fern", Read: true},
	}
	srv, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(items)
	})
	c := NewClient(srv.URL+"/", credential.Static("tok"))

	filters := []model.Filter{
		{},
		{UnreadOnly: true},
		{Type: model.TypeWeather},
		{Type: model.TypeMedical, UnreadOnly: true},
	}
	for _, f := range filters {
		got, err := c.List(context.Background(), model.ResolveTarget(f))
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, model.ID("1"), got[0].ID)
		require.True(t, got[1].Read)
	}

	require.Len(t, *calls, 4)
	paths := []string{
		"/notifications",
		"/notifications/unread",
		"/notifications/type/weather",
		"/notifications/type/medical/unread",
	}
	for i, call := range *calls {
		require.Equal(t, http.MethodGet, call.method)
		require.Equal(t, paths[i], call.path)
		require.Equal(t, "Bearer tok", call.auth)
	}
}

func TestListNullBody(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("null"))
	})
	got, err := NewClient(srv.URL, credential.Static("tok")).List(context.Background(), model.QueryTarget{})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestMutations(t *testing.T) {
	srv, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	c := NewClient(srv.URL, credential.Static("tok"))
	ctx := context.Background()

	require.NoError(t, c.MarkRead(ctx, "a/b"))
	require.NoError(t, c.MarkAllRead(ctx))
	require.NoError(t, c.GenerateDynamic(ctx))

	require.Equal(t, []recorded{
		{method: http.MethodPut, path: "/notifications/a%2Fb/read", auth: "Bearer tok"},
		{method: http.MethodPut, path: "/notifications/read-all", auth: "Bearer tok"},
		{method: http.MethodPost, path: "/notifications/generate-dynamic", auth: "Bearer tok"},
	}, *calls)
}

func TestGenerateIgnoresResponseBody(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	})
	require.NoError(t, NewClient(srv.URL, credential.Static("tok")).GenerateDynamic(context.Background()))
}

func TestUnauthorizedIsAuthError(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		})
		_, err := NewClient(srv.URL, credential.Static("tok")).List(context.Background(), model.QueryTarget{})
		require.Error(t, err)
		require.True(t, IsAuthError(err), "status %d", code)
	}
}

func TestMissingCredentialIsAuthError(t *testing.T) {
	srv, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	err := NewClient(srv.URL, credential.Static("")).MarkAllRead(context.Background())
	require.True(t, IsAuthError(err))
	require.ErrorIs(t, err, credential.ErrNoCredential)
	require.Empty(t, *calls)
}

func TestServerErrorIsStatusError(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	err := NewClient(srv.URL, credential.Static("tok")).MarkRead(context.Background(), "7")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusInternalServerError, statusErr.Code)
	require.Equal(t, "boom", statusErr.Body)
	require.False(t, IsAuthError(err))
}

func TestRateLimitNotRetriedByDefault(t *testing.T) {
	var hits atomic.Int32
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})
	err := NewClient(srv.URL, credential.Static("tok")).MarkAllRead(context.Background())

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusTooManyRequests, statusErr.Code)
	require.Equal(t, int32(1), hits.Load())
}

func TestRateLimitRetriedWhenEnabled(t *testing.T) {
	var hits atomic.Int32
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("[]"))
	})
	c := NewClient(srv.URL, credential.Static("tok"), WithMaxRetries(1))

	got, err := c.List(context.Background(), model.QueryTarget{})
	require.NoError(t, err)
	require.Empty(t, got)
	require.Equal(t, int32(2), hits.Load())
}

func TestRetryAfterDuration(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	require.Equal(t, time.Second, retryAfterDuration(resp, 0))
	require.Equal(t, 4*time.Second, retryAfterDuration(resp, 2))
	require.Equal(t, 30*time.Second, retryAfterDuration(resp, 10))

	resp.Header.Set("Retry-After", "3")
	require.Equal(t, 3*time.Second, retryAfterDuration(resp, 0))
}
