package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/countrybook/internal/client/metrics"
	"github.com/dmitrijs2005/countrybook/internal/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL+"/api", opts...)
	require.NoError(t, err)
	return c
}

func TestNewClient_RejectsBadURL(t *testing.T) {
	_, err := NewClient("ftp://example.com")
	require.Error(t, err)

	_, err = NewClient("://nope")
	require.Error(t, err)
}

func TestDo_SetsHeadersAndDecodes(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"msg":"ok"}`))
	}, WithRequestID(func() string { return "rid-1" }))

	var out messageResponse
	err := c.do(context.Background(), call{op: "x", method: http.MethodPost, path: "auth/login", body: map[string]string{"a": "b"}, out: &out})
	require.NoError(t, err)

	assert.Equal(t, "ok", out.text())
	assert.Equal(t, "/api/auth/login", got.URL.Path)
	assert.Equal(t, "rid-1", got.Header.Get(common.RequestIDHeader))
	assert.Equal(t, common.ContentTypeJSON, got.Header.Get("Content-Type"))
	assert.Empty(t, got.Header.Get(common.AuthorizationHeader))
}

func TestDo_EscapesPathSegments(t *testing.T) {
	var rawPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := NewCountries(c).ByName(context.Background(), "united states/x")
	require.NoError(t, err)
	assert.Equal(t, "/api/name/united%20states%2Fx", rawPath)
}

func TestDo_DotSegmentsStayInsideEndpoint(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.EscapedPath())
		mu.Unlock()
		_, _ = w.Write([]byte(`{"favorite":null}`))
	})
	ctx := context.Background()
	countries := NewCountries(c)
	backend := NewBackend(c, AuthorizerFunc(func(*http.Request) error { return nil }))

	_, _ = countries.ByName(ctx, "..")
	_, _ = countries.ByRegion(ctx, " . ")
	_, _ = backend.RemoveFavorite(ctx, "..")
	_, _ = backend.ResetPassword(ctx, "..", "secret12")
	_, _ = backend.UserByID(ctx, "a/..")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"GET /api/name/%2E%2E",
		"GET /api/region/%2E",
		"DELETE /api/favourites/%2E%2E",
		"PUT /api/auth/reset-password/%2E%2E",
		"GET /api/users/a%2F..",
	}, seen)
}

func TestSegment(t *testing.T) {
	tests := map[string]string{
		"France":  "France",
		" de ":    "de",
		".":       "%2E",
		"..":      "%2E%2E",
		"...":     "...",
		"a b/c":   "a%20b%2Fc",
		"..%2F..": "..%252F..",
	}
	for in, want := range tests {
		assert.Equal(t, want, segment(in), in)
	}
}

func TestDo_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    Kind
		message string
		fields  map[string]string
	}{
		{"bad request msg", 400, `{"msg":"Invalid credentials"}`, KindValidation, "Invalid credentials", nil},
		{"conflict message", 409, `{"message":"Email taken"}`, KindValidation, "Email taken", nil},
		{"unprocessable with fields", 422, `{"error":"Bad input","errors":{"email":"invalid email","name":{"message":"too long"}}}`,
			KindValidation, "Bad input", map[string]string{"email": "invalid email", "name": "too long"}},
		{"field list", 400, `{"errors":[{"path":"password","msg":"too short"}]}`,
			KindValidation, "", map[string]string{"password": "too short"}},
		{"unauthorized", 401, `{"msg":"Token is not valid"}`, KindAuth, "Token is not valid", nil},
		{"forbidden", 403, ``, KindAuth, "", nil},
		{"not found", 404, `{"status":404,"message":"Not Found"}`, KindNotFound, "Not Found", nil},
		{"bad gateway", 502, `{"msg":"upstream down"}`, KindNetwork, "", nil},
		{"server error", 500, `<html>oops</html>`, KindUnknown, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := c.do(context.Background(), call{op: "op", method: http.MethodGet, path: "x"})
			require.Error(t, err)

			var ge *Error
			require.ErrorAs(t, err, &ge)
			assert.Equal(t, tt.kind, ge.Kind)
			assert.Equal(t, tt.status, ge.Status)
			assert.Equal(t, tt.message, ge.Message)
			assert.Equal(t, tt.fields, ge.Fields)
			assert.NotEmpty(t, ge.RequestID)
		})
	}
}

func TestDo_TransportFailureIsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	err = c.do(context.Background(), call{op: "all", method: http.MethodGet, path: "all"})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, networkMessage, err.Error())
}

func TestDo_DeadlineIsNetwork(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.do(ctx, call{op: "all", method: http.MethodGet, path: "all"})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDo_UndecodableBodyIsUnknown(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	var out []int
	err := c.do(context.Background(), call{op: "all", method: http.MethodGet, path: "all", out: &out})
	assert.Equal(t, KindUnknown, KindOf(err))
}

func TestDo_Authorizer(t *testing.T) {
	var header string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get(common.AuthorizationHeader)
	})

	auth := AuthorizerFunc(func(req *http.Request) error {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+"tok")
		return nil
	})
	require.NoError(t, c.do(context.Background(), call{op: "p", method: http.MethodGet, path: "users", auth: auth}))
	assert.Equal(t, "Bearer tok", header)

	denied := AuthorizerFunc(func(*http.Request) error { return errors.New("not logged in") })
	err := c.do(context.Background(), call{op: "p", method: http.MethodGet, path: "users", auth: denied})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "not logged in", err.Error())
}

func TestDo_RecordsMetrics(t *testing.T) {
	m := metrics.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, WithMetrics(m))

	_ = c.do(context.Background(), call{op: "by_name", method: http.MethodGet, path: "name/x"})

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Failures.WithLabelValues("by_name", "not_found")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}
