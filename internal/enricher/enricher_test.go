package enricher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/riverline/enrichd/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Init()
	m.Run()
}

func TestClient_Enrich_Success(t *testing.T) {
	t.Parallel()

	var gotBody string
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		gotContentType = r.Header.Get("Content-Type")
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		gotBody = string(body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"A","price":9.99}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, zap.NewNop())
	result, err := c.Enrich(context.Background(), "https://example.com/a")
	require.NoError(t, err)

	require.Equal(t, `{"url":"https://example.com/a"}`, gotBody)
	require.Equal(t, "application/json", gotContentType)
	require.Equal(t, "A", result["title"])
	require.InDelta(t, 9.99, result["price"], 0.001)
}

func TestClient_Enrich_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	c := New(srv.URL, 50*time.Millisecond, zap.NewNop())

	start := time.Now()
	result, err := c.Enrich(context.Background(), "https://example.com/slow")
	require.Nil(t, result)
	requireKind(t, err, FailureTimeout)
	// The call must come back at the timeout boundary, not hang.
	require.Less(t, time.Since(start), time.Second)
}

func TestClient_Enrich_NonSuccessStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, zap.NewNop())
	result, err := c.Enrich(context.Background(), "https://example.com/a")
	require.Nil(t, result)
	requireKind(t, err, FailureStatus)
}

func TestClient_Enrich_BadBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, zap.NewNop())
	result, err := c.Enrich(context.Background(), "https://example.com/a")
	require.Nil(t, result)
	requireKind(t, err, FailureBadBody)
}

func TestClient_Enrich_EmptyResult(t *testing.T) {
	t.Parallel()

	// A 2xx reply whose body decodes to no fields carries no enrichment
	// and must not be reported as success.
	for name, body := range map[string]string{
		"null":        `null`,
		"emptyObject": `{}`,
	} {
		body := body
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			c := New(srv.URL, time.Second, zap.NewNop())
			result, err := c.Enrich(context.Background(), "https://example.com/a")
			require.Nil(t, result)
			requireKind(t, err, FailureBadBody)
		})
	}
}

func TestClient_Enrich_ConnectionRefused(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	c := New(endpoint, time.Second, zap.NewNop())
	result, err := c.Enrich(context.Background(), "https://example.com/a")
	require.Nil(t, result)
	requireKind(t, err, FailureTransport)
}

func requireKind(t *testing.T, err error, kind FailureKind) {
	t.Helper()
	require.Error(t, err)
	var enrichErr *Error
	require.ErrorAs(t, err, &enrichErr)
	require.Equal(t, kind, enrichErr.Kind)
}
