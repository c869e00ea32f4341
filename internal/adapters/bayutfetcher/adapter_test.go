package bayutfetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"bayut-parser-service/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/to-rent/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Seen-Language", r.Header.Get("Accept-Language"))
		if r.Header.Get("User-Agent") == "" {
			http.Error(w, "no agent", http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte("<html><body>" + r.Header.Get("Accept-Language") + "</body></html>"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte("late"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestAdapter(t *testing.T, baseURL string) *BayutFetcherAdapter {
	a, err := NewBayutFetcherAdapter(Config{BaseURL: baseURL, Timeout: 2 * time.Second})
	require.NoError(t, err)
	return a
}

func TestFetchPage(t *testing.T) {
	srv := newTestServer(t)
	a := newTestAdapter(t, srv.URL)

	body, err := a.FetchPage(context.Background(), srv.URL+"/to-rent/2-bedroom-property/dubai/dubai-marina/")
	require.NoError(t, err)
	assert.Contains(t, string(body), "en-US,en;q=0.5")

	// повторный запрос того же адреса разрешен
	_, err = a.FetchPage(context.Background(), srv.URL+"/to-rent/2-bedroom-property/dubai/dubai-marina/")
	require.NoError(t, err)
}

func TestFetchPageHTTPError(t *testing.T) {
	srv := newTestServer(t)
	a := newTestAdapter(t, srv.URL)

	_, err := a.FetchPage(context.Background(), srv.URL+"/missing")
	assert.ErrorIs(t, err, domain.ErrFetch)
}

func TestFetchPageForeignDomain(t *testing.T) {
	srv := newTestServer(t)
	a := newTestAdapter(t, "https://www.bayut.com")

	_, err := a.FetchPage(context.Background(), srv.URL+"/to-rent/")
	assert.ErrorIs(t, err, domain.ErrFetch)
}

func TestFetchPageCanceledDuringDelay(t *testing.T) {
	srv := newTestServer(t)
	a := newTestAdapter(t, srv.URL)
	a.minDelay = time.Hour
	a.maxDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := a.FetchPage(ctx, srv.URL+"/to-rent/")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetchPageWaitsBeforeRequest(t *testing.T) {
	srv := newTestServer(t)
	a := newTestAdapter(t, srv.URL)
	a.minDelay = 5 * time.Millisecond
	a.maxDelay = 10 * time.Millisecond

	var slept atomic.Int64
	a.sleep = func(ctx context.Context, d time.Duration) error {
		slept.Add(int64(d))
		return nil
	}

	_, err := a.FetchPage(context.Background(), srv.URL+"/to-rent/")
	require.NoError(t, err)
	got := time.Duration(slept.Load())
	assert.GreaterOrEqual(t, got, 5*time.Millisecond)
	assert.LessOrEqual(t, got, 10*time.Millisecond)
}

func TestFetchPageTimeout(t *testing.T) {
	srv := newTestServer(t)
	a, err := NewBayutFetcherAdapter(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = a.FetchPage(context.Background(), srv.URL+"/slow")
	assert.ErrorIs(t, err, domain.ErrFetch)
}

func TestNewBayutFetcherAdapterValidation(t *testing.T) {
	_, err := NewBayutFetcherAdapter(Config{BaseURL: "not a url"})
	assert.Error(t, err)

	_, err = NewBayutFetcherAdapter(Config{BaseURL: "https://www.bayut.com", MinDelay: time.Second, MaxDelay: time.Millisecond})
	assert.Error(t, err)
}

func TestAllowedDomains(t *testing.T) {
	assert.Equal(t, []string{"www.bayut.com", "bayut.com"}, allowedDomains("www.bayut.com"))
	assert.Equal(t, []string{"127.0.0.1", "www.127.0.0.1"}, allowedDomains("127.0.0.1"))
}
