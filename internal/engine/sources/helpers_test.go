package sources

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
)

// rewriteTransport sends every request to the test server regardless of the requested host.
type rewriteTransport struct {
	target *url.URL
}

func (rt rewriteTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.URL.Scheme = rt.target.Scheme
	r.URL.Host = rt.target.Host
	r.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

// newUpstream starts a test server and points the engine's HTTP client at it.
func newUpstream(t *testing.T, h http.Handler) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	target, _ := url.Parse(srv.URL)
	engine.Init(engine.Config{
		HTTPClient:       &http.Client{Transport: rewriteTransport{target: target}, Timeout: 5 * time.Second},
		FetchTimeout:     3 * time.Second,
		MetadataTimeout:  2 * time.Second,
		RepoCheckTimeout: 2 * time.Second,
	})
	engine.CloseCache()
	return srv
}
