package preview

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"git.home.luguber.info/inful/refdocs/internal/metrics"
)

func writeSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	pages := map[string]string{
		"index.html":           "<html><head></head><body><h1>Home</h1></body></html>",
		"reference/index.html": "<html><head></head><body><h1>Reference</h1></body></html>",
		"refdocs.css":          ":root{}",
	}
	for rel, content := range pages {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func startServer(t *testing.T, opts Options, hub *Hub) (*Server, string) {
	t.Helper()
	opts.Addr = "127.0.0.1:0"
	srv := NewServer(opts, hub)
	require.NoError(t, srv.Start())
	return srv, "http://" + srv.Addr()
}

func shutdown(t *testing.T, srv *Server) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
}

func get(t *testing.T, client *http.Client, url string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, string(body)
}

func TestServerServesSite(t *testing.T) {
	defer goleak.VerifyNone(t)

	site := writeSite(t)
	srv, base := startServer(t, Options{PublicDir: site, LiveReload: true}, NewHub(nil))
	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	defer client.CloseIdleConnections()

	resp, body := get(t, client, base+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))
	require.Contains(t, body, "<h1>Home</h1>")
	require.Contains(t, body, `<script src="/livereload.js"></script>`)
	require.Less(t, strings.Index(body, "livereload.js"), strings.Index(body, "</body>"))

	// Directory requests without a slash still get the canonical redirect.
	resp, body = get(t, client, base+"/reference")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/reference/", resp.Request.URL.Path)
	require.Contains(t, body, "<h1>Reference</h1>")

	resp, body = get(t, client, base+"/refdocs.css")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, resp.Header.Get("Cache-Control"))
	require.Equal(t, ":root{}", body)
	require.NotContains(t, body, "livereload")

	resp, body = get(t, client, base+"/livereload.js")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "EventSource")

	resp, body = get(t, client, base+"/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `"status":"ok"`)

	resp, _ = get(t, client, base+"/missing/")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	shutdown(t, srv)
}

func TestServerWithoutLiveReload(t *testing.T) {
	defer goleak.VerifyNone(t)

	site := writeSite(t)
	srv, base := startServer(t, Options{PublicDir: site, LiveReload: false}, nil)
	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	defer client.CloseIdleConnections()

	resp, body := get(t, client, base+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))
	require.NotContains(t, body, "livereload")

	resp, _ = get(t, client, base+"/livereload")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	shutdown(t, srv)
}

// sseStream connects to the SSE endpoint and delivers non-blank lines.
func sseStream(t *testing.T, ctx context.Context, url string) (<-chan string, func()) {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Do(req)
	require.NoError(t, err)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 16)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				lines <- line
			}
		}
	}()
	return lines, func() {
		_ = resp.Body.Close()
		client.CloseIdleConnections()
	}
}

func expectLine(t *testing.T, lines <-chan string, want string) {
	t.Helper()
	select {
	case got, ok := <-lines:
		require.True(t, ok, "stream closed while waiting for %q", want)
		require.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

func expectClosed(t *testing.T, lines <-chan string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-lines:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for stream to close")
		}
	}
}

func TestServerLiveReloadStream(t *testing.T) {
	defer goleak.VerifyNone(t)

	site := writeSite(t)
	hub := NewHub(nil)
	srv, base := startServer(t, Options{PublicDir: site, LiveReload: true}, hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, closeFirst := sseStream(t, ctx, base+"/livereload")
	defer closeFirst()
	expectLine(t, first, ": connected")

	hub.Broadcast("hash-1")
	expectLine(t, first, `data: {"hash":"hash-1"}`)

	// A client connecting later gets the current hash replayed.
	second, closeSecond := sseStream(t, ctx, base+"/livereload")
	defer closeSecond()
	expectLine(t, second, ": connected")
	expectLine(t, second, `data: {"hash":"hash-1"}`)
	require.Equal(t, 2, hub.Clients())

	hub.Broadcast("hash-2")
	expectLine(t, first, `data: {"hash":"hash-2"}`)
	expectLine(t, second, `data: {"hash":"hash-2"}`)

	shutdown(t, srv)
	expectClosed(t, first)
	expectClosed(t, second)
	require.Equal(t, 0, hub.Clients())
}

func TestServerMetricsEndpoint(t *testing.T) {
	defer goleak.VerifyNone(t)

	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	rec.IncBuildOutcome("success")

	site := writeSite(t)
	srv, base := startServer(t, Options{PublicDir: site, Metrics: metrics.HTTPHandler(reg)}, nil)
	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	defer client.CloseIdleConnections()

	resp, body := get(t, client, base+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "refdocs_build_outcomes_total")

	shutdown(t, srv)
}

func TestInjectReloadScript(t *testing.T) {
	withBody := []byte("<html><body><p>x</p></body></html>")
	injected := injectReloadScript(withBody)
	require.Contains(t, string(injected), `<script src="/livereload.js"></script></body>`)

	// Idempotent on already-injected pages.
	require.Equal(t, injected, injectReloadScript(injected))

	bare := []byte("<p>fragment</p>")
	require.True(t, strings.HasSuffix(string(injectReloadScript(bare)), string(reloadScriptTag)))
}

func TestContentHash(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("v1"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "site.css"), []byte("a{}"), 0o644))

	h1, err := ContentHash(dir)
	require.NoError(t, err)
	require.Len(t, h1, 16)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("v2"), 0o644))
	h2, err := ContentHash(dir)
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("v1"), 0o644))
	h3, err := ContentHash(dir)
	require.NoError(t, err)
	require.Equal(t, h1, h3)
}
