package preview

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/refdocs/internal/logfields"
)

// Options configures the preview server.
type Options struct {
	// Addr is the listen address, ":6060" by default.
	Addr string

	// PublicDir is the rendered site root to serve.
	PublicDir string

	// LiveReload enables the SSE endpoint and script injection into
	// served HTML pages.
	LiveReload bool

	// Metrics, when non-nil, is mounted at /metrics.
	Metrics http.Handler
}

// Server serves the rendered site with live reload and health endpoints.
type Server struct {
	opts    Options
	hub     *Hub
	ln      net.Listener
	srv     *http.Server
	started time.Time
}

// NewServer wires a Server around hub. The hub may be nil when live reload
// is disabled.
func NewServer(opts Options, hub *Hub) *Server {
	if opts.Addr == "" {
		opts.Addr = ":6060"
	}
	return &Server{opts: opts, hub: hub}
}

// Hub returns the live-reload hub, nil when disabled.
func (s *Server) Hub() *Hub { return s.hub }

// Start binds the listen address and begins serving in the background.
// Binding eagerly surfaces an occupied port before any build work starts.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.Addr, err)
	}
	s.ln = ln
	s.started = time.Now()

	mux := http.NewServeMux()
	mux.Handle("/", s.siteHandler())
	mux.HandleFunc("/healthz", s.handleHealthz)
	if s.opts.LiveReload && s.hub != nil {
		mux.Handle("/livereload", s.hub)
		mux.HandleFunc("/livereload.js", handleLiveReloadScript)
	}
	if s.opts.Metrics != nil {
		mux.Handle("/metrics", s.opts.Metrics)
	}

	// No write timeout: /livereload holds its response open.
	s.srv = &http.Server{
		Handler:           mux,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("preview server error", logfields.Error(err))
		}
	}()

	slog.Info("preview server listening", slog.String("addr", s.Addr()),
		slog.Bool("live_reload", s.opts.LiveReload && s.hub != nil))
	return nil
}

// Addr returns the bound address, useful when Options.Addr used port 0.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.opts.Addr
	}
	return s.ln.Addr().String()
}

// Shutdown disconnects live-reload clients first so their open responses
// finish, then drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Shutdown()
	}
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown preview server: %w", err)
	}
	return nil
}

// siteHandler serves the public tree. HTML responses carry no-cache headers
// so a reload always fetches the rebuilt page; with live reload enabled the
// reload client script is injected before </body>.
func (s *Server) siteHandler() http.Handler {
	fsrv := http.FileServer(http.Dir(s.opts.PublicDir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if file := s.htmlFile(r.URL.Path); file != "" {
			w.Header().Set("Cache-Control", "no-cache")
			if s.opts.LiveReload && s.hub != nil {
				s.serveInjectedHTML(w, r, file)
				return
			}
		}
		fsrv.ServeHTTP(w, r)
	})
}

// htmlFile maps a URL path to the HTML file that would serve it, or ""
// for non-HTML targets. Directory requests without a trailing slash return
// "" so the file server's canonical redirect still happens.
func (s *Server) htmlFile(urlPath string) string {
	clean := path.Clean("/" + urlPath)
	file := filepath.Join(s.opts.PublicDir, filepath.FromSlash(clean))
	info, err := os.Stat(file)
	if err != nil {
		return ""
	}
	if info.IsDir() {
		if !strings.HasSuffix(urlPath, "/") && clean != "/" {
			return ""
		}
		file = filepath.Join(file, "index.html")
		if _, err := os.Stat(file); err != nil {
			return ""
		}
		return file
	}
	if strings.HasSuffix(file, ".html") {
		return file
	}
	return ""
}

func (s *Server) serveInjectedHTML(w http.ResponseWriter, r *http.Request, file string) {
	page, err := os.ReadFile(file)
	if err != nil {
		http.Error(w, "read page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(injectReloadScript(page))
}

var reloadScriptTag = []byte(`<script src="/livereload.js"></script>`)

// injectReloadScript places the script tag before </body>, or appends it
// when the page has no closing body tag.
func injectReloadScript(page []byte) []byte {
	if bytes.Contains(page, reloadScriptTag) {
		return page
	}
	i := bytes.LastIndex(page, []byte("</body>"))
	if i < 0 {
		return append(page, reloadScriptTag...)
	}
	out := make([]byte, 0, len(page)+len(reloadScriptTag))
	out = append(out, page[:i]...)
	out = append(out, reloadScriptTag...)
	out = append(out, page[i:]...)
	return out
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	})
}

func handleLiveReloadScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	_, _ = io.WriteString(w, liveReloadScript)
}

// liveReloadScript is the browser client: it remembers the first hash it
// sees and reloads once a different one arrives.
const liveReloadScript = `(function () {
  if (window.__REFDOCS_LR__) return;
  window.__REFDOCS_LR__ = true;
  var current = null;
  function connect() {
    var es = new EventSource('/livereload');
    es.onmessage = function (e) {
      try {
        var msg = JSON.parse(e.data);
        if (!msg.hash) return;
        if (current === null) { current = msg.hash; return; }
        if (msg.hash !== current) { location.reload(); }
      } catch (err) { /* ignore malformed events */ }
    };
    es.onerror = function () {
      es.close();
      setTimeout(connect, 2000);
    };
  }
  connect();
})();
`

// ContentHash fingerprints the rendered site so rebuilds with identical
// output do not trigger a browser reload.
func ContentHash(root string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write([]byte{0})
		h.Write(data)
		h.Write([]byte{0})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("hash site content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil))[:16], nil
}
