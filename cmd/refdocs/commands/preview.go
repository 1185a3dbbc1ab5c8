package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/refdocs/internal/logfields"
	"git.home.luguber.info/inful/refdocs/internal/metrics"
	"git.home.luguber.info/inful/refdocs/internal/preview"
	"git.home.luguber.info/inful/refdocs/internal/site"
)

// PreviewCmd implements the 'preview' command.
type PreviewCmd struct {
	Addr         string `help:"Listen address (overrides preview.addr)"`
	NoLiveReload bool   `name:"no-live-reload" help:"Disable the SSE live-reload endpoint and script injection"`
	Project      string `help:"Project root directory" default:"."`
}

func (p *PreviewCmd) Run(_ *Global, root *CLI) error {
	cfg, projectRoot, err := loadProject(root, p.Project)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var rec metrics.Recorder = metrics.NoopRecorder{}
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		reg := prom.NewRegistry()
		rec = metrics.NewPrometheusRecorder(reg)
		metricsHandler = metrics.HTTPHandler(reg)
	}

	g := site.NewGenerator(cfg, projectRoot).SetRecorder(rec)
	store := attachHistory(g, cfg, projectRoot)
	defer closeHistory(store)

	if report, err := g.Build(ctx, site.BuildOptions{}); err != nil {
		slog.Error("initial build failed", logfields.Error(err))
	} else {
		printReport(report)
	}

	addr := p.Addr
	if addr == "" {
		addr = cfg.Preview.Addr
	}
	liveReload := cfg.LiveReloadEnabled() && !p.NoLiveReload

	hub := preview.NewHub(rec)
	srv := preview.NewServer(preview.Options{
		Addr:       addr,
		PublicDir:  g.PublicDir(),
		LiveReload: liveReload,
		Metrics:    metricsHandler,
	}, hub)
	if err := srv.Start(); err != nil {
		return err
	}
	fmt.Printf("Serving documentation at %s\n", previewURL(srv.Addr()))

	// Seeding the hash now lets the first connecting client replay it and
	// reload only on a later change.
	broadcast := func() {
		if !liveReload {
			return
		}
		hash, err := preview.ContentHash(g.PublicDir())
		if err != nil {
			slog.Debug("content hash unavailable", logfields.Error(err))
			return
		}
		hub.Broadcast(hash)
	}
	broadcast()

	loopErr := watchLoop(ctx, cfg, projectRoot, g.DocsDir(), func(ctx context.Context) {
		report, err := g.Build(ctx, site.BuildOptions{})
		if err != nil {
			slog.Error("rebuild failed", logfields.Error(err))
			return
		}
		printReport(report)
		broadcast()
	})

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("preview server shutdown", logfields.Error(err))
	}
	return loopErr
}

// previewURL renders a browsable URL for a listener address.
func previewURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	switch host {
	case "", "::", "0.0.0.0":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
