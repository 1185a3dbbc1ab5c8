package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"git.home.luguber.info/inful/refdocs/internal/gitmeta"
	"git.home.luguber.info/inful/refdocs/internal/gomod"
	"git.home.luguber.info/inful/refdocs/internal/linkcheck"
	"git.home.luguber.info/inful/refdocs/internal/logfields"
)

// CheckLinksCmd implements the 'check-links' command.
type CheckLinksCmd struct {
	Timeout  time.Duration `help:"Per-request timeout (overrides link_check.timeout)"`
	Ignore   []string      `help:"URL pattern to skip; repeatable"`
	DocsOnly bool          `name:"docs-only" help:"Skip Go sources, check docs markdown only"`
	Offline  bool          `help:"Harvest and report without touching the network"`
	Project  string        `help:"Project root directory" default:"."`
}

func (c *CheckLinksCmd) Run(_ *Global, root *CLI) error {
	cfg, projectRoot, err := loadProject(root, c.Project)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	harvest, err := linkcheck.Scan(linkcheck.ScanOptions{
		ProjectRoot: projectRoot,
		PackageDir:  filepath.Join(projectRoot, cfg.Package),
		DocsDir:     filepath.Join(projectRoot, cfg.DocsDir),
		DocsOnly:    c.DocsOnly,
	})
	if err != nil {
		return err
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = cfg.LinkCheckTimeoutDuration()
	}
	checker := linkcheck.NewChecker(linkcheck.CheckOptions{
		Timeout: timeout,
		Ignore:  append(append([]string{}, cfg.LinkCheck.Ignore...), c.Ignore...),
		Offline: c.Offline,
	})

	report := checker.Run(ctx, harvest)
	if module, merr := gomod.Read(projectRoot); merr == nil {
		report.Module = module.ModulePath
	}
	if meta, gerr := gitmeta.Detect(projectRoot); gerr == nil {
		report.Ref = meta.Ref
	}

	if err := report.Write(os.Stdout); err != nil {
		return err
	}

	if cfg.LinkCheck.NATSURL != "" && !c.Offline {
		publishReport(ctx, cfg.LinkCheck.NATSURL, cfg.LinkCheck.NATSBucket, report)
	}

	if n := report.Count(linkcheck.StatusBroken); n > 0 {
		return fmt.Errorf("%d broken links", n)
	}
	return nil
}

// publishReport stores the report in the configured NATS KV bucket.
// Publishing failures are logged, never fatal.
func publishReport(ctx context.Context, url, bucket string, report *linkcheck.Report) {
	pub, err := linkcheck.NewPublisher(ctx, url, bucket)
	if err != nil {
		slog.Warn("link report not published", logfields.Error(err))
		return
	}
	defer func() { _ = pub.Close() }()
	if err := pub.Publish(ctx, report); err != nil {
		slog.Warn("link report not published", logfields.Error(err))
		return
	}
	slog.Info("published link report", logfields.URL(url), slog.String("bucket", bucket))
}
