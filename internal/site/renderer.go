package site

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"git.home.luguber.info/inful/refdocs/internal/logfields"
)

// Renderer abstracts the static rendering step so the external hugo binary
// can be swapped out (NoopRenderer in tests). siteDir is the docs workspace
// holding hugo.yaml; destDir is the staging directory receiving the
// rendered site.
type Renderer interface {
	Render(ctx context.Context, siteDir, destDir string) error
}

// BinaryRenderer invokes the hugo binary found on PATH.
type BinaryRenderer struct{}

func (BinaryRenderer) Render(ctx context.Context, siteDir, destDir string) error {
	if _, err := exec.LookPath("hugo"); err != nil {
		return fmt.Errorf("%w: %v", ErrHugoNotFound, err)
	}

	cmd := exec.CommandContext(ctx, "hugo", "--quiet", "--destination", destDir)
	cmd.Dir = siteDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("invoking hugo", logfields.Path(siteDir), slog.String("destination", destDir))
	err := cmd.Run()
	if out := stdout.String(); out != "" {
		slog.Debug("hugo stdout", slog.String("output", out))
	}
	if errOut := stderr.String(); errOut != "" {
		slog.Warn("hugo stderr", slog.String("output", errOut))
	}
	if err != nil {
		output := stderr.String()
		if output == "" {
			output = stdout.String()
		}
		if output != "" {
			return fmt.Errorf("%w: %v: %s", ErrRenderFailed, err, output)
		}
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	return nil
}

// NoopRenderer skips rendering but still creates the destination so the
// publish swap has something to promote.
type NoopRenderer struct{}

func (NoopRenderer) Render(_ context.Context, _, destDir string) error {
	slog.Debug("noop renderer skipping render", logfields.Path(destDir))
	return os.MkdirAll(destDir, 0o755)
}
