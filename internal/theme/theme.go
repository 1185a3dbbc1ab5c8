// Package theme carries the embedded site assets and the HTML
// post-processor that wires them into rendered pages.
//
// The processor is idempotent: pages generated by the built-in layouts
// already carry the stylesheet, scripts and widget mounts, and running
// Apply again changes nothing. Plain Hugo trees that never saw the
// layouts get the same wiring injected.
package theme

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Options select which widgets Apply wires into each page.
type Options struct {
	DarkMode      bool
	SidebarFilter bool
	GitHubOwner   string
	GitHubRepo    string
	GitHubStyle   string // widget, icon or off
}

// Stats summarizes one Apply pass.
type Stats struct {
	Pages   int // HTML documents processed
	Changed int // documents rewritten
}

func (o Options) githubEnabled() bool {
	return o.GitHubOwner != "" && o.GitHubRepo != "" && o.GitHubStyle != "off"
}

// Apply post-processes every HTML document under root.
func Apply(ctx context.Context, root string, opts Options) (Stats, error) {
	var stats Stats
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			return nil
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		changed, aerr := applyFile(path, opts)
		if aerr != nil {
			return fmt.Errorf("%s: %w", path, aerr)
		}
		stats.Pages++
		if changed {
			stats.Changed++
		}
		return nil
	})
	return stats, err
}

func applyFile(path string, opts Options) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return false, err
	}

	head := findElement(doc, "head")
	body := findElement(doc, "body")
	if head == nil || body == nil {
		return false, nil
	}

	ensureStylesheet(doc, head)
	ensureScripts(doc, head, body, opts)
	decorateNavbar(doc, opts)
	countSidebarLists(doc)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return false, err
	}
	out := buf.Bytes()
	if bytes.Equal(out, data) {
		return false, nil
	}
	return true, os.WriteFile(path, out, 0o644)
}
