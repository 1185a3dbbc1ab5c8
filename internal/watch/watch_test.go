package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// startWatcher runs w until the returned stop func is called.
func startWatcher(t *testing.T, w *Watcher) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
		require.NoError(t, w.Close())
	}
}

func waitTrigger(t *testing.T, w *Watcher) Trigger {
	t.Helper()
	select {
	case trig := <-w.Triggers():
		return trig
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for trigger")
		return Trigger{}
	}
}

func requireQuiet(t *testing.T, w *Watcher, d time.Duration) {
	t.Helper()
	select {
	case trig := <-w.Triggers():
		t.Fatalf("expected no trigger, got %+v", trig)
	case <-time.After(d):
	}
}

func TestWatcherCoalescesBurstIntoOneTrigger(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.go"), "package main\n")

	w, err := New(Options{Roots: []string{dir}, Debounce: 30 * time.Millisecond})
	require.NoError(t, err)
	stop := startWatcher(t, w)

	for range 5 {
		writeFile(t, filepath.Join(dir, "main.go"), "package main\n// edit\n")
		time.Sleep(5 * time.Millisecond)
	}

	trig := waitTrigger(t, w)
	require.Equal(t, "quiet", trig.Cause)
	require.GreaterOrEqual(t, trig.Count, 1)
	require.NotEmpty(t, trig.Paths)

	requireQuiet(t, w, 100*time.Millisecond)
	stop()
}

func TestWatcherIgnoresGeneratedOutput(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	docs := filepath.Join(dir, "docs")
	writeFile(t, filepath.Join(dir, "main.go"), "package main\n")
	writeFile(t, filepath.Join(docs, "index.md"), "# Landing\n")
	writeFile(t, filepath.Join(docs, "public", "index.html"), "<html></html>\n")
	writeFile(t, filepath.Join(docs, "content", "_index.md"), "generated\n")

	w, err := New(Options{Roots: []string{dir}, DocsDir: docs, Debounce: 20 * time.Millisecond})
	require.NoError(t, err)
	stop := startWatcher(t, w)

	// Output churn the build itself causes must not retrigger it.
	writeFile(t, filepath.Join(docs, "public", "index.html"), "<html>v2</html>\n")
	writeFile(t, filepath.Join(docs, "content", "_index.md"), "generated v2\n")
	requireQuiet(t, w, 150*time.Millisecond)

	// Narrative docs sources still count.
	writeFile(t, filepath.Join(docs, "index.md"), "# Landing v2\n")
	trig := waitTrigger(t, w)
	require.GreaterOrEqual(t, trig.Count, 1)
	require.Contains(t, trig.Paths[0], "index.md")
	stop()
}

func TestWatcherMaxDelayBoundsPostponement(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.go"), "package main\n")

	w, err := New(Options{
		Roots:    []string{dir},
		Debounce: 100 * time.Millisecond, // would postpone forever under a steady stream
		MaxDelay: 250 * time.Millisecond,
	})
	require.NoError(t, err)
	stop := startWatcher(t, w)

	deadline := time.Now().Add(400 * time.Millisecond)
	for time.Now().Before(deadline) {
		writeFile(t, filepath.Join(dir, "main.go"), "package main\n// churn\n")
		time.Sleep(20 * time.Millisecond)
	}

	trig := waitTrigger(t, w)
	require.Equal(t, "max_delay", trig.Cause)
	stop()
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	w, err := New(Options{Roots: []string{dir}, Debounce: 30 * time.Millisecond})
	require.NoError(t, err)
	stop := startWatcher(t, w)

	sub := filepath.Join(dir, "internal")
	require.NoError(t, os.Mkdir(sub, 0o755))
	waitTrigger(t, w) // the mkdir itself; once seen, sub is watched

	writeFile(t, filepath.Join(sub, "util.go"), "package internal\n")
	trig := waitTrigger(t, w)
	require.Contains(t, trig.Paths[0], "internal")
	stop()
}

func TestWatcherPeriodicTrigger(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	w, err := New(Options{
		Roots:        []string{dir},
		Debounce:     20 * time.Millisecond,
		RebuildEvery: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	stop := startWatcher(t, w)

	trig := waitTrigger(t, w)
	require.Equal(t, "periodic", trig.Cause)
	require.Zero(t, trig.Count)
	stop()
}

func TestWatcherSkipRules(t *testing.T) {
	docs := filepath.Join("/work/project", "docs")
	w := &Watcher{opts: Options{DocsDir: docs}}

	for _, path := range []string{
		filepath.Join(docs, "public", "index.html"),
		filepath.Join(docs, "public.prev", "index.html"),
		filepath.Join(docs, "public.staging-4242", "index.html"),
		filepath.Join(docs, "content", "reference", "_index.md"),
		filepath.Join(docs, "static", "refdocs.css"),
		filepath.Join(docs, "layouts", "_default", "single.html"),
		filepath.Join(docs, "resources", "_gen", "x"),
		filepath.Join(docs, "hugo.yaml"),
		filepath.Join(docs, ".refdocs", "manifest.json"),
		"/work/project/.git/HEAD",
		"/work/project/main.go~",
		"/work/project/.main.go.swp",
	} {
		require.True(t, w.skip(path), "expected %s to be skipped", path)
	}

	for _, path := range []string{
		"/work/project/main.go",
		"/work/project/refdocs.yaml",
		filepath.Join(docs, "index.md"),
		filepath.Join(docs, "guide", "install.md"),
	} {
		require.False(t, w.skip(path), "expected %s to be watched", path)
	}
}
