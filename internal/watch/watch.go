// Package watch turns filesystem churn into debounced rebuild triggers.
// It watches the module sources and the docs workspace, ignoring the
// generated output so a build never retriggers itself.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/refdocs/internal/logfields"
)

// Trigger is one coalesced rebuild request.
type Trigger struct {
	At    time.Time
	Cause string   // "quiet", "max_delay" or "periodic"
	Count int      // raw filesystem events coalesced into this trigger
	Paths []string // distinct changed paths, capped at maxTriggerPaths
}

const maxTriggerPaths = 8

// Options configures a Watcher.
type Options struct {
	// Roots are directories watched recursively. The project root is
	// usually enough; add the docs dir when it lives outside it.
	Roots []string

	// DocsDir is the site workspace. Generated output under it (public
	// trees, content, static, layouts, hugo.yaml, resources) is ignored.
	DocsDir string

	// Debounce is the quiet window after the last event before a trigger
	// fires. Defaults to 400ms.
	Debounce time.Duration

	// MaxDelay bounds how long a steady stream of events can postpone a
	// trigger. Defaults to 10x Debounce.
	MaxDelay time.Duration

	// RebuildEvery schedules an additional periodic trigger. Zero
	// disables it.
	RebuildEvery time.Duration
}

// Watcher emits Triggers on its channel until the context given to Run is
// canceled.
type Watcher struct {
	opts     Options
	fs       *fsnotify.Watcher
	triggers chan Trigger
}

// New creates a Watcher and registers all directories under opts.Roots.
func New(opts Options) (*Watcher, error) {
	if len(opts.Roots) == 0 {
		return nil, fmt.Errorf("watch: no roots given")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 400 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 10 * opts.Debounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &Watcher{opts: opts, fs: fsw, triggers: make(chan Trigger, 1)}
	for _, root := range opts.Roots {
		if err := w.addTree(root); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Triggers is the channel rebuild requests arrive on.
func (w *Watcher) Triggers() <-chan Trigger { return w.triggers }

// Close stops the underlying filesystem watcher. Run returns after Close.
func (w *Watcher) Close() error { return w.fs.Close() }

// addTree registers dir and every non-ignored directory below it.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.skip(path) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// skip reports whether path is outside the watched source set: dot
// components, editor droppings, and the generated output in the docs dir.
func (w *Watcher) skip(path string) bool {
	base := filepath.Base(path)
	for _, suffix := range []string{"~", ".swp", ".swx", ".tmp"} {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && strings.HasPrefix(part, ".") && part != ".." {
			return true
		}
	}
	if w.opts.DocsDir == "" {
		return false
	}
	rel, err := filepath.Rel(w.opts.DocsDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	switch first {
	case "public", "public.prev", "content", "static", "layouts", "resources", "hugo.yaml":
		return true
	}
	return strings.HasPrefix(first, "public.staging-")
}

// Run watches until ctx is canceled or the watcher is closed. Filesystem
// events reset the quiet timer; the max timer bounds total postponement.
func (w *Watcher) Run(ctx context.Context) error {
	if w.opts.RebuildEvery > 0 {
		sched, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("create scheduler: %w", err)
		}
		_, err = sched.NewJob(
			gocron.DurationJob(w.opts.RebuildEvery),
			gocron.NewTask(w.periodic),
			gocron.WithName("periodic-rebuild"),
		)
		if err != nil {
			return fmt.Errorf("schedule periodic rebuild: %w", err)
		}
		sched.Start()
		defer func() { _ = sched.Shutdown() }()
	}

	quietTimer := newStoppedTimer()
	maxTimer := newStoppedTimer()
	var (
		quietC <-chan time.Time
		maxC   <-chan time.Time

		count int
		first time.Time
		paths []string
		seen  map[string]bool
	)
	reset := func() {
		count, first, paths, seen = 0, time.Time{}, nil, nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if w.skip(ev.Name) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						slog.Warn("failed to watch new directory", logfields.Path(ev.Name), logfields.Error(err))
					}
				}
			}

			if count == 0 {
				first = time.Now()
				resetTimer(maxTimer, w.opts.MaxDelay)
				maxC = maxTimer.C
			}
			count++
			if seen == nil {
				seen = make(map[string]bool)
			}
			if !seen[ev.Name] && len(paths) < maxTriggerPaths {
				seen[ev.Name] = true
				paths = append(paths, ev.Name)
			}
			resetTimer(quietTimer, w.opts.Debounce)
			quietC = quietTimer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			slog.Error("file watcher error", logfields.Error(err))

		case <-quietC:
			quietC, maxC = nil, nil
			stopTimer(maxTimer)
			w.emit(Trigger{At: first, Cause: "quiet", Count: count, Paths: paths})
			reset()

		case <-maxC:
			quietC, maxC = nil, nil
			stopTimer(quietTimer)
			w.emit(Trigger{At: first, Cause: "max_delay", Count: count, Paths: paths})
			reset()
		}
	}
}

func (w *Watcher) periodic() {
	w.emit(Trigger{At: time.Now(), Cause: "periodic"})
}

// emit hands a trigger to the consumer. A full channel means a trigger is
// already queued; the rebuild it causes reads the filesystem after these
// changes too, so dropping is safe.
func (w *Watcher) emit(t Trigger) {
	select {
	case w.triggers <- t:
		slog.Debug("rebuild triggered",
			slog.String("cause", t.Cause),
			slog.Int("events", t.Count))
	default:
	}
}

func newStoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	stopTimer(t)
	return t
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

func resetTimer(t *time.Timer, after time.Duration) {
	stopTimer(t)
	t.Reset(after)
}
