package site

import "errors"

// Sentinel errors surfaced by the build pipeline. Render problems are
// distinguished so callers can tell a missing hugo binary from a failing
// one.
var (
	ErrHugoNotFound = errors.New("hugo binary not found in PATH")
	ErrRenderFailed = errors.New("hugo render failed")

	// ErrNoModel is returned by a --no-refresh build when no persisted
	// API model exists yet.
	ErrNoModel = errors.New("no persisted API model; run a full build first")
)
