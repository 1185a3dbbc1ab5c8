package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyComponent  = "component"
	KeyPath       = "path"
	KeyPackage    = "package"
	KeyObject     = "object"
	KeySection    = "section"
	KeyURL        = "url"
	KeyDurationMS = "duration_ms"
	KeyPages      = "pages"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Component(c string) slog.Attr    { return slog.String(KeyComponent, c) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Package(p string) slog.Attr      { return slog.String(KeyPackage, p) }
func Object(name string) slog.Attr    { return slog.String(KeyObject, name) }
func Section(s string) slog.Attr      { return slog.String(KeySection, s) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Pages(n int) slog.Attr           { return slog.Int(KeyPages, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
