package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// BuildReport captures metrics about one site generation run. It is
// persisted under the docs workspace and appended to the build history.
type BuildReport struct {
	SchemaVersion   int
	ID              string // build ID, one uuid per run
	ModulePath      string
	Ref             string
	Start           time.Time
	End             time.Time
	Pages           int // markdown pages written this run
	Errors          []error
	Warnings        []error
	StageDurations  map[StageName]time.Duration
	StageErrorKinds map[StageName]StageErrorKind
	Outcome         BuildOutcome
}

func newBuildReport() *BuildReport {
	return &BuildReport{
		SchemaVersion:   1,
		ID:              uuid.NewString(),
		Start:           time.Now(),
		StageDurations:  make(map[StageName]time.Duration),
		StageErrorKinds: make(map[StageName]StageErrorKind),
	}
}

func (r *BuildReport) recordError(se *StageError) {
	r.Errors = append(r.Errors, se)
	r.StageErrorKinds[se.Stage] = se.Kind
}

func (r *BuildReport) recordWarning(se *StageError) {
	r.Warnings = append(r.Warnings, se)
	r.StageErrorKinds[se.Stage] = se.Kind
}

// Warn records a non-fatal problem without aborting the surrounding stage.
func (r *BuildReport) Warn(stage StageName, err error) {
	r.recordWarning(warnErr(stage, err))
}

func (r *BuildReport) finish() {
	r.End = time.Now()
	r.deriveOutcome()
}

func (r *BuildReport) deriveOutcome() {
	for _, e := range r.Errors {
		if se, ok := e.(*StageError); ok && se.Kind == StageErrorCanceled {
			r.Outcome = OutcomeCanceled
			return
		}
	}
	if len(r.Errors) > 0 {
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// Duration is the wall-clock time of the run so far (final once finished).
func (r *BuildReport) Duration() time.Duration {
	end := r.End
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(r.Start)
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	return fmt.Sprintf("build=%s pages=%d duration=%s errors=%d warnings=%d stages=%d outcome=%s",
		r.ID, r.Pages, r.Duration().Truncate(time.Millisecond), len(r.Errors), len(r.Warnings), len(r.StageDurations), r.Outcome)
}

// buildReportJSON is the serialized form: errors flattened to strings,
// durations in milliseconds.
type buildReportJSON struct {
	SchemaVersion    int               `json:"schema_version"`
	ID               string            `json:"id"`
	ModulePath       string            `json:"module_path,omitempty"`
	Ref              string            `json:"ref,omitempty"`
	Start            time.Time         `json:"start"`
	End              time.Time         `json:"end"`
	DurationMS       int64             `json:"duration_ms"`
	Pages            int               `json:"pages"`
	Outcome          string            `json:"outcome"`
	Errors           []string          `json:"errors,omitempty"`
	Warnings         []string          `json:"warnings,omitempty"`
	StageDurationsMS map[string]int64  `json:"stage_durations_ms"`
	StageErrorKinds  map[string]string `json:"stage_error_kinds,omitempty"`
}

// MarshalJSON serializes the report in its stable wire form.
func (r *BuildReport) MarshalJSON() ([]byte, error) {
	out := buildReportJSON{
		SchemaVersion:    r.SchemaVersion,
		ID:               r.ID,
		ModulePath:       r.ModulePath,
		Ref:              r.Ref,
		Start:            r.Start,
		End:              r.End,
		DurationMS:       r.Duration().Milliseconds(),
		Pages:            r.Pages,
		Outcome:          string(r.Outcome),
		StageDurationsMS: make(map[string]int64, len(r.StageDurations)),
		StageErrorKinds:  make(map[string]string, len(r.StageErrorKinds)),
	}
	for _, e := range r.Errors {
		out.Errors = append(out.Errors, e.Error())
	}
	for _, w := range r.Warnings {
		out.Warnings = append(out.Warnings, w.Error())
	}
	for name, d := range r.StageDurations {
		out.StageDurationsMS[string(name)] = d.Milliseconds()
	}
	for name, kind := range r.StageErrorKinds {
		out.StageErrorKinds[string(name)] = string(kind)
	}
	return json.Marshal(out)
}

// Persist writes the report atomically into dir as build-report.json plus a
// one-line build-report.txt. Best effort; the caller logs any error.
func (r *BuildReport) Persist(dir string) error {
	if r.End.IsZero() {
		r.finish()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure report dir: %w", err)
	}

	jb, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, "build-report.json"), append(jb, '\n')); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(dir, "build-report.txt"), []byte(r.Summary()+"\n"))
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
