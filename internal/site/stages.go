package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/refdocs/internal/logfields"
	"git.home.luguber.info/inful/refdocs/internal/metrics"
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, bs *BuildState) error

// StageName is a strongly-typed identifier for a build stage.
type StageName string

// Canonical stage names, in pipeline order.
const (
	StagePrepare     StageName = "prepare"
	StageInspect     StageName = "inspect"
	StageConfig      StageName = "config"
	StageLayouts     StageName = "layouts"
	StageLanding     StageName = "landing"
	StageReference   StageName = "reference"
	StageCLIDocs     StageName = "clidocs"
	StageGuides      StageName = "guides"
	StageSourceLinks StageName = "sourcelinks"
	StageLLMs        StageName = "llms"
	StageAssets      StageName = "assets"
	StageRender      StageName = "render"
	StageTheme       StageName = "theme"
	StagePublish     StageName = "publish"
)

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func fatalErr(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func warnErr(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

func canceledErr(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// runStages executes stages in order, recording per-stage timing, and stops
// on the first fatal or canceled error. Warning errors are recorded and the
// run continues.
func runStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := canceledErr(st.Name, ctx.Err())
			bs.Report.recordError(se)
			return se
		default:
		}

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)
		bs.Report.StageDurations[st.Name] = dur
		bs.Generator.recorder.ObserveStageDuration(string(st.Name), dur)

		if err == nil {
			bs.Generator.recorder.IncStageResult(string(st.Name), metrics.ResultSuccess)
			continue
		}

		var se *StageError
		if !errors.As(err, &se) {
			se = fatalErr(st.Name, err)
		}
		switch se.Kind {
		case StageErrorWarning:
			bs.Report.recordWarning(se)
			bs.Generator.recorder.IncStageResult(string(st.Name), metrics.ResultWarning)
			slog.Warn("stage finished with warning", logfields.Stage(string(st.Name)), logfields.Error(se.Err))
		case StageErrorCanceled:
			bs.Report.recordError(se)
			bs.Generator.recorder.IncStageResult(string(st.Name), metrics.ResultCanceled)
			return se
		default:
			bs.Report.recordError(se)
			bs.Generator.recorder.IncStageResult(string(st.Name), metrics.ResultFatal)
			return se
		}
	}
	return nil
}
