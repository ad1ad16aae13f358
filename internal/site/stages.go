package site

import (
	"context"
	"errors"
	"fmt"
	"time"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
)

// StageName is a strongly-typed identifier for a build stage.
type StageName string

// Canonical stage names, in execution order.
const (
	StagePrepareOutput    StageName = "prepare_output"
	StageLoadAttributions StageName = "load_attributions"
	StageRenderPages      StageName = "render_pages"
	StageCopyStatic       StageName = "copy_static"
	StageUpdateManifest   StageName = "update_manifest"
	StageGenerateSitemap  StageName = "generate_sitemap"
	StageVerifyLinks      StageName = "verify_links"
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, bs *buildState) error

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

// StageError is a structured error carrying the stage classification and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage StageName, err error) *StageError {
	if _, ok := sberrors.As(err); !ok {
		err = sberrors.BuildFailed(string(stage), err)
	}
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

func resultLabel(kind StageErrorKind) metrics.ResultLabel {
	switch kind {
	case StageErrorWarning:
		return metrics.ResultWarning
	case StageErrorCanceled:
		return metrics.ResultCanceled
	default:
		return metrics.ResultFatal
	}
}

// runStages executes stages in order, recording timing and stopping on the first fatal or canceled stage.
func runStages(ctx context.Context, bs *buildState, stages []StageDef) error {
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			se := newCanceledStageError(st.Name, err)
			bs.report.recordStageError(se)
			bs.recorder.IncStageResult(string(st.Name), metrics.ResultCanceled)
			return se
		}

		stageCtx := observability.WithStage(ctx, string(st.Name))
		t0 := time.Now()
		err := st.Fn(stageCtx, bs)
		dur := time.Since(t0)
		bs.report.StageDurations[st.Name] = dur
		bs.recorder.ObserveStageDuration(string(st.Name), dur)

		if err == nil {
			bs.recorder.IncStageResult(string(st.Name), metrics.ResultSuccess)
			observability.DebugContext(stageCtx, "Stage complete", logfields.Duration(dur))
			continue
		}

		var se *StageError
		if !errors.As(err, &se) {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				se = newCanceledStageError(st.Name, err)
			} else {
				se = newFatalStageError(st.Name, err)
			}
		}
		bs.report.recordStageError(se)
		bs.recorder.IncStageResult(string(st.Name), resultLabel(se.Kind))

		if se.Kind == StageErrorWarning {
			observability.WarnContext(stageCtx, "Stage finished with warnings", logfields.Error(se.Err), logfields.Duration(dur))
			continue
		}
		return se
	}
	return nil
}
