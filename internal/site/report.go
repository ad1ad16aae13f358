package site

import (
	"fmt"
	"time"
)

// Outcome is the final build result state.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Report captures what a build did.
type Report struct {
	ID              string
	Start           time.Time
	End             time.Time
	Outcome         Outcome
	OutputDir       string
	StageDurations  map[StageName]time.Duration
	StageErrorKinds map[StageName]StageErrorKind
	PagesRendered   int
	FilesCopied     int
	Attributions    int
	ManifestUpdated bool
	SitemapEntries  int
	BrokenLinks     []string
	Warnings        []error
	Errors          []error
}

func newReport(id string, start time.Time, outputDir string) *Report {
	return &Report{
		ID:              id,
		Start:           start,
		OutputDir:       outputDir,
		StageDurations:  make(map[StageName]time.Duration),
		StageErrorKinds: make(map[StageName]StageErrorKind),
	}
}

func (r *Report) recordStageError(se *StageError) {
	r.StageErrorKinds[se.Stage] = se.Kind
	if se.Kind == StageErrorWarning {
		r.Warnings = append(r.Warnings, se)
		return
	}
	r.Errors = append(r.Errors, se)
}

// finish stamps the end time and derives the outcome.
func (r *Report) finish(end time.Time) {
	r.End = end
	switch {
	case r.hasKind(StageErrorCanceled):
		r.Outcome = OutcomeCanceled
	case len(r.Errors) > 0:
		r.Outcome = OutcomeFailed
	case len(r.Warnings) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

func (r *Report) hasKind(kind StageErrorKind) bool {
	for _, k := range r.StageErrorKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Duration is the wall time of the build.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return 0
	}
	return r.End.Sub(r.Start)
}

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("pages=%d files=%d attributions=%d sitemap=%d broken_links=%d warnings=%d errors=%d duration=%s outcome=%s",
		r.PagesRendered, r.FilesCopied, r.Attributions, r.SitemapEntries, len(r.BrokenLinks),
		len(r.Warnings), len(r.Errors), r.Duration().Truncate(time.Millisecond), r.Outcome)
}
