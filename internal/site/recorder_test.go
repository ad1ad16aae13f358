package site

import (
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

type testRecorder struct {
	stageDurations map[string]int
	stageResults   map[string]map[metrics.ResultLabel]int
	buildDurations int
	buildOutcomes  map[string]int
	pages          int
	files          int
	broken         int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{
		stageDurations: map[string]int{},
		stageResults:   map[string]map[metrics.ResultLabel]int{},
		buildOutcomes:  map[string]int{},
	}
}

func (t *testRecorder) ObserveStageDuration(stage string, _ time.Duration) { t.stageDurations[stage]++ }
func (t *testRecorder) ObserveBuildDuration(time.Duration)                 { t.buildDurations++ }
func (t *testRecorder) IncStageResult(stage string, result metrics.ResultLabel) {
	m, ok := t.stageResults[stage]
	if !ok {
		m = map[metrics.ResultLabel]int{}
		t.stageResults[stage] = m
	}
	m[result]++
}
func (t *testRecorder) IncBuildOutcome(outcome string) { t.buildOutcomes[outcome]++ }
func (t *testRecorder) AddPagesRendered(n int)         { t.pages += n }
func (t *testRecorder) AddFilesCopied(n int)           { t.files += n }
func (t *testRecorder) SetBrokenLinks(n int)           { t.broken = n }
