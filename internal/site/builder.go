// Package site renders a content directory through the template environment into a static output tree.
package site

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebuilder/internal/attributions"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/gitinfo"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
)

// ManifestPath is the web manifest location relative to the output directory.
var ManifestPath = filepath.Join("images", "favicon", "site.webmanifest")

// SitemapFile is the generated sitemap name in the output directory.
const SitemapFile = "sitemap.xml"

// Options tunes a Builder. The zero value is usable.
type Options struct {
	Recorder metrics.Recorder
	// Now returns the build start time; defaults to time.Now.
	Now func() time.Time
	// GitCommit overrides HEAD lookup; nil resolves the commit of the config directory.
	GitCommit func() string
}

// Builder runs the staged site build for one configuration.
type Builder struct {
	cfg      *config.Config
	recorder metrics.Recorder
	now      func() time.Time
	commit   func() string
}

// buildState carries mutable state across the stages of one build.
type buildState struct {
	cfg          *config.Config
	report       *Report
	recorder     metrics.Recorder
	start        time.Time
	cacheVersion string
	gitCommit    string
	sourceDir    string
	templateDir  string
	outputDir    string
	attributions []attributions.Item
	pages        []string
}

// New returns a Builder for cfg.
func New(cfg *config.Config, opts Options) *Builder {
	b := &Builder{cfg: cfg, recorder: opts.Recorder, now: opts.Now, commit: opts.GitCommit}
	if b.recorder == nil {
		b.recorder = metrics.NoopRecorder{}
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.commit == nil {
		b.commit = func() string { return gitinfo.HeadCommit(cfg.BaseDir) }
	}
	return b
}

// Stages returns the build pipeline in execution order.
func (b *Builder) Stages() []StageDef {
	return []StageDef{
		{StagePrepareOutput, stagePrepareOutput},
		{StageLoadAttributions, stageLoadAttributions},
		{StageRenderPages, stageRenderPages},
		{StageCopyStatic, stageCopyStatic},
		{StageUpdateManifest, stageUpdateManifest},
		{StageGenerateSitemap, stageGenerateSitemap},
		{StageVerifyLinks, stageVerifyLinks},
	}
}

// Build runs every stage and returns the report. The error is the first fatal or
// canceled stage error; warnings are only recorded in the report.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	start := b.now()
	bs := &buildState{
		cfg:          b.cfg,
		recorder:     b.recorder,
		start:        start,
		cacheVersion: start.UTC().Format(CacheVersionLayout),
		gitCommit:    b.commit(),
		sourceDir:    b.cfg.SourceDir(),
		templateDir:  b.cfg.TemplateDir(),
		outputDir:    b.cfg.OutputDir(),
	}
	bs.report = newReport(uuid.NewString(), start, bs.outputDir)

	ctx = observability.WithBuildID(ctx, bs.report.ID)
	observability.InfoContext(ctx, "Starting build",
		logfields.Source(bs.sourceDir),
		logfields.Output(bs.outputDir),
		slog.String("cache_version", bs.cacheVersion))

	err := runStages(ctx, bs, b.Stages())

	bs.report.finish(b.now())
	b.recorder.ObserveBuildDuration(bs.report.Duration())
	b.recorder.IncBuildOutcome(string(bs.report.Outcome))

	if err != nil {
		observability.ErrorContext(ctx, "Build failed", logfields.Error(err), logfields.Outcome(string(bs.report.Outcome)))
		return bs.report, err
	}
	observability.InfoContext(ctx, "Built to: "+bs.outputDir,
		logfields.Outcome(string(bs.report.Outcome)),
		logfields.Duration(bs.report.Duration()),
		slog.String("summary", bs.report.Summary()))
	return bs.report, nil
}

// listPages returns the top-level *.html files of the source directory in sorted order.
func listPages(sourceDir string) ([]string, error) {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, err
	}
	var pages []string
	for _, entry := range entries {
		if isPage(entry.Name()) && !entry.IsDir() {
			pages = append(pages, entry.Name())
		}
	}
	sort.Strings(pages)
	return pages, nil
}

func isPage(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".html")
}

func (bs *buildState) renderEnvironment() (*render.Environment, error) {
	return render.NewEnvironment(render.Options{
		TemplateDir:     bs.templateDir,
		SourceDir:       bs.sourceDir,
		RootURL:         bs.cfg.Site.RootURL,
		CacheVersion:    bs.cacheVersion,
		BuildTime:       bs.start,
		StrictVariables: bs.cfg.Build.StrictVariables,
	})
}
