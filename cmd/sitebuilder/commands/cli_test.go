package commands

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/watch"
)

// runCLI parses args like the real binary and runs the selected command.
func runCLI(t *testing.T, g *Global, args ...string) error {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("sitebuilder"),
		kong.Vars{"version": "test"},
		kong.Exit(func(code int) { t.Fatalf("unexpected exit with code %d", code) }),
	)
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	if g == nil {
		g = &Global{}
	}
	return ctx.Run(g, &cli)
}

func initProject(t *testing.T, extra ...string) string {
	t.Helper()
	dir := t.TempDir()
	args := append([]string{"-c", filepath.Join(dir, "sitebuilder.yaml"), "init"}, extra...)
	require.NoError(t, runCLI(t, nil, args...))
	return dir
}

func TestInitBuildOpen(t *testing.T) {
	dir := initProject(t)
	cfgPath := filepath.Join(dir, "sitebuilder.yaml")
	require.FileExists(t, cfgPath)
	require.FileExists(t, filepath.Join(dir, "templates", "page.html"))

	require.NoError(t, runCLI(t, nil, "-c", cfgPath, "build"))
	require.FileExists(t, filepath.Join(dir, "dist", "index.html"))
	require.FileExists(t, filepath.Join(dir, "dist", "sitemap.xml"))

	var opened string
	g := &Global{Open: func(path string) error {
		opened = path
		return nil
	}}
	require.NoError(t, runCLI(t, g, "-c", cfgPath, "open"))
	require.Equal(t, filepath.Join(dir, "dist", "index.html"), opened)
}

func TestBuildOpenFlag(t *testing.T) {
	dir := initProject(t)
	var calls int
	g := &Global{Open: func(string) error {
		calls++
		return nil
	}}
	require.NoError(t, runCLI(t, g, "-c", filepath.Join(dir, "sitebuilder.yaml"), "build", "--open"))
	require.Equal(t, 1, calls)
}

func TestBuildWritesMetricsTextfile(t *testing.T) {
	dir := initProject(t)
	cfgPath := filepath.Join(dir, "sitebuilder.yaml")
	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	data = []byte(strings.Replace(string(data), `textfile: ""`, `textfile: "metrics/build.prom"`, 1))
	require.NoError(t, os.WriteFile(cfgPath, data, 0o600))

	require.NoError(t, runCLI(t, nil, "-c", cfgPath, "build"))

	out, err := os.ReadFile(filepath.Join(dir, "metrics", "build.prom"))
	require.NoError(t, err)
	require.Contains(t, string(out), "sitebuilder_build_outcomes_total")
	require.Contains(t, string(out), "sitebuilder_pages_rendered_total")
}

func TestOpenBeforeBuild(t *testing.T) {
	dir := initProject(t, "--bare")
	g := &Global{Open: func(string) error {
		t.Fatal("opener must not be called")
		return nil
	}}
	err := runCLI(t, g, "-c", filepath.Join(dir, "sitebuilder.yaml"), "open")
	require.Error(t, err)
	require.True(t, sberrors.IsCategory(err, sberrors.CategoryValidation))
}

func TestSyncBeforeBuild(t *testing.T) {
	dir := initProject(t)
	err := runCLI(t, nil, "-c", filepath.Join(dir, "sitebuilder.yaml"), "sync", "-d", "0.5")
	require.Error(t, err)
	require.True(t, sberrors.IsCategory(err, sberrors.CategoryValidation))
}

func TestSyncRejectsNegativeDelay(t *testing.T) {
	dir := initProject(t)
	err := runCLI(t, nil, "-c", filepath.Join(dir, "sitebuilder.yaml"), "sync", "--delay=-1")
	require.Error(t, err)
	require.True(t, sberrors.IsCategory(err, sberrors.CategoryValidation))
}

func TestInitRefusesOverwrite(t *testing.T) {
	dir := initProject(t)
	err := runCLI(t, nil, "-c", filepath.Join(dir, "sitebuilder.yaml"), "init")
	require.Error(t, err)

	require.NoError(t, runCLI(t, nil, "-c", filepath.Join(dir, "sitebuilder.yaml"), "init", "--force"))
}

func TestInitWritesNothingWhenStarterFileExists(t *testing.T) {
	dir := t.TempDir()
	license := filepath.Join(dir, "LICENSE")
	require.NoError(t, os.WriteFile(license, []byte("mine"), 0o600))

	err := runCLI(t, nil, "init", "--dir", dir)
	require.Error(t, err)
	require.True(t, sberrors.IsCategory(err, sberrors.CategoryValidation))
	require.NoFileExists(t, filepath.Join(dir, "sitebuilder.yaml"))
	require.NoDirExists(t, filepath.Join(dir, "templates"))

	data, err := os.ReadFile(license)
	require.NoError(t, err)
	require.Equal(t, "mine", string(data))
}

func TestSyncRejectsNegativeRetries(t *testing.T) {
	dir := initProject(t)
	err := runCLI(t, nil, "-c", filepath.Join(dir, "sitebuilder.yaml"), "sync", "--retries=-1")
	require.Error(t, err)
	require.True(t, sberrors.IsCategory(err, sberrors.CategoryValidation))
}

func TestInitDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "site")
	require.NoError(t, runCLI(t, nil, "init", "--dir", dir))
	require.FileExists(t, filepath.Join(dir, "sitebuilder.yaml"))
	require.FileExists(t, filepath.Join(dir, "content", "index.html"))
}

func TestBuildMissingConfig(t *testing.T) {
	err := runCLI(t, nil, "-c", filepath.Join(t.TempDir(), "missing.yaml"), "build")
	require.Error(t, err)
	require.True(t, sberrors.IsCategory(err, sberrors.CategoryConfig))
}

func TestWatchInputs(t *testing.T) {
	dir := initProject(t, "--bare")
	cfg, err := config.Load(filepath.Join(dir, "sitebuilder.yaml"))
	require.NoError(t, err)

	in := watchInputs(cfg)
	require.Equal(t, []string{filepath.Join(dir, "content"), filepath.Join(dir, "templates")}, in.Dirs)
	require.Equal(t, filepath.Join(dir, "sitebuilder.yaml"), in.ConfigFile)
	require.Equal(t, filepath.Join(dir, "dist"), in.IgnoreDir)
}

func TestNewRebuildSchedulerRejectsBadCron(t *testing.T) {
	rb := watch.NewRebuilder(func(context.Context) error { return nil }, 0)
	_, err := newRebuildScheduler(0, "not a cron", rb)
	require.Error(t, err)
	require.True(t, sberrors.IsCategory(err, sberrors.CategoryValidation))
}
