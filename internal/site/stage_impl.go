package site

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/attributions"
	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/fsutil"
	"git.home.luguber.info/inful/sitebuilder/internal/linkcheck"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/manifest"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
	"git.home.luguber.info/inful/sitebuilder/internal/sitemap"
)

// stagePrepareOutput deletes and recreates the output directory.
func stagePrepareOutput(ctx context.Context, bs *buildState) error {
	if err := os.RemoveAll(bs.outputDir); err != nil {
		return sberrors.FileSystemError("remove", bs.outputDir, err)
	}
	if err := os.MkdirAll(bs.outputDir, 0o750); err != nil {
		return sberrors.FileSystemError("mkdir", bs.outputDir, err)
	}
	observability.DebugContext(ctx, "Output directory cleaned", logfields.Path(bs.outputDir))
	return nil
}

func stageLoadAttributions(ctx context.Context, bs *buildState) error {
	dir := bs.cfg.AttributionsDir()
	if dir == "" {
		return nil
	}
	items, err := attributions.Load(dir)
	if err != nil {
		return newWarnStageError(StageLoadAttributions, err)
	}
	bs.attributions = items
	bs.report.Attributions = len(items)
	observability.DebugContext(ctx, "Attributions loaded", logfields.Path(dir), logfields.Count(len(items)))
	return nil
}

func stageRenderPages(ctx context.Context, bs *buildState) error {
	pages, err := listPages(bs.sourceDir)
	if err != nil {
		return sberrors.FileSystemError("read", bs.sourceDir, err)
	}
	env, err := bs.renderEnvironment()
	if err != nil {
		return err
	}
	observability.InfoContext(ctx, "Templates registered", logfields.Count(len(env.Templates())))

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return newCanceledStageError(StageRenderPages, err)
		}
		html, err := env.Render(page, bs.payload(page))
		if err != nil {
			return err
		}
		dest := filepath.Join(bs.outputDir, page)
		if err := os.WriteFile(dest, []byte(html), 0o644); err != nil { //nolint:gosec // published site content
			return sberrors.FileSystemError("write", dest, err)
		}
		bs.pages = append(bs.pages, page)
		bs.report.PagesRendered++
		observability.DebugContext(observability.WithPage(ctx, page), "Page rendered")
	}
	bs.recorder.AddPagesRendered(len(bs.pages))
	observability.InfoContext(ctx, "Content rendered", logfields.Count(len(bs.pages)))
	return nil
}

func stageCopyStatic(ctx context.Context, bs *buildState) error {
	entries, err := os.ReadDir(bs.sourceDir)
	if err != nil {
		return sberrors.FileSystemError("read", bs.sourceDir, err)
	}
	copied := 0
	for _, entry := range entries {
		name := entry.Name()
		if isPage(name) || bs.cfg.IsBlacklisted(name) {
			continue
		}
		n, err := fsutil.Copy(ctx, filepath.Join(bs.sourceDir, name), filepath.Join(bs.outputDir, name))
		copied += n
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return newCanceledStageError(StageCopyStatic, err)
			}
			return sberrors.FileSystemError("copy", filepath.Join(bs.sourceDir, name), err)
		}
	}
	bs.report.FilesCopied = copied
	bs.recorder.AddFilesCopied(copied)
	observability.InfoContext(ctx, "Static files copied", logfields.Count(copied))
	return nil
}

func stageUpdateManifest(ctx context.Context, bs *buildState) error {
	path := filepath.Join(bs.outputDir, ManifestPath)
	updated, err := manifest.Update(path, bs.cfg.Site.Name, bs.cfg.Site.ShortName)
	if err != nil {
		return err
	}
	bs.report.ManifestUpdated = updated
	if updated {
		observability.InfoContext(ctx, "site.webmanifest updated", logfields.Path(path))
	} else {
		observability.InfoContext(ctx, "No site.webmanifest exists, skipping update")
	}
	return nil
}

func stageGenerateSitemap(ctx context.Context, bs *buildState) error {
	if !bs.cfg.Build.Sitemap {
		return nil
	}
	dest := filepath.Join(bs.outputDir, SitemapFile)
	if _, err := os.Stat(dest); err == nil {
		observability.InfoContext(ctx, "sitemap.xml provided by content, skipping generation")
		return nil
	}
	n, err := sitemap.Write(dest, bs.cfg.Site.RootURL, bs.pages, bs.start)
	if err != nil {
		return sberrors.FileSystemError("write", dest, err)
	}
	bs.report.SitemapEntries = n
	observability.InfoContext(ctx, "Sitemap generated", logfields.Path(dest), logfields.Count(n))
	return nil
}

func stageVerifyLinks(ctx context.Context, bs *buildState) error {
	if !bs.cfg.Build.VerifyLinks {
		return nil
	}
	broken, err := linkcheck.Verify(bs.outputDir, bs.pages, bs.cfg.Site.RootURL)
	if err != nil {
		return newWarnStageError(StageVerifyLinks, err)
	}
	bs.recorder.SetBrokenLinks(len(broken))
	for _, b := range broken {
		bs.report.BrokenLinks = append(bs.report.BrokenLinks, b.String())
		observability.WarnContext(observability.WithPage(ctx, b.Page), "Broken link", logfields.URL(b.URL), logfields.Path(b.Target))
	}
	if len(broken) == 0 {
		return nil
	}
	err = fmt.Errorf("%d broken internal link(s)", len(broken))
	if bs.cfg.Build.FailOnBrokenLinks {
		return newFatalStageError(StageVerifyLinks, sberrors.Wrap(err, sberrors.CategoryBuild, sberrors.SeverityFatal, "broken internal links").
			WithContext("count", len(broken)))
	}
	return newWarnStageError(StageVerifyLinks, err)
}
