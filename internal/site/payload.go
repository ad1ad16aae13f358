package site

import (
	"maps"

	"git.home.luguber.info/inful/sitebuilder/internal/attributions"
)

// CacheVersionLayout formats the build start time as yyMMddHHmmss.
const CacheVersionLayout = "060102150405"

// payload assembles the template data for a page. Social links come first, then the
// built-in values, then overrides, each layer replacing keys of the previous one.
func (bs *buildState) payload(pagePath string) map[string]any {
	cfg := bs.cfg
	data := make(map[string]any, len(cfg.SocialMedia)+len(cfg.Overrides)+8)
	for name, link := range cfg.SocialMedia {
		data[name] = link
	}

	data["rootUrl"] = cfg.Site.RootURL
	data["pagePath"] = pagePath
	data["cacheVersion"] = bs.cacheVersion
	data["siteName"] = cfg.Site.Name
	data["siteNameShort"] = cfg.Site.ShortName
	data["gitCommit"] = bs.gitCommit
	data["attributions"] = attributions.Maps(bs.attributions)
	data["attributionCategories"] = attributions.CategoryMaps(attributions.Group(bs.attributions))

	maps.Copy(data, cfg.Overrides)
	return data
}
