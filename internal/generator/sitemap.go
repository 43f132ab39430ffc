package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
)

const sitemapFileName = "sitemap.xml"

type sitemapEntry struct {
	Location string
	LastMod  time.Time
}

// writeSitemap lists an absolute URL for every literal route. Parameterized
// routes have no concrete URL and stay manifest-only.
func (s *service) writeSitemap(outcomes []documentResult, fallback time.Time) error {
	type routedPage struct {
		route   string
		lastMod time.Time
	}
	var pages []routedPage
	for _, outcome := range outcomes {
		if outcome.state != StateEmitted {
			continue
		}
		for _, route := range outcome.component.Routes {
			route = strings.TrimSpace(route)
			if route == "" || strings.Contains(route, "{") {
				continue
			}
			pages = append(pages, routedPage{route: route, lastMod: outcome.component.ModTime})
		}
	}

	paths := make(map[string]string, len(pages))
	for i, page := range pages {
		paths[sitemapRouteName(i)] = page.route
	}
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{{
			Name:    "site",
			BaseURL: strings.TrimRight(strings.TrimSpace(s.cfg.BaseURL), "/"),
			Paths:   paths,
		}},
	})
	group, err := lookupGroup(manager, "site")
	if err != nil {
		return err
	}

	entries := make([]sitemapEntry, 0, len(pages))
	seen := map[string]struct{}{}
	for i, page := range pages {
		location, err := buildLocation(group, sitemapRouteName(i))
		if err != nil {
			return err
		}
		if _, ok := seen[location]; ok {
			continue
		}
		seen[location] = struct{}{}
		lastMod := page.lastMod
		if lastMod.IsZero() {
			lastMod = fallback
		}
		entries = append(entries, sitemapEntry{Location: location, LastMod: lastMod})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Location < entries[j].Location
	})

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, entry := range entries {
		builder.WriteString("  <url>\n")
		builder.WriteString(fmt.Sprintf("    <loc>%s</loc>\n", entry.Location))
		if !entry.LastMod.IsZero() {
			builder.WriteString(fmt.Sprintf("    <lastmod>%s</lastmod>\n", entry.LastMod.UTC().Format(time.RFC3339)))
		}
		builder.WriteString("  </url>\n")
	}
	builder.WriteString(`</urlset>` + "\n")

	target := filepath.Join(s.cfg.OutputDir, sitemapFileName)
	if err := ensureDir(map[string]struct{}{}, filepath.Dir(target)); err != nil {
		return err
	}
	if err := os.WriteFile(target, []byte(builder.String()), 0o644); err != nil {
		return fmt.Errorf("generator: write sitemap: %w", err)
	}
	s.log.Debug("sitemap written", "path", target, "urls", len(entries))
	return nil
}

func sitemapRouteName(i int) string {
	return fmt.Sprintf("route%d", i)
}

// The urlkit manager panics on unknown groups and routes; these wrappers
// turn that into errors the build can report.
func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("generator: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	return group, err
}

func buildLocation(group *urlkit.Group, route string) (location string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("generator: sitemap url for %q: %v", route, rec)
		}
	}()
	return group.Builder(route).Build()
}
