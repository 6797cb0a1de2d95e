// Package site renders the portfolio document around the live navigation
// bar: head metadata, inline styles and page configuration. Components live
// in site/components and the composed page in site/page.
package site

import "github.com/aderemi/folionav/internal/content"

// PageConfig defines the document metadata.
type PageConfig struct {
	// Title is the page title (shown in browser tab and search results)
	Title string
	// Description is the meta description for SEO
	Description string
	// URL is the canonical URL of the page
	URL string
	// Author is the portfolio owner
	Author string
	// Language is the page language (default: "en")
	Language string
	// ThemeColor is the mobile browser theme color
	ThemeColor string
	// Breakpoint is the viewport width in CSS pixels below which the
	// navigation collapses into the mobile menu
	Breakpoint int
}

// NavLink is an outbound link.
type NavLink struct {
	Label    string
	URL      string
	External bool
}

// DefaultPageConfig returns a PageConfig with sensible defaults.
func DefaultPageConfig() PageConfig {
	return PageConfig{
		Language:   "en",
		ThemeColor: Colors["primary"],
		Breakpoint: 768,
	}
}

// PageConfigFor fills title and author from a site file.
func PageConfigFor(s *content.Site, breakpoint int) PageConfig {
	cfg := DefaultPageConfig()
	cfg.Title = s.Title
	cfg.Author = s.Brand
	if home, ok := s.Section(s.Registry().Home()); ok {
		cfg.Description = home.Heading
	}
	if breakpoint > 0 {
		cfg.Breakpoint = breakpoint
	}
	return cfg
}

// Links converts content links, marking absolute URLs external.
func Links(links []content.Link) []NavLink {
	out := make([]NavLink, len(links))
	for i, l := range links {
		out[i] = NavLink{
			Label:    l.Label,
			URL:      l.URL,
			External: len(l.URL) > 4 && l.URL[:4] == "http",
		}
	}
	return out
}
