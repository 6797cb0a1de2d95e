// Package page composes the portfolio document and its HTTP endpoints.
package page

import (
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/aderemi/folionav/client"
	"github.com/aderemi/folionav/internal/content"
	"github.com/aderemi/folionav/internal/site"
	"github.com/aderemi/folionav/internal/site/components"
	"github.com/aderemi/folionav/pkg/router"
)

// Client asset location.
const (
	ClientPrefix = "/_folio/"
	ClientScript = "folionav.js"
)

// Options configures the portfolio layout.
type Options struct {
	// Store supplies the current site on every request
	Store *content.Store
	// Breakpoint is the mobile menu breakpoint in pixels
	Breakpoint int
	// Now returns the time used for the footer; defaults to time.Now
	Now func() time.Time
}

// Layout returns a router.Layout that places the live navigation bar above
// the site's sections.
func Layout(opts Options) router.Layout {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return func(w io.Writer, p router.Page) error {
		s := opts.Store.Site()
		cfg := site.PageConfigFor(s, opts.Breakpoint)

		var body strings.Builder

		body.WriteString(fmt.Sprintf(`<div data-live-root data-socket="%s" data-codec="%s" data-breakpoint="%d">`,
			html.EscapeString(p.SocketPath), html.EscapeString(p.Codec), cfg.Breakpoint))
		body.WriteString(p.Content)
		body.WriteString("</div>\n")

		body.WriteString(components.RenderSections(s))

		var links []site.NavLink
		if contact, ok := s.Section("contact"); ok {
			links = site.Links(contact.Links)
		}
		body.WriteString(components.RenderFooter(components.FooterOptions{
			Copyright: s.Brand,
			Year:      opts.Now().Year(),
			Links:     links,
		}))

		body.WriteString(fmt.Sprintf(`<script nonce="%s" src="%s%s" defer></script>`,
			html.EscapeString(p.Nonce), ClientPrefix, ClientScript))

		_, err := io.WriteString(w, site.RenderDocument(cfg, p.Nonce, "", body.String()))
		return err
	}
}

// SectionInfo is one entry of the /sections listing.
type SectionInfo struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Placement string `json:"placement"`
}

// Sections lists the registry of s.
func Sections(s *content.Site) []SectionInfo {
	reg := s.Registry()
	out := make([]SectionInfo, 0, reg.Len())
	for _, sec := range reg.Sections() {
		out = append(out, SectionInfo{
			ID:        sec.ID,
			Label:     sec.Label,
			Placement: sec.Placement.String(),
		})
	}
	return out
}

// SectionsHandler serves the current registry as JSON.
func SectionsHandler(store *content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Sections(store.Site()))
	}
}

// ClientHandler serves the embedded browser client under ClientPrefix.
func ClientHandler() http.Handler {
	return http.StripPrefix(ClientPrefix, client.Handler())
}
