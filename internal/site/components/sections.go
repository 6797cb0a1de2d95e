package components

import (
	"fmt"
	"html"
	"strings"

	"github.com/aderemi/folionav/internal/content"
	"github.com/aderemi/folionav/internal/site"
)

// SectionAttr marks the elements whose geometry the client reports.
const SectionAttr = "data-nav-section"

// RenderSections generates the page's sections in file order. The home
// section gets the page heading; the others an h2.
func RenderSections(s *content.Site) string {
	var sb strings.Builder

	home := s.Registry().Home()

	sb.WriteString(`<main id="main-content">`)
	sb.WriteString("\n")

	for _, sec := range s.Sections {
		id := html.EscapeString(sec.ID)
		sb.WriteString(fmt.Sprintf(`<section id="%s" class="page-section page-section-%s" %s>`, id, id, SectionAttr))
		sb.WriteString(`<div class="container">`)

		if sec.Heading != "" {
			tag := "h2"
			if sec.ID == home {
				tag = "h1"
			}
			sb.WriteString(fmt.Sprintf("<%s>%s</%s>", tag, html.EscapeString(sec.Heading), tag))
		}

		if sec.HTML != "" {
			sb.WriteString(`<div class="prose">`)
			sb.WriteString(string(sec.HTML))
			sb.WriteString(`</div>`)
		}

		if len(sec.Links) > 0 {
			sb.WriteString(`<div class="section-links">`)
			for _, link := range site.Links(sec.Links) {
				sb.WriteString(renderAnchor(link, "btn"))
			}
			sb.WriteString(`</div>`)
		}

		sb.WriteString(`</div></section>`)
		sb.WriteString("\n")
	}

	sb.WriteString(`</main>`)
	sb.WriteString("\n")

	return sb.String()
}

func renderAnchor(link site.NavLink, class string) string {
	attrs := ""
	if link.External {
		attrs = ` target="_blank" rel="noopener noreferrer"`
	}
	return fmt.Sprintf(`<a href="%s" class="%s"%s>%s</a>`,
		html.EscapeString(link.URL), class, attrs, html.EscapeString(link.Label))
}
