package components

import (
	"fmt"
	"html"
	"strings"

	"github.com/aderemi/folionav/internal/site"
)

// FooterOptions configures the footer component.
type FooterOptions struct {
	// Copyright is the copyright holder
	Copyright string
	// Year is the copyright year
	Year int
	// Links are additional footer links
	Links []site.NavLink
}

// RenderFooter generates the page footer.
func RenderFooter(opts FooterOptions) string {
	var sb strings.Builder

	sb.WriteString(`<footer class="footer" role="contentinfo">`)
	sb.WriteString(`<div class="container">`)

	if len(opts.Links) > 0 {
		sb.WriteString(`<nav class="section-links" aria-label="Footer navigation">`)
		for _, link := range opts.Links {
			sb.WriteString(renderAnchor(link, "nav-link"))
		}
		sb.WriteString(`</nav>`)
	}

	if opts.Copyright != "" {
		sb.WriteString(fmt.Sprintf(`<p>&copy; %d %s</p>`, opts.Year, html.EscapeString(opts.Copyright)))
	}

	sb.WriteString(`</div></footer>`)
	sb.WriteString("\n")

	return sb.String()
}
