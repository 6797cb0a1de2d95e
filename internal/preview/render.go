package preview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/aderemi/folionav/internal/content"
	"github.com/aderemi/folionav/pkg/nav"
)

// renderPage lays the site's sections out as lines and records where each
// one starts. Section bodies go through glamour at the given width.
func renderPage(s *content.Site, width int, style string, st styles) (string, nav.StaticLayout, error) {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return "", nil, fmt.Errorf("markdown renderer: %w", err)
	}

	var lines []string
	layout := make(nav.StaticLayout, len(s.Sections))

	for _, sec := range s.Sections {
		start := len(lines)

		if sec.Heading != "" {
			lines = append(lines, st.heading.Render(sec.Heading), "")
		}
		if body := strings.TrimSpace(sec.Body); body != "" {
			out, err := r.Render(body)
			if err != nil {
				return "", nil, fmt.Errorf("section %s: %w", sec.ID, err)
			}
			lines = append(lines, strings.Split(strings.Trim(out, "\n"), "\n")...)
		}
		for _, l := range sec.Links {
			lines = append(lines, st.link.Render(fmt.Sprintf("→ %s  %s", l.Label, l.URL)))
		}

		// Every section ends with a rule so short sections still own lines.
		lines = append(lines, "", st.rule.Render(strings.Repeat("─", width)), "")

		layout[sec.ID] = nav.Metrics{
			OffsetTop:    float64(start),
			OffsetHeight: float64(len(lines) - start),
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...), layout, nil
}
