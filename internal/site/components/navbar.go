// Package components provides the portfolio page components.
package components

import (
	"fmt"
	"html"
	"strings"

	"github.com/aderemi/folionav/pkg/nav"
)

// Slots of the navigation bar. Each is diffed independently.
const (
	SlotBar    = "bar"
	SlotMenu   = "menu"
	SlotActive = "active"
)

// Client events dispatched by the bar's controls.
const (
	EventNavigate   = "navigate"
	EventToggleMenu = "toggle_menu"
)

// NavbarOptions configures the navbar component.
type NavbarOptions struct {
	// Brand is the centered brand text; it navigates to the home section
	Brand string
	// Registry supplies the sections and their placement
	Registry *nav.Registry
	// State is the controller state to render
	State nav.State
	// Mobile collapses both groups into the toggleable menu
	Mobile bool
}

// RenderNavbar generates the fixed navigation bar and its mobile menu.
func RenderNavbar(opts NavbarOptions) string {
	var sb strings.Builder

	sb.WriteString(`<a href="#main-content" class="skip-link">Skip to main content</a>`)
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf(`<header data-slot="%s">`, SlotBar))
	navClass := "nav"
	if opts.State.IsCompact {
		navClass += " nav-compact"
	}
	sb.WriteString(fmt.Sprintf(`<nav class="%s" aria-label="Main navigation">`, navClass))
	sb.WriteString(`<div class="container nav-inner">`)

	renderGroup(&sb, "nav-group nav-group-left", opts.Registry.Placed(nav.PlacementLeft), opts.State.ActiveSectionID)

	home := opts.Registry.Home()
	sb.WriteString(fmt.Sprintf(`<a href="#%s" class="brand" data-event="%s" data-value-section="%s"%s>%s</a>`,
		html.EscapeString(home),
		EventNavigate,
		html.EscapeString(home),
		ariaCurrent(home == opts.State.ActiveSectionID),
		html.EscapeString(opts.Brand)))

	renderGroup(&sb, "nav-group nav-group-right", opts.Registry.Placed(nav.PlacementRight), opts.State.ActiveSectionID)

	label := "Open menu"
	if opts.State.IsMenuOpen {
		label = "Close menu"
	}
	sb.WriteString(fmt.Sprintf(`<button type="button" class="nav-toggle" aria-controls="nav-menu" aria-expanded="%t" aria-label="%s" data-event="%s">`,
		opts.State.IsMenuOpen, label, EventToggleMenu))
	sb.WriteString(`<span class="nav-toggle-bar" aria-hidden="true"></span></button>`)

	sb.WriteString(`</div></nav></header>`)
	sb.WriteString("\n")

	// The menu lists every visible section in registry order.
	sb.WriteString(fmt.Sprintf(`<div id="nav-menu" data-slot="%s">`, SlotMenu))
	if opts.Mobile && opts.State.IsMenuOpen {
		sb.WriteString(`<div class="nav-menu"><ul>`)
		for _, s := range opts.Registry.Visible() {
			sb.WriteString("<li>")
			renderLink(&sb, s, opts.State.ActiveSectionID)
			sb.WriteString("</li>")
		}
		sb.WriteString(`</ul></div>`)
	}
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf(`<p class="sr-only" aria-live="polite" data-slot="%s">%s</p>`,
		SlotActive, html.EscapeString(activeLabel(opts.Registry, opts.State.ActiveSectionID))))
	sb.WriteString("\n")

	return sb.String()
}

func renderGroup(sb *strings.Builder, class string, sections []nav.Section, active string) {
	sb.WriteString(fmt.Sprintf(`<div class="%s">`, class))
	for _, s := range sections {
		renderLink(sb, s, active)
	}
	sb.WriteString(`</div>`)
}

func renderLink(sb *strings.Builder, s nav.Section, active string) {
	class := "nav-link"
	if s.ID == active {
		class += " is-active"
	}
	id := html.EscapeString(s.ID)
	sb.WriteString(fmt.Sprintf(`<a href="#%s" class="%s" data-section="%s" data-event="%s" data-value-section="%s"%s>%s</a>`,
		id, class, id, EventNavigate, id, ariaCurrent(s.ID == active), html.EscapeString(s.Label)))
}

func ariaCurrent(active bool) string {
	if active {
		return ` aria-current="true"`
	}
	return ""
}

func activeLabel(reg *nav.Registry, id string) string {
	if s, ok := reg.Get(id); ok {
		return s.Label
	}
	return id
}
