// Package nav implements the viewport-relative navigation controller:
// scroll-spy, offset-corrected smooth scrolling and the collapsible menu.
//
// The package knows nothing about browsers or terminals. A Host supplies
// the scroll position, section geometry and a scroll command; the live
// (WebSocket) and preview (terminal) front ends each provide one.
package nav

import (
	"errors"
	"fmt"
)

// DefaultHomeID is the section that is active before any scroll match.
const DefaultHomeID = "home"

// Registry errors.
var (
	ErrNoSections       = errors.New("registry has no sections")
	ErrEmptySectionID   = errors.New("section id is empty")
	ErrDuplicateSection = errors.New("duplicate section id")
)

// Placement decides where a section's control is rendered.
type Placement int

const (
	// PlacementLeft renders the control in the left group.
	PlacementLeft Placement = iota
	// PlacementRight renders the control in the right group.
	PlacementRight
	// PlacementHidden keeps the section navigable and spied but renders
	// no control for it (the brand element links to home).
	PlacementHidden
)

func (p Placement) String() string {
	switch p {
	case PlacementLeft:
		return "left"
	case PlacementRight:
		return "right"
	case PlacementHidden:
		return "hidden"
	default:
		return "unknown"
	}
}

// ParsePlacement maps a config string to a Placement.
func ParsePlacement(s string) (Placement, error) {
	switch s {
	case "", "left":
		return PlacementLeft, nil
	case "right":
		return PlacementRight, nil
	case "hidden":
		return PlacementHidden, nil
	default:
		return PlacementLeft, fmt.Errorf("unknown placement %q", s)
	}
}

// Section is a navigable region of the page.
type Section struct {
	ID        string
	Label     string
	Placement Placement
}

// Registry is the immutable, ordered list of navigable sections.
// Order is display order and also the order in which the scroll-spy
// tests sections; it does not have to match document order.
type Registry struct {
	sections []Section
	index    map[string]int
	home     string
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithHome overrides the home section id.
func WithHome(id string) RegistryOption {
	return func(r *Registry) {
		r.home = id
	}
}

// NewRegistry validates and builds a registry.
func NewRegistry(sections []Section, opts ...RegistryOption) (*Registry, error) {
	if len(sections) == 0 {
		return nil, ErrNoSections
	}

	r := &Registry{
		sections: make([]Section, 0, len(sections)),
		index:    make(map[string]int, len(sections)),
		home:     DefaultHomeID,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.home == "" {
		return nil, fmt.Errorf("home: %w", ErrEmptySectionID)
	}

	for i, s := range sections {
		if s.ID == "" {
			return nil, fmt.Errorf("section %d: %w", i, ErrEmptySectionID)
		}
		if _, dup := r.index[s.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSection, s.ID)
		}
		if s.Label == "" {
			s.Label = s.ID
		}
		r.index[s.ID] = len(r.sections)
		r.sections = append(r.sections, s)
	}

	return r, nil
}

// MustRegistry is NewRegistry that panics on error. Intended for
// package-level defaults and tests.
func MustRegistry(sections []Section, opts ...RegistryOption) *Registry {
	r, err := NewRegistry(sections, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Home returns the home section id.
func (r *Registry) Home() string {
	return r.home
}

// Len returns the number of sections.
func (r *Registry) Len() int {
	return len(r.sections)
}

// Sections returns a copy of all sections in registry order.
func (r *Registry) Sections() []Section {
	out := make([]Section, len(r.sections))
	copy(out, r.sections)
	return out
}

// IDs returns the section ids in registry order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.sections))
	for i, s := range r.sections {
		ids[i] = s.ID
	}
	return ids
}

// Get returns the section with the given id.
func (r *Registry) Get(id string) (Section, bool) {
	i, ok := r.index[id]
	if !ok {
		return Section{}, false
	}
	return r.sections[i], true
}

// Has reports whether id is a registered section.
func (r *Registry) Has(id string) bool {
	_, ok := r.index[id]
	return ok
}

// Valid reports whether id may be the active section: any registered
// section or the home id.
func (r *Registry) Valid(id string) bool {
	return id == r.home || r.Has(id)
}

// Placed returns the sections with the given placement, in registry order.
func (r *Registry) Placed(p Placement) []Section {
	var out []Section
	for _, s := range r.sections {
		if s.Placement == p {
			out = append(out, s)
		}
	}
	return out
}

// Visible returns every section that renders a control, in registry order.
// This is the collapsed mobile list.
func (r *Registry) Visible() []Section {
	var out []Section
	for _, s := range r.sections {
		if s.Placement != PlacementHidden {
			out = append(out, s)
		}
	}
	return out
}
