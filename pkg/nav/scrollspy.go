package nav

// State is the only mutable state the controller owns.
type State struct {
	IsCompact       bool   `json:"compact" msgpack:"c"`
	ActiveSectionID string `json:"active" msgpack:"a"`
	IsMenuOpen      bool   `json:"menuOpen" msgpack:"m"`
}

// InitialState is the state at mount.
func InitialState(home string) State {
	return State{ActiveSectionID: home}
}

// Thresholds are the pixel constants of the scroll-spy and navigator.
// Hosts measuring in other units (terminal lines) supply their own.
type Thresholds struct {
	// CompactThreshold: the bar turns compact when scrollY is strictly above it.
	CompactThreshold float64
	// ProbeOffset is added to scrollY before the interval test, so a
	// section activates slightly before it reaches the top of the viewport.
	ProbeOffset float64
	// BarOffset is subtracted from a section's top when navigating, so the
	// section lands just below the fixed bar.
	BarOffset float64
}

// DefaultThresholds returns the browser values.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CompactThreshold: 50,
		ProbeOffset:      100,
		BarOffset:        80,
	}
}

// ScrollSpy derives the compact flag and the active section from the
// scroll offset and the current layout.
//
// Each observation is O(sections): every section's geometry is read on
// every scroll. For large registries a host should report visibility
// changes instead.
type ScrollSpy struct {
	registry   *Registry
	thresholds Thresholds
}

// NewScrollSpy creates a scroll-spy over the registry.
func NewScrollSpy(registry *Registry, thresholds Thresholds) *ScrollSpy {
	return &ScrollSpy{
		registry:   registry,
		thresholds: thresholds,
	}
}

// Compact reports whether the bar is compact at scrollY.
func (s *ScrollSpy) Compact(scrollY float64) bool {
	return scrollY > s.thresholds.CompactThreshold
}

// Match returns the first section, in registry order, whose interval
// contains the probe position for scrollY. Unresolved sections are skipped.
func (s *ScrollSpy) Match(scrollY float64, layout Layout) (string, bool) {
	probe := scrollY + s.thresholds.ProbeOffset
	for _, sec := range s.registry.sections {
		m, ok := layout.Resolve(sec.ID)
		if !ok {
			continue
		}
		if m.Contains(probe) {
			return sec.ID, true
		}
	}
	return "", false
}

// Observe returns prev with IsCompact and ActiveSectionID recomputed from
// one scroll snapshot. When no section matches, the active id is kept.
// IsMenuOpen is passed through untouched.
func (s *ScrollSpy) Observe(scrollY float64, layout Layout, prev State) State {
	next := prev
	next.IsCompact = s.Compact(scrollY)
	if id, ok := s.Match(scrollY, layout); ok {
		next.ActiveSectionID = id
	}
	return next
}
