package nav

// Navigator turns a navigation intent into a scroll command that lands the
// target section just below the fixed bar.
type Navigator struct {
	registry  *Registry
	barOffset float64
}

// NewNavigator creates a navigator.
func NewNavigator(registry *Registry, barOffset float64) *Navigator {
	return &Navigator{
		registry:  registry,
		barOffset: barOffset,
	}
}

// Target computes the scroll destination for id. ok is false when id is
// not navigable or its element is not mounted.
func (n *Navigator) Target(id string, layout Layout) (float64, bool) {
	if !n.registry.Valid(id) {
		return 0, false
	}
	m, ok := layout.Resolve(id)
	if !ok {
		return 0, false
	}
	return m.OffsetTop - n.barOffset, true
}

// NavigateTo issues a smooth scroll to id's corrected offset and closes the
// menu whether or not the scroll was issued. An unresolved target is not an
// error: content may not be mounted yet, so the call is a no-op apart from
// closing the menu. A later call simply retargets the host.
func (n *Navigator) NavigateTo(id string, host interface {
	Layout
	Scroller
}, menu *Menu) (float64, bool) {
	target, ok := n.Target(id, host)
	if ok {
		host.ScrollTo(target, BehaviorSmooth)
	}
	menu.Close()
	return target, ok
}
