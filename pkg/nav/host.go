package nav

// Metrics is the geometry of one section in the current layout.
type Metrics struct {
	OffsetTop    float64
	OffsetHeight float64
}

// Contains reports whether p lies in the half-open interval
// [OffsetTop, OffsetTop+OffsetHeight). Zero-height sections contain nothing.
func (m Metrics) Contains(p float64) bool {
	return p >= m.OffsetTop && p < m.OffsetTop+m.OffsetHeight
}

// Layout resolves section geometry at observation time.
// ok is false when the section's element is not mounted.
type Layout interface {
	Resolve(id string) (m Metrics, ok bool)
}

// StaticLayout is a Layout backed by a fixed map.
type StaticLayout map[string]Metrics

// Resolve implements Layout.
func (l StaticLayout) Resolve(id string) (Metrics, bool) {
	m, ok := l[id]
	return m, ok
}

// Behavior selects how the host moves the viewport.
type Behavior int

const (
	// BehaviorSmooth animates to the target; the host retargets if a new
	// command arrives mid-animation.
	BehaviorSmooth Behavior = iota
	// BehaviorInstant jumps.
	BehaviorInstant
)

func (b Behavior) String() string {
	if b == BehaviorInstant {
		return "instant"
	}
	return "smooth"
}

// Scroller issues scroll commands to the host document.
// ScrollTo must return immediately; animation is the host's job.
type Scroller interface {
	ScrollTo(top float64, behavior Behavior)
}

// Host is the document a Controller attaches to.
type Host interface {
	Layout
	Scroller

	// ScrollY returns the current vertical scroll offset.
	ScrollY() float64

	// OnScroll registers fn to run after every scroll notification and
	// returns a func that removes it.
	OnScroll(fn func()) (cancel func())
}
