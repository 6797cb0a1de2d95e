package preview

import (
	"math"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/aderemi/folionav/pkg/nav"
)

// lineHost is a nav.Host over a viewport. Offsets are in lines. Smooth
// scrolls are animated by the model's tick loop; each step notifies the
// controller like a user scroll would.
type lineHost struct {
	vp     viewport.Model
	layout nav.StaticLayout

	listeners map[int]func()
	nextID    int

	target    int
	animating bool
}

func newLineHost(width, height int) *lineHost {
	return &lineHost{
		vp:        viewport.New(width, height),
		layout:    nav.StaticLayout{},
		listeners: make(map[int]func()),
	}
}

func (h *lineHost) Resolve(id string) (nav.Metrics, bool) {
	m, ok := h.layout[id]
	return m, ok
}

func (h *lineHost) ScrollY() float64 {
	return float64(h.vp.YOffset)
}

func (h *lineHost) OnScroll(fn func()) (cancel func()) {
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	return func() { delete(h.listeners, id) }
}

// ScrollTo retargets any running animation. Targets outside the content
// are clamped by the viewport.
func (h *lineHost) ScrollTo(top float64, behavior nav.Behavior) {
	target := int(math.Round(top))
	if target < 0 {
		target = 0
	}
	if behavior == nav.BehaviorInstant {
		h.animating = false
		h.setOffset(target)
		return
	}
	h.target = target
	h.animating = true
}

// step advances a smooth scroll by a quarter of the remaining distance,
// at least one line. It reports whether the animation is still running.
func (h *lineHost) step() bool {
	if !h.animating {
		return false
	}
	before := h.vp.YOffset
	dist := h.target - before
	if dist == 0 {
		h.animating = false
		return false
	}

	delta := dist / 4
	if delta == 0 {
		delta = sign(dist)
	}
	h.setOffset(before + delta)

	// Stuck against the end of the content.
	if h.vp.YOffset == before || h.vp.YOffset == h.target {
		h.animating = false
	}
	return h.animating
}

// setOffset moves the viewport and notifies listeners when it moved.
func (h *lineHost) setOffset(y int) {
	before := h.vp.YOffset
	h.vp.SetYOffset(y)
	if h.vp.YOffset != before {
		h.notify()
	}
}

// scrollBy is a user scroll; it cancels a running animation.
func (h *lineHost) scrollBy(n int) {
	h.animating = false
	h.setOffset(h.vp.YOffset + n)
}

func (h *lineHost) notify() {
	fns := make([]func(), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	for _, fn := range fns {
		fn()
	}
}

func sign(n int) int {
	if n < 0 {
		return -1
	}
	return 1
}
