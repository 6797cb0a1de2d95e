package nav

import "sync"

type scrollCall struct {
	top      float64
	behavior Behavior
}

// fakeHost is an in-memory document. ScrollTo jumps instantly and fires
// listeners synchronously, which is the worst case for re-entrancy.
type fakeHost struct {
	mu        sync.Mutex
	layout    StaticLayout
	y         float64
	listeners map[int]func()
	next      int
	scrolls   []scrollCall

	jumpOnScroll bool
}

func newFakeHost(layout StaticLayout) *fakeHost {
	return &fakeHost{
		layout:    layout,
		listeners: make(map[int]func()),
	}
}

func (h *fakeHost) Resolve(id string) (Metrics, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.layout.Resolve(id)
}

func (h *fakeHost) ScrollY() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.y
}

func (h *fakeHost) ScrollTo(top float64, behavior Behavior) {
	h.mu.Lock()
	h.scrolls = append(h.scrolls, scrollCall{top: top, behavior: behavior})
	jump := h.jumpOnScroll
	h.mu.Unlock()

	if jump {
		h.scroll(top)
	}
}

func (h *fakeHost) OnScroll(fn func()) func() {
	h.mu.Lock()
	id := h.next
	h.next++
	h.listeners[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}

// scroll moves the viewport and notifies listeners.
func (h *fakeHost) scroll(y float64) {
	h.mu.Lock()
	h.y = y
	fns := make([]func(), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (h *fakeHost) listenerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

func (h *fakeHost) lastScroll() (scrollCall, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.scrolls) == 0 {
		return scrollCall{}, false
	}
	return h.scrolls[len(h.scrolls)-1], true
}

func (h *fakeHost) scrollCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.scrolls)
}
