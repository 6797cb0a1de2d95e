package livenav

import (
	"sync"

	"github.com/aderemi/folionav/pkg/nav"
	"github.com/aderemi/folionav/pkg/protocol"
)

// Document is a nav.Host backed by what the browser last reported. Scroll
// notifications fire when a report arrives; scroll commands go back to the
// browser through the sink.
type Document struct {
	mu        sync.Mutex
	scrollY   float64
	width     float64
	layout    nav.StaticLayout
	listeners map[int]func()
	nextID    int

	sink func(top float64, behavior nav.Behavior)
}

// NewDocument creates a document that forwards scroll commands to sink.
func NewDocument(sink func(top float64, behavior nav.Behavior)) *Document {
	return &Document{
		layout:    nav.StaticLayout{},
		listeners: make(map[int]func()),
		sink:      sink,
	}
}

// Resolve implements nav.Layout.
func (d *Document) Resolve(id string) (nav.Metrics, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.layout[id]
	return m, ok
}

// ScrollTo implements nav.Scroller.
func (d *Document) ScrollTo(top float64, behavior nav.Behavior) {
	if d.sink != nil {
		d.sink(top, behavior)
	}
}

// ScrollY implements nav.Host.
func (d *Document) ScrollY() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scrollY
}

// Width returns the last reported viewport width, 0 if unknown.
func (d *Document) Width() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width
}

// OnScroll implements nav.Host.
func (d *Document) OnScroll(fn func()) (cancel func()) {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.listeners[id] = fn
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.listeners, id)
		d.mu.Unlock()
	}
}

// Report records a scroll report and notifies listeners. A nil layout
// keeps the previous geometry.
func (d *Document) Report(scrollY float64, layout nav.StaticLayout) {
	d.mu.Lock()
	d.scrollY = scrollY
	if layout != nil {
		d.layout = layout
	}
	listeners := make([]func(), 0, len(d.listeners))
	for _, fn := range d.listeners {
		listeners = append(listeners, fn)
	}
	d.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// SetWidth records the viewport width.
func (d *Document) SetWidth(width float64) {
	d.mu.Lock()
	d.width = width
	d.mu.Unlock()
}

// ParseLayout reads the "sections" object of a scroll report,
// {"id": [top, height], ...}. Malformed entries are skipped. ok is false
// when v is not an object at all.
func ParseLayout(v any) (layout nav.StaticLayout, ok bool) {
	raw, isMap := v.(map[string]any)
	if !isMap {
		return nil, false
	}

	layout = make(nav.StaticLayout, len(raw))
	for id, entry := range raw {
		pair, isList := entry.([]any)
		if !isList || len(pair) != 2 {
			continue
		}
		top, ok1 := protocol.AsFloat(pair[0])
		height, ok2 := protocol.AsFloat(pair[1])
		if !ok1 || !ok2 || height < 0 {
			continue
		}
		layout[id] = nav.Metrics{OffsetTop: top, OffsetHeight: height}
	}
	return layout, true
}
