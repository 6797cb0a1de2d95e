package nav

import (
	"errors"
	"sync"

	"github.com/aderemi/folionav/pkg/logging"
)

// Controller errors.
var (
	ErrAlreadyAttached = errors.New("controller already attached to a host")
	ErrNotAttached     = errors.New("controller not attached")
)

// Controller composes the scroll-spy, navigator and menu around one Host.
// It is the single owner of State.
type Controller struct {
	registry  *Registry
	spy       *ScrollSpy
	navigator *Navigator
	menu      Menu

	state State

	host   Host
	cancel func()
	gen    uint64

	closeMenuOnSectionChange bool

	observers  []observer
	nextObsID  int
	logger     logging.Logger
	thresholds Thresholds

	mu sync.Mutex
}

// Option configures a Controller.
type Option func(*Controller)

// WithThresholds overrides the pixel constants.
func WithThresholds(t Thresholds) Option {
	return func(c *Controller) {
		c.thresholds = t
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithCloseMenuOnSectionChange closes the menu whenever the active section
// changes through scrolling.
func WithCloseMenuOnSectionChange(enabled bool) Option {
	return func(c *Controller) {
		c.closeMenuOnSectionChange = enabled
	}
}

// NewController creates a detached controller in its initial state.
func NewController(registry *Registry, opts ...Option) *Controller {
	c := &Controller{
		registry:   registry,
		state:      InitialState(registry.Home()),
		logger:     logging.NopLogger{},
		thresholds: DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.spy = NewScrollSpy(registry, c.thresholds)
	c.navigator = NewNavigator(registry, c.thresholds.BarOffset)
	return c
}

// Registry returns the controller's registry.
func (c *Controller) Registry() *Registry {
	return c.registry
}

// Thresholds returns the constants in use.
func (c *Controller) Thresholds() Thresholds {
	return c.thresholds
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Attach subscribes one scroll handler on host and evaluates it once, since
// the document may already be scrolled (reload with an anchor).
func (c *Controller) Attach(host Host) error {
	c.mu.Lock()
	if c.host != nil {
		c.mu.Unlock()
		return ErrAlreadyAttached
	}
	c.gen++
	gen := c.gen
	c.host = host
	c.mu.Unlock()

	cancel := host.OnScroll(func() { c.handleScroll(gen) })

	c.mu.Lock()
	if c.gen != gen {
		// Detached while subscribing.
		c.mu.Unlock()
		cancel()
		return nil
	}
	c.cancel = cancel
	c.mu.Unlock()

	c.handleScroll(gen)
	return nil
}

// Detach removes the scroll listener. Safe to call more than once; after
// it returns, scroll notifications no longer touch the state.
func (c *Controller) Detach() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.host = nil
	c.gen++
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Restore replaces the state, e.g. from a reconnect snapshot. An active id
// that is not in the registry falls back to home, and the menu always
// comes back closed.
func (c *Controller) Restore(s State) {
	if !c.registry.Valid(s.ActiveSectionID) {
		s.ActiveSectionID = c.registry.Home()
	}
	s.IsMenuOpen = false
	c.apply(func(st *State) { *st = s })
}

// Refresh re-runs the scroll handler against the attached host.
func (c *Controller) Refresh() error {
	c.mu.Lock()
	if c.host == nil {
		c.mu.Unlock()
		return ErrNotAttached
	}
	gen := c.gen
	c.mu.Unlock()

	c.handleScroll(gen)
	return nil
}

// handleScroll computes both derived flags from one scroll snapshot, so the
// compact style and the highlight never disagree.
func (c *Controller) handleScroll(gen uint64) {
	c.mu.Lock()
	if c.gen != gen || c.host == nil {
		c.mu.Unlock()
		return
	}
	host := c.host
	prev := c.state
	next := c.spy.Observe(host.ScrollY(), host, prev)
	if c.closeMenuOnSectionChange && next.ActiveSectionID != prev.ActiveSectionID {
		c.menu.Close()
		next.IsMenuOpen = false
	}
	c.state = next
	observers := c.snapshotObservers(prev, next)
	c.mu.Unlock()

	if prev.ActiveSectionID != next.ActiveSectionID {
		c.logger.Debug("active section changed",
			logging.String("from", prev.ActiveSectionID),
			logging.String("to", next.ActiveSectionID))
	}
	notify(observers, next)
}

// RequestNavigate scrolls to the section and closes the menu. It reports
// whether a scroll command was issued; an unresolved target is silently
// ignored.
func (c *Controller) RequestNavigate(id string) bool {
	c.mu.Lock()
	host := c.host
	if host == nil {
		// Nothing to scroll, but the menu contract still holds.
		prev := c.state
		c.menu.Close()
		c.state.IsMenuOpen = false
		observers := c.snapshotObservers(prev, c.state)
		next := c.state
		c.mu.Unlock()
		notify(observers, next)
		return false
	}

	pending := &deferredScroll{Layout: host}
	prev := c.state
	target, ok := c.navigator.NavigateTo(id, pending, &c.menu)
	c.state.IsMenuOpen = c.menu.IsOpen()
	next := c.state
	observers := c.snapshotObservers(prev, next)
	c.mu.Unlock()

	// Issued outside the lock: a host may deliver a scroll notification
	// synchronously from ScrollTo.
	if pending.issued {
		host.ScrollTo(pending.top, pending.behavior)
	}

	if ok {
		c.logger.Debug("navigate",
			logging.String("section", id),
			logging.Float64("target", target))
	} else {
		c.logger.Debug("navigate target unresolved", logging.String("section", id))
	}
	notify(observers, next)
	return ok
}

// ToggleMenu flips the menu and returns the new open state.
func (c *Controller) ToggleMenu() bool {
	var open bool
	c.apply(func(st *State) {
		open = c.menu.Toggle()
		st.IsMenuOpen = open
	})
	return open
}

// DismissMenu closes the menu (outside click, Escape).
func (c *Controller) DismissMenu() {
	c.apply(func(st *State) {
		c.menu.Close()
		st.IsMenuOpen = false
	})
}

// observer is a Subscribe callback; notification follows subscription order.
type observer struct {
	id int
	fn func(State)
}

// Subscribe registers fn to run after each state change and returns a func
// that removes it. fn runs on the goroutine that caused the change.
func (c *Controller) Subscribe(fn func(State)) (cancel func()) {
	c.mu.Lock()
	id := c.nextObsID
	c.nextObsID++
	c.observers = append(c.observers, observer{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			for i, o := range c.observers {
				if o.id == id {
					c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
					break
				}
			}
			c.mu.Unlock()
		})
	}
}

func (c *Controller) apply(mutate func(*State)) {
	c.mu.Lock()
	prev := c.state
	mutate(&c.state)
	if c.state.IsMenuOpen != c.menu.IsOpen() {
		if c.state.IsMenuOpen {
			c.menu.Toggle()
		} else {
			c.menu.Close()
		}
	}
	next := c.state
	observers := c.snapshotObservers(prev, next)
	c.mu.Unlock()

	notify(observers, next)
}

// snapshotObservers must be called with mu held.
func (c *Controller) snapshotObservers(prev, next State) []func(State) {
	if prev == next || len(c.observers) == 0 {
		return nil
	}
	out := make([]func(State), 0, len(c.observers))
	for _, o := range c.observers {
		out = append(out, o.fn)
	}
	return out
}

func notify(observers []func(State), s State) {
	for _, fn := range observers {
		fn(s)
	}
}

// deferredScroll records the navigator's scroll command so it can be
// issued after the controller lock is released.
type deferredScroll struct {
	Layout
	top      float64
	behavior Behavior
	issued   bool
}

func (d *deferredScroll) ScrollTo(top float64, behavior Behavior) {
	d.top = top
	d.behavior = behavior
	d.issued = true
}
