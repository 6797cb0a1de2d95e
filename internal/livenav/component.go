// Package livenav is the live navigation bar: a server-side component that
// owns a nav.Controller per browser session and drives it with the scroll
// reports the client sends.
package livenav

import (
	"context"
	"errors"
	"io"
	"strconv"

	"github.com/aderemi/folionav/internal/content"
	"github.com/aderemi/folionav/internal/site/components"
	"github.com/aderemi/folionav/pkg/core"
	"github.com/aderemi/folionav/pkg/js"
	"github.com/aderemi/folionav/pkg/logging"
	"github.com/aderemi/folionav/pkg/nav"
	"github.com/aderemi/folionav/pkg/protocol"
	"github.com/aderemi/folionav/pkg/state"
)

// Assign keys mirrored from the controller state.
const (
	AssignCompact  = "compact"
	AssignActive   = "active"
	AssignMenuOpen = "menu_open"
	AssignMobile   = "mobile"
)

// Mount and join parameters.
const (
	ParamWidth    = "width"
	ParamSnapshot = "snapshot"
)

// Reload tells live sessions that the site file changed. Sessions switch
// to the new registry and keep their state where it is still valid.
type Reload struct {
	Site *content.Site
}

// Options configures every NavigationBar created by a factory.
type Options struct {
	Store                    *content.Store
	Thresholds               nav.Thresholds
	Breakpoint               int
	CloseMenuOnSectionChange bool
	Snapshots                *state.SnapshotCodec
	Logger                   logging.Logger
}

// NavigationBar is the live component behind the portfolio's navbar.
type NavigationBar struct {
	core.BaseComponent

	opts Options
	site *content.Site
	ctrl *nav.Controller
	doc  *Document

	// navigating is the section of the navigate event being handled.
	navigating  string
	unsubscribe func()
	logger      logging.Logger
}

// New returns a factory for router.Live.
func New(opts Options) func() core.Component {
	if opts.Thresholds == (nav.Thresholds{}) {
		opts.Thresholds = nav.DefaultThresholds()
	}
	if opts.Breakpoint <= 0 {
		opts.Breakpoint = 768
	}
	if opts.Snapshots == nil {
		opts.Snapshots = state.NewSnapshotCodec()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger{}
	}

	return func() core.Component {
		return &NavigationBar{opts: opts, logger: opts.Logger}
	}
}

// Name returns the component name.
func (c *NavigationBar) Name() string {
	return "navbar"
}

// Mount builds the controller for the current site and restores a
// reconnect snapshot when one is passed.
func (c *NavigationBar) Mount(ctx context.Context, params core.Params, session core.Session) error {
	c.site = c.opts.Store.Site()
	if c.site == nil {
		return errors.New("no site loaded")
	}
	c.logger = c.opts.Logger.With(logging.String("component", c.Name()))

	c.doc = NewDocument(c.pushScroll)
	if w, err := strconv.ParseFloat(params.Get(ParamWidth), 64); err == nil {
		c.doc.SetWidth(w)
	}

	var restore *nav.State
	if token := params.Get(ParamSnapshot); token != "" {
		snap, err := c.opts.Snapshots.Decode(token)
		if err != nil {
			c.logger.Debug("snapshot ignored", logging.Err(err))
		} else {
			restore = &snap.State
		}
	}

	if err := c.start(restore); err != nil {
		return err
	}
	c.Assigns().Set(AssignMobile, c.mobile())
	return nil
}

// start attaches a fresh controller for c.site. The scroll report that
// follows the join corrects the compact flag and the active section.
func (c *NavigationBar) start(restore *nav.State) error {
	c.ctrl = nav.NewController(c.site.Registry(),
		nav.WithThresholds(c.opts.Thresholds),
		nav.WithCloseMenuOnSectionChange(c.opts.CloseMenuOnSectionChange),
		nav.WithLogger(c.logger),
	)
	if err := c.ctrl.Attach(c.doc); err != nil {
		return err
	}
	if restore != nil {
		c.ctrl.Restore(*restore)
	}

	c.unsubscribe = c.ctrl.Subscribe(c.assignState)
	c.assignState(c.ctrl.State())
	return nil
}

func (c *NavigationBar) stop() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	if c.ctrl != nil {
		c.ctrl.Detach()
	}
}

func (c *NavigationBar) assignState(s nav.State) {
	c.Assigns().SetAll(map[string]any{
		AssignCompact:  s.IsCompact,
		AssignActive:   s.ActiveSectionID,
		AssignMenuOpen: s.IsMenuOpen,
	})
}

func (c *NavigationBar) mobile() bool {
	w := c.doc.Width()
	return w > 0 && w < float64(c.opts.Breakpoint)
}

// pushScroll sends the navigator's scroll command to the browser. A scroll
// caused by a navigate event also moves the URL fragment to the section.
func (c *NavigationBar) pushScroll(top float64, behavior nav.Behavior) {
	socket := c.Socket()
	if socket == nil {
		return
	}

	var opts []js.ScrollOption
	if behavior == nav.BehaviorInstant {
		opts = append(opts, js.Instant())
	}
	cmds := js.Commands{js.JS.ScrollTo(top, opts...)}
	if c.navigating != "" {
		cmds = append(cmds, js.JS.Patch("#"+c.navigating, js.Replace()))
	}
	if err := socket.PushCommands(cmds.Payload()); err != nil {
		c.logger.Debug("scroll command not sent", logging.Err(err))
	}
}

// HandleEvent applies a client event to the controller. Malformed
// payloads are logged and dropped.
func (c *NavigationBar) HandleEvent(ctx context.Context, event string, payload map[string]any) error {
	switch event {
	case protocol.EventScroll:
		y, ok := protocol.AsFloat(payload["y"])
		if !ok {
			c.logger.Debug("scroll report without y", logging.Any("payload", payload))
			return nil
		}
		if w, ok := protocol.AsFloat(payload["width"]); ok {
			c.setWidth(w)
		}
		layout, ok := ParseLayout(payload["sections"])
		if !ok {
			layout = nil
		}
		c.doc.Report(y, layout)

	case protocol.EventResize:
		w, ok := protocol.AsFloat(payload["width"])
		if !ok {
			c.logger.Debug("resize without width", logging.Any("payload", payload))
			return nil
		}
		c.setWidth(w)

	case protocol.EventNavigate:
		id, _ := payload["section"].(string)
		c.navigating = id
		c.ctrl.RequestNavigate(id)
		c.navigating = ""

	case protocol.EventToggleMenu:
		c.ctrl.ToggleMenu()

	case protocol.EventDismissMenu:
		c.ctrl.DismissMenu()

	default:
		c.logger.Debug("unknown event", logging.String("event", event))
	}
	return nil
}

func (c *NavigationBar) setWidth(w float64) {
	c.doc.SetWidth(w)
	c.Assigns().Set(AssignMobile, c.mobile())
}

// HandleInfo handles server-side messages.
func (c *NavigationBar) HandleInfo(ctx context.Context, msg any) error {
	reload, ok := msg.(Reload)
	if !ok || reload.Site == nil {
		return nil
	}

	prev := c.ctrl.State()
	c.stop()
	c.site = reload.Site
	if err := c.start(&prev); err != nil {
		return err
	}
	if err := c.ctrl.Refresh(); err != nil {
		return err
	}
	// The new registry may render differently even if the state did not move.
	c.Assigns().MarkChanged(AssignActive)
	c.logger.Info("site reloaded", logging.Int("sections", c.site.Registry().Len()))
	return nil
}

// Terminate detaches the controller from the document.
func (c *NavigationBar) Terminate(ctx context.Context, reason core.TerminateReason) error {
	c.stop()
	return nil
}

// Snapshot implements core.SnapshotProvider.
func (c *NavigationBar) Snapshot() (string, error) {
	return c.opts.Snapshots.Encode(c.ctrl.State())
}

// State returns the controller state.
func (c *NavigationBar) State() nav.State {
	return c.ctrl.State()
}

// Render renders the navigation bar.
func (c *NavigationBar) Render(ctx context.Context) core.Renderer {
	return core.RendererFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, components.RenderNavbar(components.NavbarOptions{
			Brand:    c.site.Brand,
			Registry: c.site.Registry(),
			State:    c.ctrl.State(),
			Mobile:   c.mobile(),
		}))
		return err
	})
}
