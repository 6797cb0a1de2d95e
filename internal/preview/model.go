// Package preview is a terminal host for the navigation controller. It lays
// the site's sections out in a scrollable viewport, one line per unit, and
// drives the same scroll-spy, navigator and menu as the browser.
package preview

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aderemi/folionav/internal/content"
	"github.com/aderemi/folionav/pkg/logging"
	"github.com/aderemi/folionav/pkg/nav"
)

// DefaultMenuBreakpoint is the terminal width, in columns, below which the
// section groups collapse into the menu.
const DefaultMenuBreakpoint = 80

const tickInterval = 16 * time.Millisecond

// Options configures the preview.
type Options struct {
	// Thresholds are in lines.
	Thresholds               nav.Thresholds
	CloseMenuOnSectionChange bool
	MenuBreakpoint           int
	// Style is a glamour standard style name ("dark", "light", "notty").
	Style  string
	Logger logging.Logger
}

// ReloadMsg replaces the site shown by a running preview.
type ReloadMsg struct {
	Site *content.Site
}

type scrollTickMsg struct{}

// Model is the bubbletea model of the preview.
type Model struct {
	site *content.Site
	opts Options
	ctrl *nav.Controller
	host *lineHost
	st   styles

	unsubscribe func()

	width  int
	height int
	ready  bool
	// tickPending is set while a scroll tick is scheduled.
	tickPending bool
	// focus indexes the visible sections; -1 is the brand.
	focus      int
	lastActive string
	err        error
}

// New creates a preview for s. The controller is attached immediately;
// the layout arrives with the first window size.
func New(s *content.Site, opts Options) (*Model, error) {
	if opts.MenuBreakpoint <= 0 {
		opts.MenuBreakpoint = DefaultMenuBreakpoint
	}
	if opts.Style == "" {
		opts.Style = "dark"
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger{}
	}

	m := &Model{
		opts:  opts,
		host:  newLineHost(0, 0),
		st:    defaultStyles(),
		focus: -1,
	}
	if err := m.start(s, nil); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) start(s *content.Site, restore *nav.State) error {
	m.site = s
	m.ctrl = nav.NewController(s.Registry(),
		nav.WithThresholds(m.opts.Thresholds),
		nav.WithCloseMenuOnSectionChange(m.opts.CloseMenuOnSectionChange),
		nav.WithLogger(m.opts.Logger),
	)
	if err := m.ctrl.Attach(m.host); err != nil {
		return err
	}
	if restore != nil {
		m.ctrl.Restore(*restore)
	}
	m.unsubscribe = m.ctrl.Subscribe(m.followActive)
	m.lastActive = m.ctrl.State().ActiveSectionID
	return nil
}

// Close detaches the controller.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.ctrl.Detach()
}

// followActive moves keyboard focus to the section scrolled into view.
func (m *Model) followActive(s nav.State) {
	if s.ActiveSectionID == m.lastActive {
		return
	}
	m.lastActive = s.ActiveSectionID
	m.focus = -1
	for i, sec := range m.site.Registry().Visible() {
		if sec.ID == s.ActiveSectionID {
			m.focus = i
			return
		}
	}
}

// State returns the controller state.
func (m *Model) State() nav.State {
	return m.ctrl.State()
}

// Err returns the last rendering error, if any.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	ticked := false

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.relayout()
		m.ready = true

	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.Close()
			return m, tea.Quit
		}
		m.handleKey(msg)

	case tea.MouseMsg:
		before := m.host.vp.YOffset
		m.host.vp, cmd = m.host.vp.Update(msg)
		if m.host.vp.YOffset != before {
			m.host.animating = false
			m.host.notify()
		}

	case scrollTickMsg:
		m.tickPending = false
		ticked = true

	case ReloadMsg:
		if msg.Site != nil {
			m.reload(msg.Site)
		}
	}

	m.fitViewport()
	if ticked && m.host.animating {
		m.host.step()
	}
	// One tick chain per animation, however many messages arrive meanwhile.
	if m.host.animating && !m.tickPending {
		m.tickPending = true
		return m, tea.Batch(cmd, tick())
	}
	return m, cmd
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return scrollTickMsg{} })
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	visible := m.site.Registry().Visible()

	switch key := msg.String(); key {
	case "j", "down":
		m.host.scrollBy(1)
	case "k", "up":
		m.host.scrollBy(-1)
	case "pgdown", " ", "f":
		m.host.scrollBy(m.host.vp.Height)
	case "pgup", "b":
		m.host.scrollBy(-m.host.vp.Height)
	case "g", "home":
		m.host.scrollBy(-m.host.vp.YOffset)
	case "G", "end":
		m.host.scrollBy(m.host.vp.TotalLineCount())

	case "tab", "l", "right":
		m.focus++
		if m.focus >= len(visible) {
			m.focus = -1
		}
	case "shift+tab", "h", "left":
		m.focus--
		if m.focus < -1 {
			m.focus = len(visible) - 1
		}
	case "enter":
		if m.focus >= 0 && m.focus < len(visible) {
			m.ctrl.RequestNavigate(visible[m.focus].ID)
		} else {
			m.ctrl.RequestNavigate(m.site.Registry().Home())
		}
	case "0":
		m.ctrl.RequestNavigate(m.site.Registry().Home())

	case "m":
		m.ctrl.ToggleMenu()
	case "esc":
		m.ctrl.DismissMenu()

	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(visible) {
			m.ctrl.RequestNavigate(visible[n-1].ID)
		}
	}
}

// relayout re-renders the sections for the current width and re-runs the
// scroll-spy against the new geometry.
func (m *Model) relayout() {
	text, layout, err := renderPage(m.site, m.width, m.opts.Style, m.st)
	if err != nil {
		m.err = err
		m.opts.Logger.Warn("preview render failed", logging.Err(err))
		return
	}
	m.err = nil
	m.host.vp.Width = m.width
	m.host.vp.SetContent(text)
	m.host.layout = layout
	m.fitViewport()
	if err := m.ctrl.Refresh(); err != nil {
		m.opts.Logger.Debug("preview refresh skipped", logging.Err(err))
	}
}

func (m *Model) reload(s *content.Site) {
	prev := m.ctrl.State()
	m.Close()
	if err := m.start(s, &prev); err != nil {
		m.err = err
		return
	}
	m.lastActive = ""
	m.followActive(m.ctrl.State())
	if m.ready {
		m.relayout()
	}
}

// fitViewport gives the viewport whatever the bar, the menu and the help
// line leave over.
func (m *Model) fitViewport() {
	chrome := lipgloss.Height(m.barView()) + lipgloss.Height(m.helpView())
	if menu := m.menuView(); menu != "" {
		chrome += lipgloss.Height(menu)
	}
	h := m.height - chrome
	if h < 1 {
		h = 1
	}
	m.host.vp.Height = h
}

func (m *Model) mobile() bool {
	return m.width < m.opts.MenuBreakpoint
}

func (m *Model) View() string {
	if !m.ready {
		return "loading…"
	}
	if m.err != nil {
		return fmt.Sprintf("error: %v\n", m.err)
	}

	parts := []string{m.barView()}
	if menu := m.menuView(); menu != "" {
		parts = append(parts, menu)
	}
	parts = append(parts, m.host.vp.View(), m.helpView())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) barView() string {
	state := m.ctrl.State()
	reg := m.site.Registry()

	brand := m.st.brand.Render(m.site.Brand)
	if m.focus == -1 {
		brand = m.st.focused.Render(m.site.Brand)
	}

	var items []string
	if m.mobile() {
		toggle := "≡ menu"
		if state.IsMenuOpen {
			toggle = "× close"
		}
		items = []string{brand, m.st.link.Render(toggle)}
	} else {
		index := m.indexOf()
		for _, sec := range reg.Placed(nav.PlacementLeft) {
			items = append(items, m.renderLink(sec, index[sec.ID], state.ActiveSectionID))
		}
		items = append(items, brand)
		for _, sec := range reg.Placed(nav.PlacementRight) {
			items = append(items, m.renderLink(sec, index[sec.ID], state.ActiveSectionID))
		}
	}

	style := m.st.bar
	if state.IsCompact {
		style = m.st.barCompact
	}
	return style.Width(m.width).Render(strings.Join(items, "   "))
}

func (m *Model) menuView() string {
	if !m.mobile() || !m.ctrl.State().IsMenuOpen {
		return ""
	}
	active := m.ctrl.State().ActiveSectionID

	var rows []string
	for i, sec := range m.site.Registry().Visible() {
		rows = append(rows, m.renderLink(sec, i, active))
	}
	return m.st.menu.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) helpView() string {
	label := m.ctrl.State().ActiveSectionID
	if sec, ok := m.site.Registry().Get(label); ok {
		label = sec.Label
	}
	return m.st.help.Render(fmt.Sprintf("%s · tab focus · enter go · 1-9 jump · m menu · q quit", label))
}

// indexOf maps section ids to their position among the visible sections.
func (m *Model) indexOf() map[string]int {
	out := make(map[string]int)
	for i, sec := range m.site.Registry().Visible() {
		out[sec.ID] = i
	}
	return out
}

func (m *Model) renderLink(sec nav.Section, i int, active string) string {
	text := fmt.Sprintf("%d %s", i+1, sec.Label)
	style := m.st.link
	if sec.ID == active {
		style = m.st.active
	}
	if i == m.focus {
		style = style.Inherit(m.st.focused)
	}
	return style.Render(text)
}
