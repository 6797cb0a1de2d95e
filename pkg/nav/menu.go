package nav

// Menu is the open/closed state of the collapsible mobile menu.
// The zero value is closed.
type Menu struct {
	open bool
}

// IsOpen reports whether the menu is open.
func (m *Menu) IsOpen() bool {
	return m.open
}

// Toggle flips the menu and returns the new state.
func (m *Menu) Toggle() bool {
	m.open = !m.open
	return m.open
}

// Close forces the menu closed. It reports whether the state changed.
func (m *Menu) Close() bool {
	was := m.open
	m.open = false
	return was
}
