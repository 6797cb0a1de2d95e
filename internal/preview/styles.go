package preview

import "github.com/charmbracelet/lipgloss"

type styles struct {
	bar        lipgloss.Style
	barCompact lipgloss.Style
	brand      lipgloss.Style
	link       lipgloss.Style
	active     lipgloss.Style
	focused    lipgloss.Style
	menu       lipgloss.Style
	heading    lipgloss.Style
	rule       lipgloss.Style
	help       lipgloss.Style
}

func defaultStyles() styles {
	primary := lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#A78BFA"}
	muted := lipgloss.AdaptiveColor{Light: "#475569", Dark: "#94A3B8"}

	return styles{
		bar: lipgloss.NewStyle().
			Padding(1, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(muted),
		barCompact: lipgloss.NewStyle().
			Padding(0, 1).
			Reverse(true),
		brand:   lipgloss.NewStyle().Bold(true).Foreground(primary),
		link:    lipgloss.NewStyle().Foreground(muted),
		active:  lipgloss.NewStyle().Bold(true).Underline(true).Foreground(primary),
		focused: lipgloss.NewStyle().Reverse(true),
		menu: lipgloss.NewStyle().
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(primary),
		heading: lipgloss.NewStyle().Bold(true).Foreground(primary),
		rule:    lipgloss.NewStyle().Foreground(muted),
		help:    lipgloss.NewStyle().Foreground(muted),
	}
}
