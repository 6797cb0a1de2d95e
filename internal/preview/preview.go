package preview

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aderemi/folionav/internal/content"
)

// Run runs the preview until the user quits or ctx is cancelled. Sites
// received on reloads replace the one shown.
func Run(ctx context.Context, m *Model, reloads <-chan *content.Site, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}, opts...)
	p := tea.NewProgram(m, opts...)

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case s, ok := <-reloads:
				if !ok {
					return
				}
				p.Send(ReloadMsg{Site: s})
			case <-done:
				return
			}
		}
	}()

	_, err := p.Run()
	m.Close()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
