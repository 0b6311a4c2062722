package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"chronoforge/internal/engine"
)

// RunBoard opens the interactive vault of caller's shards.
func RunBoard(ctx context.Context, svc *engine.Service, caller engine.Address, out io.Writer) error {
	m := newBoardModel(ctx, svc, caller)
	p := tea.NewProgram(m, tea.WithOutput(out))
	_, err := p.Run()
	return err
}
