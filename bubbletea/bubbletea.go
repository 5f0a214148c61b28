// Package bubbletea provides the split-pane Bubble Tea TUI: a source editor
// on the left and the live preview on the right.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. The context is used for graceful shutdown: when cancelled, the
// program quits.
func Run(ctx context.Context, m Model) error {
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// RenderedMsg reports that the previewer published a new generation.
type RenderedMsg struct {
	Generation uint64
}

// pointerReleaseMsg ends the pointer driver's hold on scroll sync.
type pointerReleaseMsg struct {
	seq int
}

// notify delivers gen on ch, replacing an undelivered value. It never blocks.
func notify(ch chan uint64, gen uint64) {
	for {
		select {
		case ch <- gen:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// listenForRender waits for the next published generation.
func listenForRender(ch <-chan uint64) tea.Cmd {
	return func() tea.Msg {
		gen, ok := <-ch
		if !ok {
			return nil
		}
		return RenderedMsg{Generation: gen}
	}
}
