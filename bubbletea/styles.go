package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/preview"
)

// Styles holds the lipgloss styles for the chrome around the two panes.
// The preview content itself is styled by the terminal layout.
type Styles struct {
	Divider lipgloss.Style
	Status  lipgloss.Style
	Mode    lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles derives Styles from t.
func NewStyles(t preview.Theme) Styles {
	status := lipgloss.NewStyle().Foreground(themeColor(t.Muted))
	return Styles{
		Divider: lipgloss.NewStyle().Foreground(themeColor(t.Muted)),
		Status:  status.Faint(true),
		Mode:    status.Foreground(themeColor(t.Accent)).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(themeColor(t.Error)).Bold(true),
	}
}

// themeColor maps an ANSI index to a color. Negative indices leave the
// terminal default.
func themeColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
