package bubbletea

import tea "github.com/charmbracelet/bubbletea"

// PointerRelease returns the message that ends the current pointer hold.
func PointerRelease(m Model) tea.Msg {
	return pointerReleaseMsg{seq: m.holdSeq}
}

// StalePointerRelease returns a release message from an earlier hold.
func StalePointerRelease(m Model) tea.Msg {
	return pointerReleaseMsg{seq: m.holdSeq - 1}
}

// Notify exports notify for testing.
func Notify(ch chan uint64, gen uint64) {
	notify(ch, gen)
}

// ListenForRender exports listenForRender for testing.
func ListenForRender(ch <-chan uint64) tea.Cmd {
	return listenForRender(ch)
}
