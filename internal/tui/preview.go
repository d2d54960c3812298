package tui

import "github.com/charmbracelet/bubbles/viewport"

// newViewport creates the day-list viewport with the given dimensions.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}
