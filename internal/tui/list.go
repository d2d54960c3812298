package tui

import (
	"fmt"
	"strings"

	"github.com/Zuo-Peng/wa-contacts/internal/render"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// renderList renders the left panel: one contact per line, scrolled so the
// cursor stays visible.
func (m model) renderList(width, height int) string {
	if len(m.results) == 0 {
		return lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No contacts")
	}

	var lines []string
	for i, c := range m.results {
		if i < m.listOffset {
			continue
		}
		if len(lines) >= height {
			break
		}
		lines = append(lines, formatContactLine(c, width, i == m.cursor))
	}

	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

// formatContactLine formats one contact as
//
//	[>] name        12d  01-31
func formatContactLine(c render.Contact, width int, selected bool) string {
	count := fmt.Sprintf("%3dd", len(c.Days))
	last := c.Last().Format("01-02")

	// prefix (2) + count (4) + last (5) + spaces (2)
	nameMax := width - 2 - 4 - 5 - 2
	if nameMax < 1 {
		nameMax = 1
	}
	name := c.Name
	if runewidth.StringWidth(name) > nameMax {
		name = runewidth.Truncate(name, nameMax, "…")
	}
	name = runewidth.FillRight(name, nameMax)

	line := fmt.Sprintf("%s %s %s", name, styleDayCount.Render(count), last)
	if selected {
		return styleListSelected.Render("> ") + styleListSelected.Render(name) + " " + styleDayCount.Render(count) + " " + last
	}
	return "  " + styleListNormal.Render(line)
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	if listHeight < 1 {
		listHeight = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+listHeight {
		m.listOffset = m.cursor - listHeight + 1
	}
}
