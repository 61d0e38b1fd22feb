package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/ccview/ccview/internal/session"
)

// linesPerItem is the number of terminal lines each session occupies.
const linesPerItem = 2

// renderList renders the left panel: session list with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.filtered) == 0 {
		empty := lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No sessions")
		return empty
	}

	var lines []string
	for i := range m.filtered {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		rows := formatSessionLine(&m.filtered[i], width, i == m.cursor)
		lines = append(lines, rows...)
	}

	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

// formatSessionLine formats one session as two lines:
//
//	line 1: [>] MM-DD workspace  size  messages
//	line 2:     description (dimmed)
func formatSessionLine(s *session.Summary, width int, selected bool) []string {
	date := s.Modified.Format("01-02 15:04")

	ws := s.Workspace
	if runewidth.StringWidth(ws) > 20 {
		ws = runewidth.Truncate(ws, 20, "…")
	}

	meta := fmt.Sprintf("%dm %s", s.MessageCount, humanize.Bytes(uint64(s.Size)))

	line1 := fmt.Sprintf("%s %s %s",
		styleDate.Render(date),
		styleWorkspace.Render(ws),
		meta)
	if selected {
		line1 = styleListSelected.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	desc := strings.ReplaceAll(s.Description, "\n", " ")
	descMax := width - 4
	if descMax < 0 {
		descMax = 0
	}
	if runewidth.StringWidth(desc) > descMax {
		desc = runewidth.Truncate(desc, descMax, "")
	}
	line2 := "    " + lipgloss.NewStyle().Foreground(colorDim).Render(desc)

	return []string{line1, line2}
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := listHeight / linesPerItem
	if visibleItems < 1 {
		visibleItems = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}
