package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/rivo/uniseg"
)

const ellipsis = "…"

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	s := m.host.snapshot()
	width, height := m.width, m.height

	if s.warning != nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, renderWarning(s.warning, width))
	}

	bodyHeight := height - 2
	editorHeight := bodyHeight * 2 / 3
	if editorHeight < 1 {
		editorHeight = 1
	}
	lowerHeight := bodyHeight - editorHeight

	var lower string
	if m.palette != nil {
		lower = m.palette.view(width, lowerHeight)
	} else {
		lower = m.renderTerminal(s, width, lowerHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderEditor(s, width, editorHeight),
		lower,
		m.renderNotification(s, width),
		m.renderStatusBar(s, width),
	)
}

func (m Model) renderEditor(s uiState, width, height int) string {
	doc := m.host.doc
	if doc == nil {
		return strings.Repeat("\n", height-1)
	}

	cursorLine, cursorCol := doc.Cursor()
	offset := 0
	if cursorLine >= height {
		offset = cursorLine - height + 1
	}

	rows := make([]string, 0, height)
	for i := offset; i < offset+height; i++ {
		if i >= doc.LineCount() {
			rows = append(rows, dimStyle.Render("~"))
			continue
		}

		text := doc.LineText(i)
		var row string
		if i == cursorLine && !s.focusTerminal {
			row = renderCursorLine(text, cursorCol, s.suggestion.ghost(i, text))
		} else {
			row = text
		}
		rows = append(rows, truncate.StringWithTail(lineNumberStyle.Render(fmt.Sprint(i+1))+row, uint(width), ellipsis))
	}
	return strings.Join(rows, "\n")
}

func renderCursorLine(text string, col int, ghost string) string {
	runes := []rune(text)
	if col >= len(runes) {
		return text + cursorStyle.Render(" ") + ghostStyle.Render(ghost)
	}
	return string(runes[:col]) + cursorStyle.Render(string(runes[col])) + string(runes[col+1:]) + ghostStyle.Render(ghost)
}

func (m Model) renderTerminal(s uiState, width, height int) string {
	if height <= 0 {
		return ""
	}

	title := "no terminal"
	var output []string
	if t := s.activeTerminal; t != nil {
		title = t.Name()
		if dir := t.session.Dir(); dir != "" {
			title += " " + dimStyle.Render(dir)
		}
		outputHeight := height - 1
		if s.focusTerminal {
			outputHeight--
		}
		output = t.output.Tail(outputHeight)
	}

	rows := []string{paneTitleStyle.Render("─ ") + title}
	for _, line := range output {
		rows = append(rows, truncate.StringWithTail(ansi.Strip(line), uint(width), ellipsis))
	}
	if s.focusTerminal {
		rows = append(rows, m.terminalInput.View())
	}
	for len(rows) < height {
		rows = append(rows, "")
	}
	return strings.Join(rows[:height], "\n")
}

func (m Model) renderNotification(s uiState, width int) string {
	switch {
	case s.notification != "":
		return notificationStyle.Render(truncate.StringWithTail(s.notification, uint(width), ellipsis))
	case s.predicting:
		return m.spinner.View() + dimStyle.Render(" suggesting")
	}

	for _, item := range s.statusItems {
		if item.visible && item.tooltip != "" {
			return dimStyle.Render(truncate.StringWithTail(item.tooltip, uint(width), ellipsis))
		}
	}
	return ""
}

func (m Model) renderStatusBar(s uiState, width int) string {
	left := " untitled"
	if m.host.path != "" {
		left = " " + filepath.Base(m.host.path)
	}
	if doc := m.host.doc; doc != nil {
		line, col := doc.Cursor()
		left += fmt.Sprintf(" • %s • %d:%d", doc.LanguageID(), line+1, col+1)
	}

	var right []string
	enabled := false
	for _, item := range s.statusItems {
		if !item.visible {
			continue
		}
		text := strings.TrimSpace(iconSymbol(item.icon) + " " + item.text)
		right = append(right, text)
		if item.icon == "debug-start" {
			enabled = true
		}
	}
	rightText := strings.Join(right, "  ")
	if rightText != "" {
		rightText = " " + rightText + " "
	}

	gap := width - uniseg.StringWidth(left) - uniseg.StringWidth(rightText)
	if gap < 1 {
		left = truncate.StringWithTail(left, uint(max(width-uniseg.StringWidth(rightText)-1, 0)), ellipsis)
		gap = width - uniseg.StringWidth(left) - uniseg.StringWidth(rightText)
	}
	if gap < 0 {
		gap = 0
	}

	itemStyle := statusItemOffStyle
	if enabled {
		itemStyle = statusItemStyle
	}
	return statusBarStyle.Render(left+strings.Repeat(" ", gap)) + itemStyle.Render(rightText)
}

func renderWarning(w *warningDialog, width int) string {
	actions := make([]string, 0, len(w.actions))
	for i, action := range w.actions {
		if i == 0 {
			actions = append(actions, warningActionStyle.Render(action+" ⏎"))
		} else {
			actions = append(actions, dimStyle.Render(action))
		}
	}

	body := notificationStyle.Render("⚠ ") + w.message
	footer := strings.Join(append(actions, dimStyle.Render("esc to dismiss")), "  ")

	boxWidth := width - 8
	if boxWidth > 70 {
		boxWidth = 70
	}
	if boxWidth < 20 {
		boxWidth = 20
	}
	return warningBoxStyle.Width(boxWidth).Render(body + "\n\n" + footer)
}
