package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
)

const paletteMaxRows = 8

// palette is the command picker. An empty query lists every command.
type palette struct {
	input    textinput.Model
	ids      []string
	matches  fuzzy.Matches
	selected int
}

func newPalette(ids []string) *palette {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "Run command"
	input.Focus()

	p := &palette{input: input, ids: ids}
	p.filter()
	return p
}

func (p *palette) filter() {
	query := strings.TrimSpace(p.input.Value())
	if query == "" {
		p.matches = lo.Map(p.ids, func(id string, i int) fuzzy.Match {
			return fuzzy.Match{Str: id, Index: i}
		})
	} else {
		p.matches = fuzzy.Find(query, p.ids)
	}

	if p.selected >= len(p.matches) {
		p.selected = len(p.matches) - 1
	}
	if p.selected < 0 {
		p.selected = 0
	}
}

// Selected returns the highlighted command id, or "" when nothing matches.
func (p *palette) Selected() string {
	if len(p.matches) == 0 {
		return ""
	}
	return p.matches[p.selected].Str
}

// update handles a key press. done reports that the palette should close;
// chosen is the picked command id, empty when cancelled.
func (p *palette) update(msg tea.KeyMsg) (chosen string, done bool, cmd tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+p":
		return "", true, nil
	case "enter":
		return p.Selected(), true, nil
	case "up", "ctrl+k":
		if p.selected > 0 {
			p.selected--
		}
		return "", false, nil
	case "down", "ctrl+j":
		if p.selected < len(p.matches)-1 {
			p.selected++
		}
		return "", false, nil
	}

	p.input, cmd = p.input.Update(msg)
	p.filter()
	return "", false, cmd
}

func (p *palette) view(width, height int) string {
	rows := []string{p.input.View()}

	limit := lo.Min([]int{paletteMaxRows, height - 3})
	start := 0
	if p.selected >= limit && limit > 0 {
		start = p.selected - limit + 1
	}

	for i := start; i < len(p.matches) && i < start+limit; i++ {
		line := highlightMatch(p.matches[i])
		if i == p.selected {
			line = paletteSelectedStyle.Render("› ") + line
		} else {
			line = "  " + line
		}
		rows = append(rows, line)
	}
	if len(p.matches) == 0 {
		rows = append(rows, dimStyle.Render("  no matching commands"))
	}

	return paletteBoxStyle.Width(lo.Max([]int{width - 4, 10})).Render(strings.Join(rows, "\n"))
}

func highlightMatch(m fuzzy.Match) string {
	if len(m.MatchedIndexes) == 0 {
		return m.Str
	}

	var b strings.Builder
	for i, r := range m.Str {
		if lo.Contains(m.MatchedIndexes, i) {
			b.WriteString(paletteMatchStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
