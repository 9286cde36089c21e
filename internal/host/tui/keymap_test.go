package tui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_Lookup(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		msg      tea.KeyMsg
		expected Action
	}{
		{tea.KeyMsg{Type: tea.KeyRight}, ActionCharacterForward},
		{tea.KeyMsg{Type: tea.KeyCtrlA}, ActionLineStart},
		{tea.KeyMsg{Type: tea.KeyEnter}, ActionNewLine},
		{tea.KeyMsg{Type: tea.KeyTab}, ActionAcceptSuggestion},
		{tea.KeyMsg{Type: tea.KeyCtrlV}, ActionPaste},
		{tea.KeyMsg{Type: tea.KeyCtrlS}, ActionSave},
		{tea.KeyMsg{Type: tea.KeyCtrlT}, ActionToggle},
		{tea.KeyMsg{Type: tea.KeyCtrlP}, ActionPalette},
		{tea.KeyMsg{Type: tea.KeyCtrlX}, ActionInterrupt},
		{tea.KeyMsg{Type: tea.KeyCtrlQ}, ActionQuit},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, ActionQuit},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")}, ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.msg.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, km.Lookup(tt.msg))
		})
	}
}

func TestKeyMap_LaterBindingWins(t *testing.T) {
	km := NewKeyMap([]KeyBinding{
		{Keys: []string{"ctrl+t"}, Action: ActionToggle},
		{Keys: []string{"ctrl+t"}, Action: ActionPalette},
	})

	assert.Equal(t, ActionPalette, km.Lookup(tea.KeyMsg{Type: tea.KeyCtrlT}))
	assert.Equal(t, []string{"ctrl+q", "ctrl+c"}, DefaultKeyMap().Keys(ActionQuit))
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "Toggle", ActionToggle.String())
	assert.Equal(t, "Unknown", Action(999).String())
}

func TestModel_Save(t *testing.T) {
	h := newTestHost(t, "ls", nil)
	path := filepath.Join(t.TempDir(), "run.sh")
	h.path = path
	m := NewModel(h, ModelOptions{})

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, savedMsg{path: path}, msg)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ls", string(content))

	_, _ = update(t, m, msg)
	assert.Equal(t, "Saved run.sh", h.snapshot().notification)
}
