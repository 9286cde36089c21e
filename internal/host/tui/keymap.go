package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Action is an editor operation bound to one or more keys.
type Action int

const (
	// ActionNone means the key is not bound; printable runes are inserted.
	ActionNone Action = iota

	// Navigation
	ActionCharacterForward
	ActionCharacterBackward
	ActionLineUp
	ActionLineDown
	ActionLineStart
	ActionLineEnd

	// Editing
	ActionNewLine
	ActionDeleteCharacterBackward
	ActionDeleteCharacterForward
	ActionDeleteWordBackward
	ActionAcceptSuggestion
	ActionPaste
	ActionSave

	// Application
	ActionToggle
	ActionPalette
	ActionSwitchFocus
	ActionInterrupt
	ActionCancel
	ActionQuit
)

// String returns the string representation of an Action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionCharacterForward:
		return "CharacterForward"
	case ActionCharacterBackward:
		return "CharacterBackward"
	case ActionLineUp:
		return "LineUp"
	case ActionLineDown:
		return "LineDown"
	case ActionLineStart:
		return "LineStart"
	case ActionLineEnd:
		return "LineEnd"
	case ActionNewLine:
		return "NewLine"
	case ActionDeleteCharacterBackward:
		return "DeleteCharacterBackward"
	case ActionDeleteCharacterForward:
		return "DeleteCharacterForward"
	case ActionDeleteWordBackward:
		return "DeleteWordBackward"
	case ActionAcceptSuggestion:
		return "AcceptSuggestion"
	case ActionPaste:
		return "Paste"
	case ActionSave:
		return "Save"
	case ActionToggle:
		return "Toggle"
	case ActionPalette:
		return "Palette"
	case ActionSwitchFocus:
		return "SwitchFocus"
	case ActionInterrupt:
		return "Interrupt"
	case ActionCancel:
		return "Cancel"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// KeyBinding maps key sequences, in tea.KeyMsg string form, to an action.
type KeyBinding struct {
	Keys   []string
	Action Action
}

// KeyMap resolves key presses to actions.
type KeyMap struct {
	bindings []KeyBinding
	lookup   map[string]Action
}

// NewKeyMap creates a KeyMap from bindings. Later bindings win on conflicts.
func NewKeyMap(bindings []KeyBinding) *KeyMap {
	km := &KeyMap{
		bindings: bindings,
		lookup:   make(map[string]Action),
	}
	for _, b := range bindings {
		for _, key := range b.Keys {
			km.lookup[key] = b.Action
		}
	}
	return km
}

// DefaultKeyMap returns the editor key bindings.
func DefaultKeyMap() *KeyMap {
	return NewKeyMap([]KeyBinding{
		{Keys: []string{"right", "ctrl+f"}, Action: ActionCharacterForward},
		{Keys: []string{"left", "ctrl+b"}, Action: ActionCharacterBackward},
		{Keys: []string{"up"}, Action: ActionLineUp},
		{Keys: []string{"down", "ctrl+n"}, Action: ActionLineDown},
		{Keys: []string{"home", "ctrl+a"}, Action: ActionLineStart},
		{Keys: []string{"end", "ctrl+e"}, Action: ActionLineEnd},

		{Keys: []string{"enter"}, Action: ActionNewLine},
		{Keys: []string{"backspace", "ctrl+h"}, Action: ActionDeleteCharacterBackward},
		{Keys: []string{"delete", "ctrl+d"}, Action: ActionDeleteCharacterForward},
		{Keys: []string{"ctrl+w", "alt+backspace"}, Action: ActionDeleteWordBackward},
		{Keys: []string{"tab"}, Action: ActionAcceptSuggestion},
		{Keys: []string{"ctrl+v"}, Action: ActionPaste},
		{Keys: []string{"ctrl+s"}, Action: ActionSave},

		{Keys: []string{"ctrl+t"}, Action: ActionToggle},
		{Keys: []string{"ctrl+p"}, Action: ActionPalette},
		{Keys: []string{"ctrl+o"}, Action: ActionSwitchFocus},
		{Keys: []string{"ctrl+x"}, Action: ActionInterrupt},
		{Keys: []string{"esc"}, Action: ActionCancel},
		{Keys: []string{"ctrl+q", "ctrl+c"}, Action: ActionQuit},
	})
}

// Lookup returns the action bound to msg, or ActionNone.
func (km *KeyMap) Lookup(msg tea.KeyMsg) Action {
	if action, ok := km.lookup[msg.String()]; ok {
		return action
	}
	return ActionNone
}

// Keys returns the keys bound to action.
func (km *KeyMap) Keys(action Action) []string {
	var keys []string
	for _, b := range km.bindings {
		if b.Action == action {
			keys = append(keys, b.Keys...)
		}
	}
	return keys
}
