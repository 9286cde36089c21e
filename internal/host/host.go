// Package host defines the editor capabilities autorun consumes.
//
// A host is anything that can report editing activity, run commands by
// name, show notifications and a status item, and hand out terminal
// sessions. The controller in internal/autorun only talks to these
// interfaces; internal/host/tui is the terminal editor implementation.
package host

import (
	"context"
	"errors"
	"sync"
)

// Command ids understood by every host.
const (
	CommandTriggerSuggestion = "editor.action.inlineSuggest.trigger"
	CommandCommitSuggestion  = "editor.action.inlineSuggest.commit"
)

// ErrUnknownCommand is returned by Commands.Execute for unregistered ids.
var ErrUnknownCommand = errors.New("unknown command")

// Disposable releases a registration or UI resource.
type Disposable interface {
	Dispose()
}

// DisposableFunc adapts a function to Disposable. The function runs at most once.
func DisposableFunc(fn func()) Disposable {
	return &disposableFunc{fn: fn}
}

type disposableFunc struct {
	once sync.Once
	fn   func()
}

func (d *disposableFunc) Dispose() {
	d.once.Do(func() {
		if d.fn != nil {
			d.fn()
		}
	})
}

// Events delivers editing notifications. Listeners run on the host's UI
// goroutine and must not block.
type Events interface {
	OnDidChangeTextDocument(listener func()) Disposable
	OnDidChangeTextEditorSelection(listener func()) Disposable
}

// CommandHandler runs a registered command.
type CommandHandler func(ctx context.Context) error

// Commands registers and executes commands by id.
type Commands interface {
	Register(id string, handler CommandHandler) Disposable
	Execute(ctx context.Context, id string) error
}

// TextEditor is a read view of the active editor.
type TextEditor interface {
	// LanguageID identifies the document language, e.g. "shellscript".
	LanguageID() string
	// CursorLine is the zero-based line of the primary cursor.
	CursorLine() int
	// LineText returns the text of line n, or "" when n is out of range.
	LineText(n int) string
}

// StatusBarItem is a small always-visible indicator.
type StatusBarItem interface {
	SetIcon(icon string)
	SetText(text string)
	SetTooltip(tooltip string)
	SetCommand(id string)
	Show()
	Dispose()
}

// TerminalOptions configures a new terminal session.
type TerminalOptions struct {
	Name string
	// Cwd is the working directory. Empty means the host's default.
	Cwd string
}

// Terminal is a host-managed shell session.
type Terminal interface {
	Name() string
	// Show reveals the terminal. With preserveFocus the editor keeps input focus.
	Show(preserveFocus bool)
	// SendText writes text to the shell; addNewLine submits it.
	SendText(text string, addNewLine bool)
	Dispose()
}

// Window groups UI primitives.
type Window interface {
	ActiveTextEditor() TextEditor
	ShowInformationMessage(message string)
	// ShowWarningMessage shows a warning with optional actions. The returned
	// channel receives the chosen action ("" when dismissed) and is closed.
	ShowWarningMessage(message string, actions ...string) <-chan string
	CreateStatusBarItem() StatusBarItem
	Terminals() []Terminal
	CreateTerminal(opts TerminalOptions) (Terminal, error)
}

// Workspace exposes the open workspace folders.
type Workspace interface {
	// Folders returns absolute paths of workspace roots, first root first.
	Folders() []string
}

// Memento is a key-value store that survives restarts.
type Memento interface {
	GetBool(key string, defaultValue bool) bool
	UpdateBool(key string, value bool) error
}

// Host bundles the capabilities a controller needs.
type Host struct {
	Events    Events
	Commands  Commands
	Window    Window
	Workspace Workspace
	Memento   Memento
}

// FindTerminal returns the first terminal with the given name.
func FindTerminal(window Window, name string) Terminal {
	for _, t := range window.Terminals() {
		if t.Name() == name {
			return t
		}
	}
	return nil
}
