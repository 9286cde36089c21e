package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

const notificationTTL = 4 * time.Second

// pasteMsg carries clipboard contents.
type pasteMsg string

// clearNotificationMsg expires the notification shown at at.
type clearNotificationMsg struct {
	at time.Time
}

// savedMsg reports that the document was written to path.
type savedMsg struct {
	path string
}

// commandErrMsg reports a command the UI ran on the user's behalf that failed.
type commandErrMsg struct {
	id  string
	err error
}

// Paste reads the clipboard.
func Paste() tea.Msg {
	str, err := clipboard.ReadAll()
	if err != nil {
		return nil
	}
	return pasteMsg(str)
}

// ModelOptions configures a Model.
type ModelOptions struct {
	// OnStart runs once on a command goroutine after the program starts.
	// Host calls made from it are safe.
	OnStart func()

	KeyMap *KeyMap
}

// Model is the Bubble Tea model drawing a Host.
type Model struct {
	host    *Host
	keymap  *KeyMap
	onStart func()

	width  int
	height int

	spinner      spinner.Model
	spinning     bool
	lastNotified time.Time

	palette       *palette
	terminalInput textinput.Model
	quitting      bool
}

// NewModel creates the model for h.
func NewModel(h *Host, opts ModelOptions) Model {
	keymap := opts.KeyMap
	if keymap == nil {
		keymap = DefaultKeyMap()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorPink)

	input := textinput.New()
	input.Prompt = "$ "
	input.Placeholder = "type a command for the terminal"

	return Model{
		host:          h,
		keymap:        keymap,
		onStart:       opts.OnStart,
		width:         80,
		height:        24,
		spinner:       s,
		terminalInput: input,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.onStart == nil {
		return nil
	}
	onStart := m.onStart
	return func() tea.Msg {
		onStart()
		return nil
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case callMsg:
		m.host.apply(msg.fn)
		close(msg.done)
		return m.afterStateChange()

	case redrawMsg:
		m.host.redrawPending.Store(false)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.host.snapshot().predicting {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case clearNotificationMsg:
		m.host.apply(func() {
			if m.host.ui.notifiedAt.Equal(msg.at) {
				m.host.ui.notification = ""
			}
		})
		return m, nil

	case commandErrMsg:
		m.host.logger.Warn("command failed", zap.String("command", msg.id), zap.Error(msg.err))
		m.notify(fmt.Sprintf("%s failed: %v", msg.id, msg.err))
		return m.afterStateChange()

	case savedMsg:
		m.notify("Saved " + filepath.Base(msg.path))
		return m.afterStateChange()

	case pasteMsg:
		return m.handlePaste(string(msg))

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// notify sets the notification from the update loop.
func (m Model) notify(message string) {
	m.host.apply(func() {
		m.host.ui.notification = message
		m.host.ui.notifiedAt = time.Now()
	})
}

// afterStateChange starts the spinner and the notification timer when needed.
func (m Model) afterStateChange() (tea.Model, tea.Cmd) {
	s := m.host.snapshot()
	var cmds []tea.Cmd

	if s.predicting && !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}

	if s.notification != "" && !s.notifiedAt.Equal(m.lastNotified) {
		m.lastNotified = s.notifiedAt
		at := s.notifiedAt
		cmds = append(cmds, tea.Tick(notificationTTL, func(time.Time) tea.Msg {
			return clearNotificationMsg{at: at}
		}))
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keymap.Lookup(msg)
	s := m.host.snapshot()

	// ctrl+c in the terminal pane interrupts, like in a shell.
	if action == ActionQuit && s.focusTerminal && msg.Type == tea.KeyCtrlC {
		action = ActionInterrupt
	}

	if action == ActionQuit {
		m.quitting = true
		return m, tea.Quit
	}

	if s.warning != nil {
		return m.handleWarningKey(msg, s.warning)
	}

	if m.palette != nil {
		chosen, done, cmd := m.palette.update(msg)
		if done {
			m.palette = nil
			if chosen != "" {
				return m, m.execute(chosen)
			}
		}
		return m, cmd
	}

	switch action {
	case ActionToggle:
		return m, m.runStatusCommand(s)
	case ActionPalette:
		m.palette = newPalette(m.host.commands.IDs())
		return m, textinput.Blink
	case ActionSwitchFocus:
		return m.switchFocus(s)
	case ActionInterrupt:
		return m.interrupt(s)
	case ActionSave:
		return m, m.save()
	}

	if s.focusTerminal {
		return m.handleTerminalKey(msg, action, s)
	}
	return m.handleEditorKey(msg, action)
}

func (m Model) handleWarningKey(msg tea.KeyMsg, dialog *warningDialog) (tea.Model, tea.Cmd) {
	var choice string
	switch msg.String() {
	case "enter":
		if len(dialog.actions) > 0 {
			choice = dialog.actions[0]
		}
	case "esc":
	default:
		return m, nil
	}

	current := false
	m.host.apply(func() {
		if m.host.ui.warning == dialog {
			m.host.ui.warning = nil
			current = true
		}
	})
	if current {
		dialog.resolve(choice)
	}
	return m, nil
}

// runStatusCommand runs the command bound to the first status item that has one.
func (m Model) runStatusCommand(s uiState) tea.Cmd {
	for _, item := range s.statusItems {
		if item.visible && item.command != "" {
			return m.execute(item.command)
		}
	}
	return nil
}

// execute runs a command off the update loop so the command may call back
// into the host.
func (m Model) execute(id string) tea.Cmd {
	commands := m.host.commands
	return func() tea.Msg {
		if err := commands.Execute(context.Background(), id); err != nil {
			return commandErrMsg{id: id, err: err}
		}
		return nil
	}
}

// save writes the document back to the file it was opened from.
func (m Model) save() tea.Cmd {
	path, doc := m.host.path, m.host.doc
	if path == "" || doc == nil {
		return nil
	}
	return func() tea.Msg {
		if err := os.WriteFile(path, []byte(doc.Text()), 0644); err != nil {
			return commandErrMsg{id: "save", err: err}
		}
		return savedMsg{path: path}
	}
}

func (m Model) switchFocus(s uiState) (tea.Model, tea.Cmd) {
	if s.activeTerminal == nil && !s.focusTerminal {
		return m, nil
	}

	focus := !s.focusTerminal
	m.host.apply(func() { m.host.ui.focusTerminal = focus })

	if focus {
		cmd := m.terminalInput.Focus()
		return m, cmd
	}
	m.terminalInput.Blur()
	return m, nil
}

// interrupt stops the command running in the active terminal.
func (m Model) interrupt(s uiState) (tea.Model, tea.Cmd) {
	if s.activeTerminal == nil || !s.activeTerminal.session.Interrupt() {
		return m, nil
	}
	if s.focusTerminal {
		m.terminalInput.Reset()
	}
	m.notify("Interrupted " + s.activeTerminal.Name())
	return m.afterStateChange()
}

func (m Model) handleTerminalKey(msg tea.KeyMsg, action Action, s uiState) (tea.Model, tea.Cmd) {
	switch action {
	case ActionCancel:
		return m.switchFocus(s)
	case ActionNewLine:
		text := m.terminalInput.Value()
		m.terminalInput.Reset()
		if s.activeTerminal != nil && strings.TrimSpace(text) != "" {
			s.activeTerminal.SendText(text, true)
		}
		return m, nil
	case ActionPaste:
		return m, Paste
	}

	var cmd tea.Cmd
	m.terminalInput, cmd = m.terminalInput.Update(msg)
	return m, cmd
}

func (m Model) handleEditorKey(msg tea.KeyMsg, action Action) (tea.Model, tea.Cmd) {
	doc := m.host.doc
	if doc == nil {
		return m, nil
	}

	version := doc.Version()
	line, col := doc.Cursor()

	switch action {
	case ActionCharacterForward:
		doc.MoveRight()
	case ActionCharacterBackward:
		doc.MoveLeft()
	case ActionLineUp:
		doc.MoveUp()
	case ActionLineDown:
		doc.MoveDown()
	case ActionLineStart:
		doc.LineStart()
	case ActionLineEnd:
		doc.LineEnd()
	case ActionNewLine:
		doc.NewLine()
	case ActionDeleteCharacterBackward:
		doc.DeleteCharBackward()
	case ActionDeleteCharacterForward:
		doc.DeleteCharForward()
	case ActionDeleteWordBackward:
		doc.DeleteWordBackward()
	case ActionAcceptSuggestion:
		m.host.apply(func() { m.host.acceptSuggestionLocked() })
	case ActionPaste:
		return m, Paste
	case ActionCancel:
		m.host.apply(func() { m.host.ui.suggestion = suggestion{} })
	case ActionNone:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			doc.Insert(string(msg.Runes))
		}
	}

	m.fireChanges(version, line, col)
	return m, nil
}

func (m Model) handlePaste(text string) (tea.Model, tea.Cmd) {
	if m.host.snapshot().focusTerminal {
		m.terminalInput.SetValue(m.terminalInput.Value() + strings.ReplaceAll(text, "\n", " "))
		m.terminalInput.CursorEnd()
		return m, nil
	}

	doc := m.host.doc
	if doc == nil {
		return m, nil
	}

	version := doc.Version()
	line, col := doc.Cursor()
	doc.Insert(text)
	m.fireChanges(version, line, col)
	return m, nil
}

// fireChanges emits document and selection events for user edits.
func (m Model) fireChanges(version, line, col int) {
	doc := m.host.doc
	newLine, newCol := doc.Cursor()

	if doc.Version() != version {
		m.host.documentChanged.Fire()
	}
	if newLine != line || newCol != col {
		m.host.selectionChanged.Fire()
	}
}
