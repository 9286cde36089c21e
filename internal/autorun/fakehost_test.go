package autorun

import (
	"context"
	"errors"
	"sync"

	"github.com/atinylittleshell/autorun/internal/host"
)

type fakeEditor struct {
	mu       sync.Mutex
	language string
	line     int
	lines    []string
}

func (e *fakeEditor) LanguageID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.language
}

func (e *fakeEditor) CursorLine() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.line
}

func (e *fakeEditor) LineText(n int) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n < 0 || n >= len(e.lines) {
		return ""
	}
	return e.lines[n]
}

func (e *fakeEditor) setLine(n int, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lines[n] = text
}

type fakeStatusItem struct {
	mu       sync.Mutex
	icon     string
	text     string
	tooltip  string
	command  string
	shown    int
	disposed int
}

func (s *fakeStatusItem) SetIcon(icon string)       { s.mu.Lock(); s.icon = icon; s.mu.Unlock() }
func (s *fakeStatusItem) SetText(text string)       { s.mu.Lock(); s.text = text; s.mu.Unlock() }
func (s *fakeStatusItem) SetTooltip(tooltip string) { s.mu.Lock(); s.tooltip = tooltip; s.mu.Unlock() }
func (s *fakeStatusItem) SetCommand(id string)      { s.mu.Lock(); s.command = id; s.mu.Unlock() }
func (s *fakeStatusItem) Show()                     { s.mu.Lock(); s.shown++; s.mu.Unlock() }
func (s *fakeStatusItem) Dispose()                  { s.mu.Lock(); s.disposed++; s.mu.Unlock() }

func (s *fakeStatusItem) presentation() Presentation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Presentation{Icon: s.icon, Text: s.text, Tooltip: s.tooltip}
}

type sentText struct {
	text       string
	addNewLine bool
}

type fakeTerminal struct {
	name string
	cwd  string

	mu    sync.Mutex
	shows []bool
	sent  []sentText
}

func (t *fakeTerminal) Name() string { return t.name }

func (t *fakeTerminal) Show(preserveFocus bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shows = append(t.shows, preserveFocus)
}

func (t *fakeTerminal) SendText(text string, addNewLine bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, sentText{text: text, addNewLine: addNewLine})
}

func (t *fakeTerminal) Dispose() {}

func (t *fakeTerminal) sentTexts() []sentText {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]sentText(nil), t.sent...)
}

type fakeWindow struct {
	mu          sync.Mutex
	editor      *fakeEditor
	messages    []string
	warnings    []string
	warningResp chan string
	statusItems []*fakeStatusItem
	terminals   []*fakeTerminal
	createErr   error
}

func (w *fakeWindow) ActiveTextEditor() host.TextEditor {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.editor == nil {
		return nil
	}
	return w.editor
}

func (w *fakeWindow) ShowInformationMessage(message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, message)
}

func (w *fakeWindow) ShowWarningMessage(message string, actions ...string) <-chan string {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.warnings = append(w.warnings, message)
	return w.warningResp
}

func (w *fakeWindow) CreateStatusBarItem() host.StatusBarItem {
	w.mu.Lock()
	defer w.mu.Unlock()
	item := &fakeStatusItem{}
	w.statusItems = append(w.statusItems, item)
	return item
}

func (w *fakeWindow) Terminals() []host.Terminal {
	w.mu.Lock()
	defer w.mu.Unlock()
	terminals := make([]host.Terminal, len(w.terminals))
	for i, t := range w.terminals {
		terminals[i] = t
	}
	return terminals
}

func (w *fakeWindow) CreateTerminal(opts host.TerminalOptions) (host.Terminal, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.createErr != nil {
		return nil, w.createErr
	}
	t := &fakeTerminal{name: opts.Name, cwd: opts.Cwd}
	w.terminals = append(w.terminals, t)
	return t, nil
}

func (w *fakeWindow) messageList() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.messages...)
}

func (w *fakeWindow) warningList() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.warnings...)
}

func (w *fakeWindow) terminalList() []*fakeTerminal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*fakeTerminal(nil), w.terminals...)
}

func (w *fakeWindow) statusItem() *fakeStatusItem {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.statusItems) == 0 {
		return nil
	}
	return w.statusItems[len(w.statusItems)-1]
}

type fakeEvents struct {
	documents  *host.Emitter
	selections *host.Emitter

	mu        sync.Mutex
	listeners []func()
}

func (e *fakeEvents) OnDidChangeTextDocument(listener func()) host.Disposable {
	e.mu.Lock()
	e.listeners = append(e.listeners, listener)
	e.mu.Unlock()
	return e.documents.Subscribe(listener)
}

// documentListeners returns every document listener ever subscribed,
// including disposed ones.
func (e *fakeEvents) documentListeners() []func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]func(){}, e.listeners...)
}

func (e *fakeEvents) OnDidChangeTextEditorSelection(listener func()) host.Disposable {
	return e.selections.Subscribe(listener)
}

// fakeCommands records executions and lets tests hook the inline suggestion commands.
type fakeCommands struct {
	*host.CommandRegistry

	mu       sync.Mutex
	executed []string
}

func (c *fakeCommands) Execute(ctx context.Context, id string) error {
	c.mu.Lock()
	c.executed = append(c.executed, id)
	c.mu.Unlock()
	return c.CommandRegistry.Execute(ctx, id)
}

func (c *fakeCommands) executedIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.executed...)
}

func (c *fakeCommands) count(id string) int {
	n := 0
	for _, e := range c.executedIDs() {
		if e == id {
			n++
		}
	}
	return n
}

type fakeMemento struct {
	mu        sync.Mutex
	values    map[string]bool
	updateErr error
}

func (m *fakeMemento) GetBool(key string, defaultValue bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.values[key]; ok {
		return v
	}
	return defaultValue
}

func (m *fakeMemento) UpdateBool(key string, value bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	m.values[key] = value
	return nil
}

func (m *fakeMemento) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok
}

type fakeWorkspace []string

func (w fakeWorkspace) Folders() []string { return w }

type fakeHost struct {
	events   *fakeEvents
	commands *fakeCommands
	window   *fakeWindow
	memento  *fakeMemento
	folders  fakeWorkspace
}

func newFakeHost() *fakeHost {
	resp := make(chan string, 1)
	resp <- actionUnderstand
	close(resp)

	h := &fakeHost{
		events: &fakeEvents{
			documents:  host.NewEmitter(),
			selections: host.NewEmitter(),
		},
		commands: &fakeCommands{CommandRegistry: host.NewCommandRegistry()},
		window: &fakeWindow{
			editor:      &fakeEditor{language: "shellscript", lines: []string{""}},
			warningResp: resp,
		},
		memento: &fakeMemento{values: map[string]bool{}},
		folders: fakeWorkspace{"/work"},
	}

	// By default the suggestion is accepted unchanged.
	h.commands.Register(host.CommandTriggerSuggestion, func(context.Context) error { return nil })
	h.commands.Register(host.CommandCommitSuggestion, func(context.Context) error { return nil })
	return h
}

func (h *fakeHost) host() host.Host {
	return host.Host{
		Events:    h.events,
		Commands:  h.commands,
		Window:    h.window,
		Workspace: h.folders,
		Memento:   h.memento,
	}
}

func (h *fakeHost) typeLine(text string) {
	h.window.editor.setLine(h.window.editor.CursorLine(), text)
	h.events.documents.Fire()
}

var errBoom = errors.New("boom")
