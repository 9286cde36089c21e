// Package tui is a terminal editor host for autorun built on Bubble Tea.
//
// Host implements the capability interfaces of internal/host on top of an
// editor.Document and a terminal.Manager. UI state lives on the Bubble Tea
// update loop: calls arriving from other goroutines are posted to the
// program with Program.Send and wait for the loop to apply them. Host
// methods must therefore never be called from inside Update.
package tui

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/atinylittleshell/autorun/internal/editor"
	"github.com/atinylittleshell/autorun/internal/host"
	"github.com/atinylittleshell/autorun/internal/predict"
	"github.com/atinylittleshell/autorun/internal/terminal"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Options configures a Host.
type Options struct {
	// Document is the buffer being edited. Required.
	Document *editor.Document

	// Path is shown in the status bar. May be empty.
	Path string

	// Terminals creates and tracks shell sessions. Required.
	Terminals *terminal.Manager

	// Predictor computes inline suggestions. Nil disables suggestions.
	Predictor predict.Predictor

	// Memento persists host-independent flags. May be nil.
	Memento host.Memento

	// Folders are the workspace roots, first root first.
	Folders []string

	Logger *zap.Logger
}

// sender is the subset of *tea.Program the host needs.
type sender interface {
	Send(msg tea.Msg)
}

// callMsg asks the update loop to run fn and close done.
type callMsg struct {
	fn   func()
	done chan struct{}
}

// redrawMsg asks the update loop to re-render.
type redrawMsg struct{}

// Host is the Bubble Tea implementation of the host capabilities.
type Host struct {
	doc       *editor.Document
	path      string
	terminals *terminal.Manager
	predictor predict.Predictor
	memento   host.Memento
	folders   []string
	logger    *zap.Logger

	commands         *host.CommandRegistry
	documentChanged  *host.Emitter
	selectionChanged *host.Emitter

	attachMu sync.Mutex
	program  sender
	finished chan struct{}

	// redrawPending is set while a redrawMsg is on its way to the loop.
	redrawPending atomic.Bool

	// mu guards ui. Every mutation runs inside call.
	mu sync.Mutex
	ui uiState
}

// uiState is everything View renders besides the document.
type uiState struct {
	notification   string
	notifiedAt     time.Time
	warning        *warningDialog
	statusItems    []*statusItem
	views          []*terminalView
	activeTerminal *terminalView
	suggestion     suggestion
	predicting     bool
	focusTerminal  bool
}

type warningDialog struct {
	message string
	actions []string
	reply   chan string
}

func (w *warningDialog) resolve(choice string) {
	w.reply <- choice
	close(w.reply)
}

// abandon closes the dialog without a choice.
func (w *warningDialog) abandon() {
	close(w.reply)
}

// New creates a Host. Nothing is drawn until the host is attached to a
// running program.
func New(opts Options) *Host {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &Host{
		doc:              opts.Document,
		path:             opts.Path,
		terminals:        opts.Terminals,
		predictor:        opts.Predictor,
		memento:          opts.Memento,
		folders:          append([]string{}, opts.Folders...),
		logger:           logger,
		commands:         host.NewCommandRegistry(),
		documentChanged:  host.NewEmitter(),
		selectionChanged: host.NewEmitter(),
		finished:         make(chan struct{}),
	}

	h.commands.Register(host.CommandTriggerSuggestion, h.triggerSuggestion)
	h.commands.Register(host.CommandCommitSuggestion, h.commitSuggestion)
	return h
}

// Capabilities returns the host bundle handed to the controller.
func (h *Host) Capabilities() host.Host {
	return host.Host{
		Events:    h,
		Commands:  h.commands,
		Window:    h,
		Workspace: h,
		Memento:   h.memento,
	}
}

// Commands returns the host's command registry.
func (h *Host) Commands() *host.CommandRegistry {
	return h.commands
}

// Attach routes UI calls through p. It must be called before p.Run.
func (h *Host) Attach(p sender) {
	h.attachMu.Lock()
	defer h.attachMu.Unlock()
	h.program = p
}

// Detach marks the program as finished. Pending and later calls are
// applied directly on the calling goroutine. An open warning is closed
// without a choice.
func (h *Host) Detach() {
	h.attachMu.Lock()
	select {
	case <-h.finished:
	default:
		close(h.finished)
	}
	h.program = nil
	h.attachMu.Unlock()

	h.apply(func() {
		if h.ui.warning != nil {
			h.ui.warning.abandon()
			h.ui.warning = nil
		}
	})
}

// call runs fn with the UI state locked. When a program is attached fn runs
// on its update loop and call waits for it to finish.
func (h *Host) call(fn func()) {
	h.attachMu.Lock()
	p := h.program
	finished := h.finished
	h.attachMu.Unlock()

	if p == nil {
		h.apply(fn)
		return
	}

	done := make(chan struct{})
	p.Send(callMsg{fn: fn, done: done})

	select {
	case <-done:
	case <-finished:
	}
}

func (h *Host) apply(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn()
}

// redraw asks an attached program to re-render. It never blocks, and
// requests made while one is still undelivered are merged into it.
func (h *Host) redraw() {
	h.attachMu.Lock()
	p := h.program
	h.attachMu.Unlock()

	if p == nil || !h.redrawPending.CompareAndSwap(false, true) {
		return
	}
	go p.Send(redrawMsg{})
}

// OnDidChangeTextDocument implements host.Events.
func (h *Host) OnDidChangeTextDocument(listener func()) host.Disposable {
	return h.documentChanged.Subscribe(listener)
}

// OnDidChangeTextEditorSelection implements host.Events.
func (h *Host) OnDidChangeTextEditorSelection(listener func()) host.Disposable {
	return h.selectionChanged.Subscribe(listener)
}

// Folders implements host.Workspace.
func (h *Host) Folders() []string {
	return append([]string{}, h.folders...)
}

// ActiveTextEditor implements host.Window.
func (h *Host) ActiveTextEditor() host.TextEditor {
	if h.doc == nil {
		return nil
	}
	return h.doc
}

// ShowInformationMessage implements host.Window.
func (h *Host) ShowInformationMessage(message string) {
	h.logger.Debug("notification", zap.String("message", message))
	h.call(func() {
		h.ui.notification = message
		h.ui.notifiedAt = time.Now()
	})
}

// ShowWarningMessage implements host.Window. The dialog is modal; Enter picks
// the first action and Esc dismisses it. A newer warning dismisses an older one.
func (h *Host) ShowWarningMessage(message string, actions ...string) <-chan string {
	reply := make(chan string, 1)
	dialog := &warningDialog{
		message: message,
		actions: append([]string{}, actions...),
		reply:   reply,
	}

	h.call(func() {
		if h.ui.warning != nil {
			h.ui.warning.resolve("")
		}
		h.ui.warning = dialog
	})
	return reply
}

// CreateStatusBarItem implements host.Window.
func (h *Host) CreateStatusBarItem() host.StatusBarItem {
	item := &statusItem{host: h}
	h.call(func() {
		h.ui.statusItems = append(h.ui.statusItems, item)
	})
	return item
}

// Terminals implements host.Window.
func (h *Host) Terminals() []host.Terminal {
	h.mu.Lock()
	defer h.mu.Unlock()

	terminals := make([]host.Terminal, 0, len(h.ui.views))
	for _, v := range h.ui.views {
		if !v.session.Closed() {
			terminals = append(terminals, v)
		}
	}
	return terminals
}

// CreateTerminal implements host.Window.
func (h *Host) CreateTerminal(opts host.TerminalOptions) (host.Terminal, error) {
	output := terminal.NewOutputBuffer(terminal.DefaultMaxLines, h.redraw)
	session, err := h.terminals.Create(terminal.Options{
		Name:    opts.Name,
		WorkDir: opts.Cwd,
		Stdout:  output,
		Stderr:  output,
	})
	if err != nil {
		return nil, err
	}

	view := &terminalView{host: h, session: session, output: output}
	session.OnClose(func() { h.removeView(view) })

	h.call(func() {
		h.ui.views = append(h.ui.views, view)
	})
	return view, nil
}

func (h *Host) removeView(view *terminalView) {
	h.call(func() {
		for i, v := range h.ui.views {
			if v == view {
				h.ui.views = append(h.ui.views[:i], h.ui.views[i+1:]...)
				break
			}
		}
		if h.ui.activeTerminal == view {
			h.ui.activeTerminal = nil
			h.ui.focusTerminal = false
		}
	})
}

// Close disposes every terminal session.
func (h *Host) Close() {
	h.terminals.CloseAll()
}

// snapshot copies the UI state for rendering.
func (h *Host) snapshot() uiState {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.ui
	s.statusItems = append([]*statusItem{}, h.ui.statusItems...)
	s.views = append([]*terminalView{}, h.ui.views...)
	return s
}

var (
	_ host.Events    = (*Host)(nil)
	_ host.Window    = (*Host)(nil)
	_ host.Workspace = (*Host)(nil)
)
