package tui

import (
	"github.com/atinylittleshell/autorun/internal/host"
	"github.com/atinylittleshell/autorun/internal/terminal"
	"go.uber.org/zap"
)

// statusItem is a status bar entry. Fields are only touched inside Host.call.
type statusItem struct {
	host *Host

	icon     string
	text     string
	tooltip  string
	command  string
	visible  bool
	disposed bool
}

func (s *statusItem) SetIcon(icon string) {
	s.host.call(func() { s.icon = icon })
}

func (s *statusItem) SetText(text string) {
	s.host.call(func() { s.text = text })
}

func (s *statusItem) SetTooltip(tooltip string) {
	s.host.call(func() { s.tooltip = tooltip })
}

func (s *statusItem) SetCommand(id string) {
	s.host.call(func() { s.command = id })
}

func (s *statusItem) Show() {
	s.host.call(func() {
		if !s.disposed {
			s.visible = true
		}
	})
}

func (s *statusItem) Dispose() {
	s.host.call(func() {
		if s.disposed {
			return
		}
		s.disposed = true
		s.visible = false

		items := s.host.ui.statusItems
		for i, item := range items {
			if item == s {
				s.host.ui.statusItems = append(items[:i], items[i+1:]...)
				break
			}
		}
	})
}

// terminalView adapts a terminal.Session to host.Terminal and keeps its output.
type terminalView struct {
	host    *Host
	session *terminal.Session
	output  *terminal.OutputBuffer
}

func (t *terminalView) Name() string {
	return t.session.Name()
}

func (t *terminalView) Show(preserveFocus bool) {
	t.host.call(func() {
		t.host.ui.activeTerminal = t
		if !preserveFocus {
			t.host.ui.focusTerminal = true
		}
	})
}

func (t *terminalView) SendText(text string, addNewLine bool) {
	if err := t.session.SendText(text, addNewLine); err != nil {
		t.host.logger.Warn("failed to send text to terminal",
			zap.String("terminal", t.session.Name()),
			zap.Error(err))
	}
}

func (t *terminalView) Dispose() {
	t.session.Close()
}

var (
	_ host.StatusBarItem = (*statusItem)(nil)
	_ host.Terminal      = (*terminalView)(nil)
)
