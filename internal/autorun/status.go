package autorun

import (
	"sync"

	"github.com/atinylittleshell/autorun/internal/host"
)

// Presentation is what the status indicator shows for one state.
type Presentation struct {
	Icon    string
	Text    string
	Tooltip string
}

var (
	presentationOn = Presentation{
		Icon:    "debug-start",
		Text:    "AutoRun ON",
		Tooltip: "AutoRun is enabled - Click to disable",
	}
	presentationOff = Presentation{
		Icon:    "debug-stop",
		Text:    "AutoRun OFF",
		Tooltip: "AutoRun is disabled - Click to enable",
	}
)

// PresentationFor returns the fixed presentation for the enabled state.
func PresentationFor(enabled bool) Presentation {
	if enabled {
		return presentationOn
	}
	return presentationOff
}

// StatusIndicator owns the status bar item. The item is created on the first
// Render and released by the first Dispose; later calls are no-ops.
type StatusIndicator struct {
	window host.Window

	mu       sync.Mutex
	item     host.StatusBarItem
	disposed bool
}

// NewStatusIndicator creates an indicator that will draw into window.
func NewStatusIndicator(window host.Window) *StatusIndicator {
	return &StatusIndicator{window: window}
}

// Render shows the presentation for enabled.
func (s *StatusIndicator) Render(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}

	if s.item == nil {
		s.item = s.window.CreateStatusBarItem()
		s.item.SetCommand(CommandToggle)
	}

	p := PresentationFor(enabled)
	s.item.SetIcon(p.Icon)
	s.item.SetText(p.Text)
	s.item.SetTooltip(p.Tooltip)
	s.item.Show()
}

// Created reports whether the status bar item exists.
func (s *StatusIndicator) Created() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.item != nil
}

// Dispose releases the status bar item if it was created.
func (s *StatusIndicator) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}
	s.disposed = true

	if s.item != nil {
		s.item.Dispose()
		s.item = nil
	}
}
