package autorun

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresentationFor(t *testing.T) {
	assert.Equal(t, Presentation{
		Icon:    "debug-start",
		Text:    "AutoRun ON",
		Tooltip: "AutoRun is enabled - Click to disable",
	}, PresentationFor(true))

	assert.Equal(t, Presentation{
		Icon:    "debug-stop",
		Text:    "AutoRun OFF",
		Tooltip: "AutoRun is disabled - Click to enable",
	}, PresentationFor(false))
}

func TestStatusIndicator_LazyCreation(t *testing.T) {
	w := &fakeWindow{}
	s := NewStatusIndicator(w)

	assert.False(t, s.Created())
	assert.Nil(t, w.statusItem())

	s.Render(false)
	s.Render(true)

	require.True(t, s.Created())
	require.Len(t, w.statusItems, 1)
	item := w.statusItem()
	assert.Equal(t, CommandToggle, item.command)
	assert.Equal(t, PresentationFor(true), item.presentation())
	assert.Equal(t, 2, item.shown)
}

func TestStatusIndicator_DisposeOnce(t *testing.T) {
	w := &fakeWindow{}
	s := NewStatusIndicator(w)
	s.Render(true)

	s.Dispose()
	s.Dispose()
	s.Render(false)

	item := w.statusItem()
	assert.Equal(t, 1, item.disposed)
	assert.Equal(t, PresentationFor(true), item.presentation())
	assert.Len(t, w.statusItems, 1)
}

func TestStatusIndicator_DisposeBeforeRender(t *testing.T) {
	w := &fakeWindow{}
	s := NewStatusIndicator(w)

	s.Dispose()
	s.Render(true)

	assert.Nil(t, w.statusItem())
}
