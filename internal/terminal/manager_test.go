package terminal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestManager_CreateAndFind(t *testing.T) {
	m := NewManager(nil, zap.NewNop())
	defer m.CloseAll()

	assert.Nil(t, m.Find("AutoRun"))

	s, err := m.Create(Options{Name: "AutoRun", WorkDir: t.TempDir()})
	require.NoError(t, err)

	assert.Same(t, s, m.Find("AutoRun"))
	assert.Len(t, m.Sessions(), 1)
}

func TestManager_InvalidWorkDir(t *testing.T) {
	m := NewManager(nil, nil)

	_, err := m.Create(Options{Name: "broken", WorkDir: "/definitely/not/a/dir"})
	assert.Error(t, err)
	assert.Empty(t, m.Sessions())
}

func TestManager_ClosedSessionsAreRemoved(t *testing.T) {
	m := NewManager(nil, nil)

	s, err := m.Create(Options{Name: "AutoRun", WorkDir: t.TempDir()})
	require.NoError(t, err)

	s.Close()
	assert.Nil(t, m.Find("AutoRun"))
	assert.Empty(t, m.Sessions())
}

func TestManager_ExitRemovesSession(t *testing.T) {
	m := NewManager(nil, nil)

	s, err := m.Create(Options{Name: "AutoRun", WorkDir: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, s.SendText("exit", true))

	assert.Eventually(t, func() bool {
		return m.Find("AutoRun") == nil
	}, 5*time.Second, 10*time.Millisecond)
}

func TestManager_UsesRecorder(t *testing.T) {
	recorder := &memoryRecorder{}
	m := NewManager(recorder, nil)
	defer m.CloseAll()

	exits := make(chan exitRecord, 1)
	s, err := m.Create(Options{
		Name:    "AutoRun",
		WorkDir: t.TempDir(),
		OnExit: func(command string, exitCode int) {
			exits <- exitRecord{command, exitCode}
		},
	})
	require.NoError(t, err)

	require.NoError(t, s.SendText("true", true))
	waitExit(t, exits)

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	assert.Equal(t, []string{"AutoRun:true"}, recorder.started)
}
