package terminal

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/atinylittleshell/autorun/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exitRecord struct {
	command  string
	exitCode int
}

// newTestSession creates a session whose exits are delivered on the returned channel.
func newTestSession(t *testing.T, opts Options) (*Session, *OutputBuffer, <-chan exitRecord) {
	t.Helper()

	out := NewOutputBuffer(0, nil)
	exits := make(chan exitRecord, 16)

	if opts.Name == "" {
		opts.Name = "test"
	}
	if opts.WorkDir == "" {
		opts.WorkDir = t.TempDir()
	}
	opts.Stdout = out
	opts.Stderr = out
	opts.OnExit = func(command string, exitCode int) {
		exits <- exitRecord{command, exitCode}
	}

	s, err := NewSession(opts)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, out, exits
}

func waitExit(t *testing.T, exits <-chan exitRecord) exitRecord {
	t.Helper()
	select {
	case rec := <-exits:
		return rec
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for command to finish")
		return exitRecord{}
	}
}

func TestSession_RunsCommand(t *testing.T) {
	s, out, exits := newTestSession(t, Options{})

	require.NoError(t, s.SendText("echo hello", true))

	rec := waitExit(t, exits)
	assert.Equal(t, "echo hello", rec.command)
	assert.Equal(t, 0, rec.exitCode)
	assert.Contains(t, out.String(), "$ echo hello\n")
	assert.Contains(t, out.String(), "hello\n")
}

func TestSession_RunsInWorkDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("x"), 0644))

	s, out, exits := newTestSession(t, Options{WorkDir: dir})
	assert.Equal(t, dir, s.WorkDir())

	require.NoError(t, s.SendText("test -f marker.txt && echo found", true))

	rec := waitExit(t, exits)
	assert.Equal(t, 0, rec.exitCode)
	assert.Contains(t, out.String(), "found")
}

func TestSession_ExitCodes(t *testing.T) {
	s, _, exits := newTestSession(t, Options{})

	require.NoError(t, s.SendText("false", true))
	assert.Equal(t, 1, waitExit(t, exits).exitCode)

	require.NoError(t, s.SendText("if then else", true))
	assert.Equal(t, 2, waitExit(t, exits).exitCode)
}

func TestSession_PartialLinesWait(t *testing.T) {
	s, out, exits := newTestSession(t, Options{})

	require.NoError(t, s.SendText("echo ", false))
	select {
	case <-exits:
		t.Fatal("partial line must not run")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, s.SendText("joined", true))
	rec := waitExit(t, exits)
	assert.Equal(t, "echo joined", rec.command)
	assert.Contains(t, out.String(), "joined\n")
}

func TestSession_MultipleLinesRunInOrder(t *testing.T) {
	s, _, exits := newTestSession(t, Options{})

	require.NoError(t, s.SendText("echo one\n\necho two", true))

	assert.Equal(t, "echo one", waitExit(t, exits).command)
	assert.Equal(t, "echo two", waitExit(t, exits).command)
}

func TestSession_StatePersistsBetweenCommands(t *testing.T) {
	s, out, exits := newTestSession(t, Options{})

	require.NoError(t, s.SendText("GREETING=hi", true))
	waitExit(t, exits)
	require.NoError(t, s.SendText("echo $GREETING-there", true))
	waitExit(t, exits)

	assert.Contains(t, out.String(), "hi-there")
}

func TestSession_ExitClosesSession(t *testing.T) {
	s, _, exits := newTestSession(t, Options{})

	closed := make(chan struct{})
	s.OnClose(func() { close(closed) })

	require.NoError(t, s.SendText("exit 3", true))
	assert.Equal(t, 3, waitExit(t, exits).exitCode)

	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("session did not close after exit")
	}
	assert.True(t, s.Closed())
	assert.ErrorIs(t, s.SendText("echo late", true), ErrSessionClosed)
}

func TestSession_OnCloseAfterClose(t *testing.T) {
	s, _, _ := newTestSession(t, Options{})
	s.Close()

	called := false
	s.OnClose(func() { called = true })
	assert.True(t, called)
}

type memoryRecorder struct {
	mu      sync.Mutex
	started []string
	exits   []int
}

func (r *memoryRecorder) StartCommand(command, directory, terminal string) (*state.DispatchEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, terminal+":"+command)
	return &state.DispatchEntry{Command: command, Directory: directory, Terminal: terminal}, nil
}

func (r *memoryRecorder) FinishCommand(entry *state.DispatchEntry, exitCode int) (*state.DispatchEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exits = append(r.exits, exitCode)
	return entry, nil
}

func TestSession_RecordsCommands(t *testing.T) {
	recorder := &memoryRecorder{}
	s, _, exits := newTestSession(t, Options{Name: "AutoRun", Recorder: recorder})

	require.NoError(t, s.SendText("exit_code_test() { return 4; }; exit_code_test", true))
	waitExit(t, exits)

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	require.Len(t, recorder.started, 1)
	assert.True(t, strings.HasPrefix(recorder.started[0], "AutoRun:exit_code_test"))
	assert.Equal(t, []int{4}, recorder.exits)
}

func TestSession_InterruptRunsNextCommand(t *testing.T) {
	s, out, exits := newTestSession(t, Options{})

	assert.False(t, s.Interrupt(), "nothing running yet")

	require.NoError(t, s.SendText("sleep 30; echo skipped", true))
	require.NoError(t, s.SendText("echo after", true))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "$ sleep 30; echo skipped\n")
	}, 5*time.Second, 10*time.Millisecond)

	// The command may not have reached sleep yet when the prompt is printed.
	require.Eventually(t, s.Interrupt, 5*time.Second, 10*time.Millisecond)

	rec := waitExit(t, exits)
	assert.Equal(t, "sleep 30; echo skipped", rec.command)
	assert.Equal(t, 130, rec.exitCode)

	rec = waitExit(t, exits)
	assert.Equal(t, "echo after", rec.command)
	assert.Equal(t, 0, rec.exitCode)
	assert.Contains(t, out.String(), "after\n")
	assert.NotContains(t, out.String(), "skipped\n")
	assert.False(t, s.Closed())
}

func TestSession_InterruptBuiltinLoop(t *testing.T) {
	s, out, exits := newTestSession(t, Options{})

	require.NoError(t, s.SendText("while true; do :; done", true))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "$ while true")
	}, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, s.Interrupt, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, 130, waitExit(t, exits).exitCode)

	require.NoError(t, s.SendText("echo still here", true))
	assert.Equal(t, 0, waitExit(t, exits).exitCode)
	assert.Contains(t, out.String(), "still here\n")
}

func TestSession_DirFollowsCd(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))

	s, _, exits := newTestSession(t, Options{WorkDir: root})
	assert.Equal(t, root, s.Dir())

	require.NoError(t, s.SendText("cd sub", true))
	assert.Equal(t, 0, waitExit(t, exits).exitCode)
	assert.Equal(t, sub, s.Dir())
	assert.Equal(t, root, s.WorkDir())
}
