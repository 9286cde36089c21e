// Package terminal provides named shell sessions that run submitted lines
// through the mvdan/sh interpreter, one at a time, in submission order.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/atinylittleshell/autorun/internal/state"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ErrSessionClosed is returned when text is sent to a closed session.
var ErrSessionClosed = errors.New("terminal session closed")

const queueSize = 64

// killTimeout is how long an interrupted command has to exit before it is killed.
const killTimeout = 2 * time.Second

// Recorder receives the lifecycle of every command a session runs.
type Recorder interface {
	StartCommand(command, directory, terminal string) (*state.DispatchEntry, error)
	FinishCommand(entry *state.DispatchEntry, exitCode int) (*state.DispatchEntry, error)
}

// Options configures a new session.
type Options struct {
	// Name identifies the session within its Manager.
	Name string

	// WorkDir is the initial working directory. Empty means the process cwd.
	WorkDir string

	// Env are additional environment variables in KEY=VALUE form.
	Env []string

	// Stdout and Stderr receive command output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer

	// Recorder, if set, records every command run.
	Recorder Recorder

	// OnExit is called after each command with its exit code.
	OnExit func(command string, exitCode int)

	// Logger for debug output. If nil, a no-op logger is used.
	Logger *zap.Logger
}

// Session is a single shell with its own working directory and variables.
type Session struct {
	name     string
	workDir  string
	runner   *interp.Runner
	stdout   io.Writer
	stderr   io.Writer
	recorder Recorder
	onExit   func(command string, exitCode int)
	logger   *zap.Logger

	mu        sync.Mutex
	pending   strings.Builder
	closed    bool
	onClose   []func()
	dir       string
	interrupt context.CancelFunc

	queue  chan string
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSession creates a session and starts its run loop.
func NewSession(opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	stdout := opts.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		workDir = wd
	}

	env := expand.ListEnviron(append(os.Environ(), opts.Env...)...)

	runner, err := interp.New(
		interp.Env(env),
		interp.Dir(workDir),
		interp.StdIO(nil, stdout, stderr),
		interp.ExecHandlers(processGroupExec(killTimeout)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create shell runner: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		name:     opts.Name,
		workDir:  workDir,
		dir:      workDir,
		runner:   runner,
		stdout:   stdout,
		stderr:   stderr,
		recorder: opts.Recorder,
		onExit:   opts.OnExit,
		logger:   logger.With(zap.String("terminal", opts.Name)),
		queue:    make(chan string, queueSize),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	go s.loop()

	return s, nil
}

// Name returns the session name.
func (s *Session) Name() string {
	return s.name
}

// WorkDir returns the directory the session started in.
func (s *Session) WorkDir() string {
	return s.workDir
}

// Dir returns the shell's working directory as of the last finished command.
func (s *Session) Dir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir
}

// Closed reports whether the session has been closed.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// SendText writes text to the shell input. Every complete line (terminated by
// a newline, or by addNewLine) is queued for execution; a trailing partial line
// waits for the next call.
func (s *Session) SendText(text string, addNewLine bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	s.pending.WriteString(text)
	if addNewLine {
		s.pending.WriteString("\n")
	}

	buffered := s.pending.String()
	idx := strings.LastIndexByte(buffered, '\n')
	if idx < 0 {
		return nil
	}

	s.pending.Reset()
	s.pending.WriteString(buffered[idx+1:])

	for _, line := range strings.Split(buffered[:idx], "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		select {
		case s.queue <- line:
		default:
			s.logger.Warn("terminal queue full, dropping command", zap.String("command", line))
		}
	}

	return nil
}

// Interrupt cancels the command that is running, if any, the way ctrl+c does
// in a shell. Queued commands still run. It reports whether a command was
// interrupted.
func (s *Session) Interrupt() bool {
	s.mu.Lock()
	interrupt := s.interrupt
	s.interrupt = nil
	s.mu.Unlock()

	if interrupt == nil {
		return false
	}
	s.logger.Debug("interrupting command")
	interrupt()
	return true
}

// OnClose registers fn to run once the session closes. If the session is
// already closed fn runs immediately.
func (s *Session) OnClose(fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		fn()
		return
	}
	s.onClose = append(s.onClose, fn)
	s.mu.Unlock()
}

// Close stops the session. A running command is interrupted and queued
// commands are dropped.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	callbacks := s.onClose
	s.onClose = nil
	s.mu.Unlock()

	s.cancel()
	<-s.done

	for _, fn := range callbacks {
		fn()
	}
}

func (s *Session) loop() {
	defer close(s.done)

	for {
		select {
		case <-s.ctx.Done():
			return
		case command := <-s.queue:
			if _, exited := s.run(command); exited {
				s.logger.Debug("shell exited")
				go s.Close()
				return
			}
		}
	}
}

// run executes a single command line. It returns the exit code and whether
// the line exited the shell.
func (s *Session) run(command string) (int, bool) {
	fmt.Fprintf(s.stdout, "$ %s\n", command)

	var entry *state.DispatchEntry
	if s.recorder != nil {
		var err error
		entry, err = s.recorder.StartCommand(command, s.runner.Dir, s.name)
		if err != nil {
			s.logger.Warn("failed to record command start", zap.Error(err))
		}
	}

	ctx, cancel := context.WithCancel(s.ctx)
	s.mu.Lock()
	s.interrupt = cancel
	s.mu.Unlock()

	exitCode, exited := s.execute(ctx, command)

	s.mu.Lock()
	s.interrupt = nil
	s.dir = s.runner.Dir
	s.mu.Unlock()
	cancel()

	if s.recorder != nil && entry != nil {
		if _, err := s.recorder.FinishCommand(entry, exitCode); err != nil {
			s.logger.Warn("failed to record command exit", zap.Error(err))
		}
	}

	s.logger.Debug("command finished", zap.String("command", command), zap.Int("exitCode", exitCode))

	if s.onExit != nil {
		s.onExit(command, exitCode)
	}

	return exitCode, exited
}

// execute runs the statements of command one by one. Running them separately
// keeps the runner alive between lines; only the exit builtin ends the shell.
func (s *Session) execute(ctx context.Context, command string) (int, bool) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		fmt.Fprintf(s.stderr, "%s: %v\n", s.name, err)
		return 2, false
	}

	exitCode := 0
	for _, stmt := range prog.Stmts {
		err := s.runner.Run(ctx, stmt)
		exited := s.runner.Exited()

		switch status, ok := interp.IsExitStatus(err); {
		case err == nil:
			exitCode = 0
		case ok:
			exitCode = int(status)
		case errors.Is(err, context.Canceled) && s.ctx.Err() == nil:
			fmt.Fprintln(s.stderr, "^C")
			return 130, exited
		default:
			fmt.Fprintf(s.stderr, "%s: %v\n", s.name, err)
			return 1, exited
		}

		if exited {
			return exitCode, true
		}
		if ctx.Err() != nil {
			return exitCode, false
		}
	}

	return exitCode, false
}
