package terminal

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Manager owns every open session. Sessions are listed in creation order and
// removed once they close.
type Manager struct {
	mu       sync.Mutex
	sessions []*Session
	recorder Recorder
	logger   *zap.Logger
}

// NewManager creates a Manager. recorder may be nil.
func NewManager(recorder Recorder, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		recorder: recorder,
		logger:   logger,
	}
}

// Create starts a new session. The Manager's recorder and logger are used
// when opts leaves them unset. Names need not be unique.
func (m *Manager) Create(opts Options) (*Session, error) {
	if opts.Recorder == nil && m.recorder != nil {
		opts.Recorder = m.recorder
	}
	if opts.Logger == nil {
		opts.Logger = m.logger
	}

	session, err := NewSession(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create terminal %q: %w", opts.Name, err)
	}

	m.mu.Lock()
	m.sessions = append(m.sessions, session)
	m.mu.Unlock()

	session.OnClose(func() { m.remove(session) })

	m.logger.Info("terminal created", zap.String("name", opts.Name), zap.String("cwd", session.WorkDir()))
	return session, nil
}

// Find returns the first open session named name, or nil.
func (m *Manager) Find(name string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// Sessions returns the open sessions in creation order.
func (m *Manager) Sessions() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, len(m.sessions))
	copy(out, m.sessions)
	return out
}

// CloseAll closes every open session.
func (m *Manager) CloseAll() {
	for _, s := range m.Sessions() {
		s.Close()
	}
}

func (m *Manager) remove(session *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.sessions {
		if s == session {
			m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
			return
		}
	}
}
