// Package session owns live runs. Each Session serialises access to one
// run; the Manager tracks every session and is safe for concurrent use.
package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tower/internal/game/battle"
	"github.com/cory-johannsen/tower/internal/game/character"
	"github.com/cory-johannsen/tower/internal/game/combat"
	"github.com/cory-johannsen/tower/internal/game/ruleset"
	"github.com/cory-johannsen/tower/internal/game/tower"
)

// Session is one player's run plus its identity.
// All methods are safe for concurrent use.
type Session struct {
	// ID is the unique session identifier.
	ID string
	// Name is the player character's display name.
	Name string
	// Class is the player's class.
	Class character.Class
	// Started is when the session was created.
	Started time.Time

	mu     sync.Mutex
	run    *tower.Run
	logger *zap.Logger
}

// State is a read-only view of a session for rendering.
type State struct {
	SessionID string
	Floor     int
	Floors    int
	Stage     tower.Stage
	Cleared   int
	Battle    battle.Snapshot
}

// Submit forwards a player action to the current battle.
func (s *Session) Submit(a ruleset.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run.Submit(a)
}

// Update advances the session's clock by dt.
func (s *Session) Update(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run.Update(dt)
}

// Choose picks a reward after a cleared floor.
func (s *Session) Choose(rw tower.Reward) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run.Choose(rw)
}

// Restart begins a new climb after a completed run.
func (s *Session) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run.Restart()
}

// Retry begins a new climb after a defeat.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run.Retry()
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		SessionID: s.ID,
		Floor:     s.run.Floor(),
		Floors:    s.run.Floors(),
		Stage:     s.run.Stage(),
		Cleared:   s.run.Cleared(),
		Battle:    s.run.Battle().Snapshot(),
	}
}

// Drain returns the events produced since the previous call.
func (s *Session) Drain() []combat.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run.Drain()
}

// Manager tracks all active sessions.
// All methods are safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	cfg       tower.Config
	newSource func() combat.Source
	logger    *zap.Logger
}

// NewManager creates an empty Manager whose runs use cfg.
//
// newSource, if non-nil, gives every session its own random source;
// otherwise all sessions share cfg.Source, which must then be safe for concurrent use.
// A nil logger is replaced by a no-op logger.
func NewManager(cfg tower.Config, newSource func() combat.Source, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions:  make(map[string]*Session),
		cfg:       cfg,
		newSource: newSource,
		logger:    logger,
	}
}

// Create starts a session with a fresh run on floor 1.
//
// Precondition: name must be non-empty; class must be a player class.
// Postcondition: Returns the registered Session, or an error if the run could not start.
func (m *Manager) Create(name string, class character.Class) (*Session, error) {
	id := uuid.NewString()
	logger := m.logger.With(zap.String("session_id", id))

	cfg := m.cfg
	cfg.Logger = logger
	if m.newSource != nil {
		cfg.Source = m.newSource()
	}
	run, err := tower.New(cfg, name, class)
	if err != nil {
		return nil, fmt.Errorf("creating session for %q: %w", name, err)
	}
	sess := &Session{
		ID:      id,
		Name:    name,
		Class:   class,
		Started: time.Now(),
		run:     run,
		logger:  logger,
	}

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()
	logger.Info("session created", zap.String("player", name), zap.Stringer("class", class))
	return sess, nil
}

// Get returns the session with the given ID.
//
// Postcondition: Returns (session, true) if found, or (nil, false) otherwise.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove ends a session.
//
// Postcondition: The session is no longer tracked. Returns an error if not found.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %q not found", id)
	}
	s.logger.Info("session removed", zap.Duration("age", time.Since(s.Started)))
	return nil
}

// IDs returns the IDs of all live sessions, sorted.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
