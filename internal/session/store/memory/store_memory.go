// Package memory provides the ephemeral session store backend: a direct
// in-process collection with no persistence across restarts. It is the
// factory's final fallback and the default store in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"stationlog/internal/session/models"
	"stationlog/internal/session/store"
)

// Store keeps all records in process memory guarded by a single RWMutex, so
// the read-then-write races documented for remote backends do not occur
// here. It intentionally favors clarity over performance.
type Store struct {
	mu          sync.RWMutex
	sessions    map[string]*models.Session
	memberships map[string][]*models.Membership
}

var _ store.Store = (*Store)(nil)

// New creates an empty ephemeral store. Each caller owns its instance; the
// package keeps no process-wide state.
func New() *Store {
	return &Store{
		sessions:    make(map[string]*models.Session),
		memberships: make(map[string][]*models.Membership),
	}
}

func (s *Store) Name() string { return "memory" }

// Ping always succeeds; there is no remote connection to lose.
func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return store.ErrConflict
	}
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *Store) GetByID(_ context.Context, kind models.Kind, id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok || sess.Kind != kind {
		return nil, store.ErrNotFound
	}
	return sess.Clone(), nil
}

func (s *Store) GetActiveForSubject(_ context.Context, kind models.Kind, subjectID string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.Session
	for _, sess := range s.sessions {
		if sess.Kind != kind || sess.SubjectID != subjectID || !sess.Live() {
			continue
		}
		if latest == nil || sess.StartTime.After(latest.StartTime) {
			latest = sess
		}
	}
	if latest == nil {
		return nil, store.ErrNotFound
	}
	return latest.Clone(), nil
}

func (s *Store) Update(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; !ok {
		return store.ErrNotFound
	}
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *Store) ListByTimeRange(_ context.Context, kind models.Kind, from, to time.Time) ([]*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Session
	for _, sess := range s.sessions {
		if sess.Kind != kind {
			continue
		}
		if sess.StartTime.Before(from) || sess.StartTime.After(to) {
			continue
		}
		out = append(out, sess.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *Store) ListMemberships(_ context.Context, sessionID string) ([]*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.memberships[sessionID]
	out := make([]*models.Membership, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.Clone())
	}
	return out, nil
}

func (s *Store) CreateMembership(_ context.Context, membership *models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := membership.SessionID
	for _, m := range s.memberships[key] {
		if m.ID == membership.ID {
			return store.ErrConflict
		}
	}
	s.memberships[key] = append(s.memberships[key], membership.Clone())
	return nil
}

func (s *Store) RemoveMembership(_ context.Context, sessionID, membershipID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.memberships[sessionID]
	for i, m := range rows {
		if m.ID == membershipID {
			s.memberships[sessionID] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}
