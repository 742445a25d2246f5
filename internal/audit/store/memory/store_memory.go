// Package memory provides the in-memory audit store used by tests and
// ephemeral deployments.
package memory

import (
	"context"
	"sort"
	"sync"

	"stationlog/internal/audit"
)

// Store keeps entries per session in insertion order. There is no delete
// path; the audit log is append-only.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]*audit.Entry
}

var _ audit.Store = (*Store)(nil)

func New() *Store {
	return &Store{entries: make(map[string][]*audit.Entry)}
}

func (s *Store) Append(_ context.Context, entry *audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.SessionID] = append(s.entries[entry.SessionID], entry.Clone())
	return nil
}

func (s *Store) ListBySession(_ context.Context, sessionID string) ([]*audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.entries[sessionID]
	out := make([]*audit.Entry, 0, len(rows))
	for _, e := range rows {
		out = append(out, e.Clone())
	}
	// Stable sort keeps insertion order for equal timestamps.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}
