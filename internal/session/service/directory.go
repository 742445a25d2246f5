package service

import (
	"context"
	"sync"

	"stationlog/pkg/platform/sentinel"
)

// Subject is a resolvable session subject: an activity type for events, or
// an equipment asset for check runs.
type Subject struct {
	ID   string
	Name string
}

// Directory resolves subject ids to their display names. The station
// roster/asset registry is a collaborator; this port is all the core needs
// from it. Lookup returns sentinel.ErrNotFound for unknown ids.
type Directory interface {
	Lookup(ctx context.Context, subjectID string) (Subject, error)
}

// InMemoryDirectory is a seeded Directory for tests and single-station
// deployments without a registry service.
type InMemoryDirectory struct {
	mu       sync.RWMutex
	subjects map[string]Subject
}

var _ Directory = (*InMemoryDirectory)(nil)

// NewInMemoryDirectory seeds a directory with the given subjects.
func NewInMemoryDirectory(subjects ...Subject) *InMemoryDirectory {
	d := &InMemoryDirectory{subjects: make(map[string]Subject, len(subjects))}
	for _, s := range subjects {
		d.subjects[s.ID] = s
	}
	return d
}

// Add registers or replaces a subject.
func (d *InMemoryDirectory) Add(subject Subject) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subjects[subject.ID] = subject
}

func (d *InMemoryDirectory) Lookup(_ context.Context, subjectID string) (Subject, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if s, ok := d.subjects[subjectID]; ok {
		return s, nil
	}
	return Subject{}, sentinel.ErrNotFound
}
