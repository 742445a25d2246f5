// Package store defines the session storage contract and the partition key
// strategy shared by its backends.
//
// Three backends conform to Store with different cost/consistency profiles:
// an ephemeral in-process map (memory), a time-partitioned remote table
// store (redis), and a document store (mongo). The time-partitioned backend
// probes a bounded horizon of recent month buckets for point lookups; ids
// whose start month has aged past the horizon are reported as not found.
// Callers cannot distinguish a horizon miss from a true miss.
package store

import (
	"context"
	"time"

	"stationlog/internal/session/models"
	"stationlog/pkg/platform/sentinel"
)

var (
	// ErrNotFound is returned when a session or membership does not
	// resolve via the backend's supported lookup strategy, including
	// partition-horizon misses.
	ErrNotFound = sentinel.ErrNotFound

	// ErrConflict is returned when creating a record whose id already
	// exists.
	ErrConflict = sentinel.ErrConflict
)

// Store persists sessions and their co-located memberships. Implementations
// own all records and must return copies, never shared mutable aliases.
//
// No optimistic-concurrency token protects Update: concurrent
// read-modify-write of the same session can lose a write on remote
// backends. The memory backend serializes writes with a mutex.
type Store interface {
	// Create persists a new session.
	Create(ctx context.Context, session *models.Session) error

	// GetByID returns the session with the given id, or ErrNotFound.
	GetByID(ctx context.Context, kind models.Kind, id string) (*models.Session, error)

	// GetActiveForSubject returns the most recently started live session
	// for the subject, or ErrNotFound when none is live.
	GetActiveForSubject(ctx context.Context, kind models.Kind, subjectID string) (*models.Session, error)

	// Update persists a modified session. ErrNotFound when the id is
	// unknown.
	Update(ctx context.Context, session *models.Session) error

	// ListByTimeRange returns sessions with startTime in [from, to],
	// sorted ascending by startTime.
	ListByTimeRange(ctx context.Context, kind models.Kind, from, to time.Time) ([]*models.Session, error)

	// ListMemberships returns all memberships of a session in creation
	// order. Memberships are co-located under the session id, so this is
	// a single partition fetch on every backend.
	ListMemberships(ctx context.Context, sessionID string) ([]*models.Membership, error)

	// CreateMembership persists a new membership.
	CreateMembership(ctx context.Context, membership *models.Membership) error

	// RemoveMembership deletes a membership. ErrNotFound when absent.
	RemoveMembership(ctx context.Context, sessionID, membershipID string) error

	// Ping reports backend health; the factory uses it during selection.
	Ping(ctx context.Context) error

	// Name identifies the backend for logs and metrics.
	Name() string
}
