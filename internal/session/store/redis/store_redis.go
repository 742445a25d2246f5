// Package redis provides the time-partitioned remote table backend.
//
// Session rows live in one hash per month bucket, keyed by
// "{prefix}sessions:{kind}_{YYYY-MM}" with the session id as field.
// Membership rows are co-located in one hash per owning session, keyed by
// "{prefix}memberships:{sessionID}", so "all memberships of session X" is a
// single HGETALL.
//
// Point lookups probe a bounded horizon of the most recent month buckets
// (store.ProbePartitions). Ids that started before the horizon miss every
// probe and surface as store.ErrNotFound; this is an accepted scalability
// trade-off, not a bug. Range and subject queries fetch the probed buckets,
// merge, then filter and sort client side.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"stationlog/internal/platform/config"
	"stationlog/internal/session/models"
	"stationlog/internal/session/store"
	"stationlog/pkg/requestcontext"
)

const (
	sessionTableBase    = "sessions"
	membershipTableBase = "memberships"
)

// Store is the redis-backed store.Store implementation.
type Store struct {
	client      redis.Cmdable
	prefix      string
	probeMonths int
}

var _ store.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithProbeMonths overrides the partition probe horizon.
func WithProbeMonths(months int) Option {
	return func(s *Store) {
		if months > 0 {
			s.probeMonths = months
		}
	}
}

// WithTablePrefix prepends an environment prefix to the table base names so
// test/dev instances can share a backing account without mixing data.
func WithTablePrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// New constructs a redis-backed store. The client lifecycle is managed by
// the caller.
func New(client redis.Cmdable, opts ...Option) *Store {
	s := &Store{
		client:      client,
		probeMonths: config.DefaultProbeMonths,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Store) Name() string { return "redis" }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) sessionKey(partition string) string {
	return fmt.Sprintf("%s%s:%s", s.prefix, sessionTableBase, partition)
}

func (s *Store) membershipKey(sessionID string) string {
	return fmt.Sprintf("%s%s:%s", s.prefix, membershipTableBase, store.MembershipPartition(sessionID))
}

func (s *Store) Create(ctx context.Context, session *models.Session) error {
	key := s.sessionKey(store.SessionPartition(session.Kind, session.StartTime))
	payload, err := json.Marshal(sessionRowFrom(session))
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	created, err := s.client.HSetNX(ctx, key, session.ID, payload).Result()
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if !created {
		return store.ErrConflict
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, kind models.Kind, id string) (*models.Session, error) {
	now := requestcontext.Now(ctx)
	for _, partition := range store.ProbePartitions(kind, now, s.probeMonths) {
		raw, err := s.client.HGet(ctx, s.sessionKey(partition), id).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("probe %s: %w", partition, err)
		}
		return decodeSession(raw)
	}
	// Exhausted the probe horizon; indistinguishable from a true miss.
	return nil, store.ErrNotFound
}

func (s *Store) GetActiveForSubject(ctx context.Context, kind models.Kind, subjectID string) (*models.Session, error) {
	sessions, err := s.fetchProbedSessions(ctx, kind)
	if err != nil {
		return nil, err
	}
	var latest *models.Session
	for _, sess := range sessions {
		if sess.SubjectID != subjectID || !sess.Live() {
			continue
		}
		if latest == nil || sess.StartTime.After(latest.StartTime) {
			latest = sess
		}
	}
	if latest == nil {
		return nil, store.ErrNotFound
	}
	return latest, nil
}

func (s *Store) Update(ctx context.Context, session *models.Session) error {
	// StartTime is immutable, so the row's partition never moves.
	key := s.sessionKey(store.SessionPartition(session.Kind, session.StartTime))
	exists, err := s.client.HExists(ctx, key, session.ID).Result()
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if !exists {
		return store.ErrNotFound
	}
	payload, err := json.Marshal(sessionRowFrom(session))
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.HSet(ctx, key, session.ID, payload).Err(); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

func (s *Store) ListByTimeRange(ctx context.Context, kind models.Kind, from, to time.Time) ([]*models.Session, error) {
	sessions, err := s.fetchProbedSessions(ctx, kind)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Session, 0, len(sessions))
	for _, sess := range sessions {
		if sess.StartTime.Before(from) || sess.StartTime.After(to) {
			continue
		}
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

// fetchProbedSessions merges every session row within the probe horizon.
// The scan is repeated in full on every call; no cursor state is retained.
func (s *Store) fetchProbedSessions(ctx context.Context, kind models.Kind) ([]*models.Session, error) {
	now := requestcontext.Now(ctx)
	var out []*models.Session
	for _, partition := range store.ProbePartitions(kind, now, s.probeMonths) {
		rows, err := s.client.HGetAll(ctx, s.sessionKey(partition)).Result()
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", partition, err)
		}
		for _, raw := range rows {
			sess, err := decodeSession(raw)
			if err != nil {
				return nil, err
			}
			out = append(out, sess)
		}
	}
	return out, nil
}

func (s *Store) ListMemberships(ctx context.Context, sessionID string) ([]*models.Membership, error) {
	rows, err := s.client.HGetAll(ctx, s.membershipKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch memberships: %w", err)
	}
	out := make([]*models.Membership, 0, len(rows))
	for _, raw := range rows {
		m, err := decodeMembership(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	// Hash fields come back unordered; restore creation order.
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) CreateMembership(ctx context.Context, membership *models.Membership) error {
	payload, err := json.Marshal(membershipRowFrom(membership))
	if err != nil {
		return fmt.Errorf("marshal membership: %w", err)
	}
	created, err := s.client.HSetNX(ctx, s.membershipKey(membership.SessionID), membership.ID, payload).Result()
	if err != nil {
		return fmt.Errorf("store membership: %w", err)
	}
	if !created {
		return store.ErrConflict
	}
	return nil
}

func (s *Store) RemoveMembership(ctx context.Context, sessionID, membershipID string) error {
	removed, err := s.client.HDel(ctx, s.membershipKey(sessionID), membershipID).Result()
	if err != nil {
		return fmt.Errorf("remove membership: %w", err)
	}
	if removed == 0 {
		return store.ErrNotFound
	}
	return nil
}
