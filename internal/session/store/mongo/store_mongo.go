// Package mongo provides the document store backend. Sessions and
// memberships live in two collections indexed directly by subject and time;
// no manual partition probing is required, so ids remain reachable
// regardless of age. Same external contract as the other backends,
// different cost profile.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"stationlog/internal/session/models"
	"stationlog/internal/session/store"
)

const (
	sessionCollectionBase    = "sessions"
	membershipCollectionBase = "memberships"
)

// Store is the mongo-backed store.Store implementation.
type Store struct {
	client      *mongodriver.Client
	sessions    *mongodriver.Collection
	memberships *mongodriver.Collection
}

var _ store.Store = (*Store)(nil)

// Options configures the mongo store.
type Options struct {
	Client   *mongodriver.Client
	Database string
	// TablePrefix isolates test/dev instances sharing one cluster.
	TablePrefix string
}

// New constructs a mongo-backed store and ensures its indexes. The client
// lifecycle is managed by the caller.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Client == nil {
		return nil, errors.New("mongo client is required")
	}
	if opts.Database == "" {
		return nil, errors.New("database name is required")
	}
	db := opts.Client.Database(opts.Database)
	s := &Store{
		client:      opts.Client,
		sessions:    db.Collection(opts.TablePrefix + sessionCollectionBase),
		memberships: db.Collection(opts.TablePrefix + membershipCollectionBase),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.sessions.Indexes().CreateMany(ctx, []mongodriver.IndexModel{
		{Keys: bson.D{{Key: "session_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "subject_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "start_time", Value: 1}}},
	})
	if err != nil {
		return err
	}
	_, err = s.memberships.Indexes().CreateMany(ctx, []mongodriver.IndexModel{
		{Keys: bson.D{{Key: "membership_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: 1}}},
	})
	return err
}

func (s *Store) Name() string { return "mongo" }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Create(ctx context.Context, session *models.Session) error {
	if _, err := s.sessions.InsertOne(ctx, sessionDocFrom(session)); err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return store.ErrConflict
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, kind models.Kind, id string) (*models.Session, error) {
	filter := bson.M{"session_id": id, "kind": string(kind)}
	var doc sessionDoc
	if err := s.sessions.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return doc.toSession(), nil
}

func (s *Store) GetActiveForSubject(ctx context.Context, kind models.Kind, subjectID string) (*models.Session, error) {
	filter := bson.M{
		"kind":       string(kind),
		"subject_id": subjectID,
		"status":     string(kind.LiveStatus()),
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "start_time", Value: -1}})
	var doc sessionDoc
	if err := s.sessions.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find active session: %w", err)
	}
	return doc.toSession(), nil
}

func (s *Store) Update(ctx context.Context, session *models.Session) error {
	filter := bson.M{"session_id": session.ID}
	res, err := s.sessions.ReplaceOne(ctx, filter, sessionDocFrom(session))
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListByTimeRange(ctx context.Context, kind models.Kind, from, to time.Time) ([]*models.Session, error) {
	filter := bson.M{
		"kind":       string(kind),
		"start_time": bson.M{"$gte": from, "$lte": to},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	cursor, err := s.sessions.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*models.Session
	for cursor.Next(ctx) {
		var doc sessionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode session: %w", err)
		}
		out = append(out, doc.toSession())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}

func (s *Store) ListMemberships(ctx context.Context, sessionID string) ([]*models.Membership, error) {
	filter := bson.M{"session_id": sessionID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.memberships.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer cursor.Close(ctx)

	out := make([]*models.Membership, 0)
	for cursor.Next(ctx) {
		var doc membershipDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode membership: %w", err)
		}
		out = append(out, doc.toMembership())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return out, nil
}

func (s *Store) CreateMembership(ctx context.Context, membership *models.Membership) error {
	if _, err := s.memberships.InsertOne(ctx, membershipDocFrom(membership)); err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return store.ErrConflict
		}
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

func (s *Store) RemoveMembership(ctx context.Context, sessionID, membershipID string) error {
	filter := bson.M{"session_id": sessionID, "membership_id": membershipID}
	res, err := s.memberships.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("remove membership: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
