//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"stationlog/internal/audit"
	"stationlog/internal/audit/store/postgres"
	"stationlog/internal/session/models"
	"stationlog/pkg/testutil/containers"
)

type PostgresAuditSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *postgres.Store
}

func TestPostgresAuditSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresAuditSuite))
}

func (s *PostgresAuditSuite) SetupSuite() {
	ctx := context.Background()
	mgr := containers.GetManager()
	s.pg = mgr.GetPostgres(s.T())

	_, err := s.pg.DB.ExecContext(ctx, postgres.Schema)
	s.Require().NoError(err)

	s.store = postgres.New(s.pg.DB)
}

func (s *PostgresAuditSuite) SetupTest() {
	ctx := context.Background()
	err := s.pg.TruncateAll(ctx, "audit_entries")
	s.Require().NoError(err)
}

func makeEntry(sessionID string, action audit.Action, at time.Time) *audit.Entry {
	return &audit.Entry{
		ID:           uuid.NewString(),
		SessionID:    sessionID,
		Action:       action,
		SubjectRefID: "ff-7",
		MembershipID: uuid.NewString(),
		PerformedBy:  "Alice",
		Timestamp:    at,
		Device: audit.DeviceInfo{
			Type:        audit.DeviceTablet,
			DisplayName: "Safari on iOS",
			UserAgent:   "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X)",
		},
		Notes: "roster update",
	}
}

func (s *PostgresAuditSuite) TestAppendAndListRoundTrip() {
	ctx := context.Background()
	sessionID := uuid.NewString()
	at := time.Now().UTC().Truncate(time.Microsecond)

	entry := makeEntry(sessionID, audit.ActionAdded, at)
	entry.Location = &models.Location{Latitude: 40.7, Longitude: -74.0, Accuracy: 8, Address: "Station 3"}

	s.Require().NoError(s.store.Append(ctx, entry))

	entries, err := s.store.ListBySession(ctx, sessionID)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)

	got := entries[0]
	s.Equal(entry.ID, got.ID)
	s.Equal(audit.ActionAdded, got.Action)
	s.Equal(entry.SubjectRefID, got.SubjectRefID)
	s.Equal(entry.MembershipID, got.MembershipID)
	s.Equal("Alice", got.PerformedBy)
	s.Equal(at.UnixMicro(), got.Timestamp.UnixMicro())
	s.Equal(audit.DeviceTablet, got.Device.Type)
	s.Equal("Safari on iOS", got.Device.DisplayName)
	s.Equal(entry.Device.UserAgent, got.Device.UserAgent)
	s.Require().NotNil(got.Location)
	s.InDelta(40.7, got.Location.Latitude, 1e-9)
	s.Equal("Station 3", got.Location.Address)
	s.Equal("roster update", got.Notes)
}

func (s *PostgresAuditSuite) TestNilLocationStoredAsNull() {
	ctx := context.Background()
	sessionID := uuid.NewString()

	entry := makeEntry(sessionID, audit.ActionRemoved, time.Now().UTC())
	s.Require().NoError(s.store.Append(ctx, entry))

	entries, err := s.store.ListBySession(ctx, sessionID)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Nil(entries[0].Location)
}

func (s *PostgresAuditSuite) TestOrderPreservedForSharedTimestamp() {
	ctx := context.Background()
	sessionID := uuid.NewString()
	at := time.Now().UTC().Truncate(time.Second)

	first := makeEntry(sessionID, audit.ActionAdded, at)
	second := makeEntry(sessionID, audit.ActionRemoved, at)
	third := makeEntry(sessionID, audit.ActionAdded, at)
	for _, e := range []*audit.Entry{first, second, third} {
		s.Require().NoError(s.store.Append(ctx, e))
	}

	entries, err := s.store.ListBySession(ctx, sessionID)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal(first.ID, entries[0].ID)
	s.Equal(second.ID, entries[1].ID)
	s.Equal(third.ID, entries[2].ID)
}

func (s *PostgresAuditSuite) TestListScopedBySession() {
	ctx := context.Background()
	mine := uuid.NewString()
	other := uuid.NewString()

	s.Require().NoError(s.store.Append(ctx, makeEntry(mine, audit.ActionAdded, time.Now().UTC())))
	s.Require().NoError(s.store.Append(ctx, makeEntry(other, audit.ActionAdded, time.Now().UTC())))

	entries, err := s.store.ListBySession(ctx, mine)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(mine, entries[0].SessionID)

	entries, err = s.store.ListBySession(ctx, uuid.NewString())
	s.Require().NoError(err)
	s.Empty(entries)
}
