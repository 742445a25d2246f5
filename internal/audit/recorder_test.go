package audit_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"stationlog/internal/audit"
	auditmemory "stationlog/internal/audit/store/memory"
	"stationlog/internal/session/models"
	"stationlog/pkg/requestcontext"
)

type RecorderSuite struct {
	suite.Suite
	recorder *audit.Recorder
	ctx      context.Context
	now      time.Time
}

func (s *RecorderSuite) SetupTest() {
	s.recorder = audit.NewRecorder(auditmemory.New())
	s.now = time.Date(2026, time.August, 26, 19, 30, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func TestRecorderSuite(t *testing.T) {
	suite.Run(t, new(RecorderSuite))
}

func (s *RecorderSuite) TestRecord() {
	s.Run("builds a complete entry from params and context", func() {
		ctx := requestcontext.WithUserAgent(s.ctx, "Mozilla/5.0 (iPad; CPU OS 17_0) Mobile/15E148")
		entry, err := s.recorder.Record(ctx, audit.RecordParams{
			SessionID:    "sess-1",
			Action:       audit.ActionAdded,
			SubjectRefID: "member-7",
			MembershipID: "mem-1",
			PerformedBy:  "officer-2",
			Location:     &models.Location{Latitude: 52.13, Longitude: 11.62, Accuracy: 8, Address: "Station 4"},
			Notes:        "arrived late\x00",
		})
		s.Require().NoError(err)
		s.NotEmpty(entry.ID)
		s.Equal(audit.ActionAdded, entry.Action)
		s.Equal(audit.DeviceTablet, entry.Device.Type)
		s.True(entry.Timestamp.Equal(s.now))
		s.Equal("arrived late", entry.Notes, "control bytes stripped")
		s.Require().NotNil(entry.Location)
		s.Equal("Station 4", entry.Location.Address)
	})

	s.Run("truncates overlong notes to 500 characters", func() {
		entry, err := s.recorder.Record(s.ctx, audit.RecordParams{
			SessionID: "sess-1",
			Action:    audit.ActionAdded,
			Notes:     strings.Repeat("n", 700),
		})
		s.Require().NoError(err)
		s.Len(entry.Notes, 500)
	})
}

func (s *RecorderSuite) TestTrailOrdering() {
	// Interleave adds and removes with ascending timestamps.
	for i := 0; i < 5; i++ {
		ctx := requestcontext.WithTime(context.Background(), s.now.Add(time.Duration(i)*time.Minute))
		action := audit.ActionAdded
		if i%2 == 1 {
			action = audit.ActionRemoved
		}
		_, err := s.recorder.Record(ctx, audit.RecordParams{
			SessionID:    "sess-2",
			Action:       action,
			SubjectRefID: "member-1",
		})
		s.Require().NoError(err)
	}

	entries, err := s.recorder.Trail(context.Background(), "sess-2")
	s.Require().NoError(err)
	s.Require().Len(entries, 5)
	for i := 1; i < len(entries); i++ {
		s.False(entries[i].Timestamp.Before(entries[i-1].Timestamp),
			"entries must be in non-decreasing timestamp order")
	}
}

func (s *RecorderSuite) TestTrailStableForEqualTimestamps() {
	// All entries share one timestamp; insertion order must hold.
	refs := []string{"first", "second", "third"}
	for _, ref := range refs {
		_, err := s.recorder.Record(s.ctx, audit.RecordParams{
			SessionID:    "sess-3",
			Action:       audit.ActionAdded,
			SubjectRefID: ref,
		})
		s.Require().NoError(err)
	}

	entries, err := s.recorder.Trail(context.Background(), "sess-3")
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	for i, ref := range refs {
		s.Equal(ref, entries[i].SubjectRefID)
	}
}

func (s *RecorderSuite) TestTrailEmptyForUnknownSession() {
	entries, err := s.recorder.Trail(context.Background(), "no-such-session")
	s.Require().NoError(err)
	s.Empty(entries)
}
