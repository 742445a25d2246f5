package expiry

import (
	"context"
	"errors"
	"io"
	"log"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"stationlog/internal/audit"
	auditmemory "stationlog/internal/audit/store/memory"
	"stationlog/internal/session/models"
	"stationlog/internal/session/service"
	memorystore "stationlog/internal/session/store/memory"
	"stationlog/pkg/requestcontext"
)

func TestIsExpired(t *testing.T) {
	start := time.Date(2026, time.August, 26, 8, 0, 0, 0, time.UTC)
	session := &models.Session{StartTime: start}
	threshold := 12 * time.Hour

	tests := []struct {
		name     string
		now      time.Time
		expected bool
	}{
		{
			name:     "well before the boundary",
			now:      start.Add(time.Hour),
			expected: false,
		},
		{
			name:     "just below the boundary",
			now:      start.Add(threshold - time.Second),
			expected: false,
		},
		{
			name:     "exactly at the boundary counts as expired",
			now:      start.Add(threshold),
			expected: true,
		},
		{
			name:     "past the boundary",
			now:      start.Add(threshold + time.Minute),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsExpired(session, threshold, tt.now))
		})
	}
}

type SweepSuite struct {
	suite.Suite
	store  *memorystore.Store
	events *service.Service
	checks *service.Service
	ctx    context.Context
	now    time.Time
}

func (s *SweepSuite) SetupTest() {
	s.store = memorystore.New()
	recorder := audit.NewRecorder(auditmemory.New())
	directory := service.NewInMemoryDirectory(
		service.Subject{ID: "drill", Name: "Drill"},
		service.Subject{ID: "engine-1", Name: "Engine 1"},
	)
	s.events = service.New(models.KindEvent, s.store, recorder, directory)
	s.checks = service.New(models.KindCheckRun, s.store, recorder, directory)
	s.now = time.Date(2026, time.August, 26, 20, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func TestSweepSuite(t *testing.T) {
	suite.Run(t, new(SweepSuite))
}

func (s *SweepSuite) newScheduler(managers ...Manager) *Scheduler {
	return New(12*time.Hour, 30*24*time.Hour, log.New(io.Discard, "", 0), managers)
}

// startSession creates a live session whose StartTime is age before now.
func (s *SweepSuite) startSession(svc *service.Service, subjectID string, age time.Duration) *models.Session {
	ctx := requestcontext.WithTime(context.Background(), s.now.Add(-age))
	res, err := svc.CreateOrJoin(ctx, subjectID, "member-1", "Alice")
	s.Require().NoError(err)
	return res.Session
}

func (s *SweepSuite) TestSweepEndsOnlyExpiredLiveSessions() {
	expired := s.startSession(s.events, "drill", 13*time.Hour)
	fresh := s.startSession(s.checks, "engine-1", time.Hour)

	ended, err := s.newScheduler(s.events, s.checks).Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{expired.ID}, ended)

	got, err := s.store.GetByID(s.ctx, models.KindEvent, expired.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusEnded, got.Status)
	s.Empty(got.Comments, "sweep ends sessions without comments")

	got, err = s.store.GetByID(s.ctx, models.KindCheckRun, fresh.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusInProgress, got.Status)
}

func (s *SweepSuite) TestSweepSkipsAlreadyTerminalSessions() {
	stale := s.startSession(s.events, "drill", 15*time.Hour)
	_, err := s.events.EndSession(s.ctx, stale.ID, "closed manually")
	s.Require().NoError(err)

	ended, err := s.newScheduler(s.events).Sweep(s.ctx)
	s.Require().NoError(err)
	s.Empty(ended, "terminal sessions are excluded from the affected-id list")
}

func (s *SweepSuite) TestSweepCoversBothKinds() {
	event := s.startSession(s.events, "drill", 14*time.Hour)
	check := s.startSession(s.checks, "engine-1", 14*time.Hour)

	ended, err := s.newScheduler(s.events, s.checks).Sweep(s.ctx)
	s.Require().NoError(err)
	sort.Strings(ended)
	want := []string{event.ID, check.ID}
	sort.Strings(want)
	s.Equal(want, ended)
}

func (s *SweepSuite) TestExpiryIsLazy() {
	expired := s.startSession(s.events, "drill", 13*time.Hour)

	// Logically expired but not yet swept: still reads as live.
	got, err := s.store.GetByID(s.ctx, models.KindEvent, expired.ID)
	s.Require().NoError(err)
	s.True(got.Live())

	_, err = s.newScheduler(s.events).Sweep(s.ctx)
	s.Require().NoError(err)

	got, err = s.store.GetByID(s.ctx, models.KindEvent, expired.ID)
	s.Require().NoError(err)
	s.False(got.Live())
}

// failingManager ends no sessions; every EndSession call errors.
type failingManager struct {
	inner *service.Service
}

func (f *failingManager) Kind() models.Kind { return f.inner.Kind() }

func (f *failingManager) ListRecent(ctx context.Context, from, to time.Time) ([]*models.Session, error) {
	return f.inner.ListRecent(ctx, from, to)
}

func (f *failingManager) EndSession(context.Context, string, string) (*models.Session, error) {
	return nil, errors.New("backend write failed")
}

func (s *SweepSuite) TestSweepIsBestEffort() {
	s.startSession(s.events, "drill", 13*time.Hour)
	survivor := s.startSession(s.checks, "engine-1", 13*time.Hour)

	// Events fail to end; check runs must still be swept.
	scheduler := s.newScheduler(&failingManager{inner: s.events}, s.checks)
	ended, err := scheduler.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{survivor.ID}, ended)
}
