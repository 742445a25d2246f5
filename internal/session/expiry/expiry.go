// Package expiry implements the pull-based expiry sweep. Expiry is lazy:
// nothing in the core runs a timer, so a logically expired session still
// reads as live until the next sweep. The sweeper command (or any external
// periodic trigger) invokes Sweep; keeping the clock outside the core
// avoids background-thread lifecycle concerns.
package expiry

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	sessionmetrics "stationlog/internal/session/metrics"
	"stationlog/internal/session/models"
	"stationlog/pkg/requestcontext"
)

// endConcurrency bounds parallel end-session calls during one sweep so a
// slow backend is not hammered.
const endConcurrency = 4

// Manager is the slice of the session service the scheduler drives.
type Manager interface {
	Kind() models.Kind
	ListRecent(ctx context.Context, from, to time.Time) ([]*models.Session, error)
	EndSession(ctx context.Context, sessionID, comments string) (*models.Session, error)
}

// IsExpired reports whether the session has been live at least threshold.
// The boundary is inclusive: a session exactly threshold old is expired.
func IsExpired(session *models.Session, threshold time.Duration, now time.Time) bool {
	return !now.Before(session.StartTime.Add(threshold))
}

// Scheduler sweeps expired live sessions across one or more managers.
type Scheduler struct {
	managers  []Manager
	threshold time.Duration
	lookback  time.Duration
	metrics   *sessionmetrics.Metrics
	log       *log.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithMetrics attaches prometheus metrics.
func WithMetrics(m *sessionmetrics.Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// New constructs a Scheduler. threshold is how long a session may stay
// live; lookback bounds the candidate query window.
func New(threshold, lookback time.Duration, logger *log.Logger, managers []Manager, opts ...Option) *Scheduler {
	s := &Scheduler{
		managers:  managers,
		threshold: threshold,
		lookback:  lookback,
		log:       logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Sweep ends every live session whose start time is at least the threshold
// old and returns the ids that were ended. The sweep is best-effort: a
// failure ending one session is logged and does not abort the sweep for
// the others.
func (s *Scheduler) Sweep(ctx context.Context) ([]string, error) {
	now := requestcontext.Now(ctx)
	from := now.Add(-s.lookback)

	var (
		mu    sync.Mutex
		ended []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(endConcurrency)

	for _, mgr := range s.managers {
		sessions, err := mgr.ListRecent(ctx, from, now)
		if err != nil {
			// Candidate listing for one kind failing should not
			// stop the sweep for the other kind.
			s.log.Printf("sweep: list %s sessions: %v", mgr.Kind(), err)
			continue
		}
		for _, session := range sessions {
			if !session.Live() || !IsExpired(session, s.threshold, now) {
				continue
			}
			mgr, id := mgr, session.ID
			g.Go(func() error {
				if _, err := mgr.EndSession(gctx, id, ""); err != nil {
					s.log.Printf("sweep: end session %s: %v", id, err)
					if s.metrics != nil {
						s.metrics.SweepFailures.Inc()
					}
					return nil
				}
				if s.metrics != nil {
					s.metrics.SweepEnded.Inc()
				}
				mu.Lock()
				ended = append(ended, id)
				mu.Unlock()
				return nil
			})
		}
	}

	// Workers only log failures, so Wait returns nil unless the context
	// was canceled.
	if err := g.Wait(); err != nil {
		return ended, err
	}
	return ended, nil
}
