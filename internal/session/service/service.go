// Package service implements the collaborative session lifecycle: multiple
// actors create-or-join one live session per subject, toggle memberships on
// it, and end it explicitly or via the expiry scheduler. One Service
// instance handles one session kind; both kinds share the same store.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"stationlog/internal/audit"
	sessionmetrics "stationlog/internal/session/metrics"
	"stationlog/internal/session/models"
	"stationlog/internal/session/store"
	"stationlog/pkg/platform/sentinel"
	platformstrings "stationlog/pkg/platform/strings"
	"stationlog/pkg/requestcontext"
)

var (
	// ErrNotFound is returned when a subject, session, or membership id
	// does not resolve. Partition-horizon misses in the time-partitioned
	// backend surface identically so callers cannot infer storage
	// internals.
	ErrNotFound = store.ErrNotFound

	// ErrSessionEnded is returned when a membership toggle targets a
	// session already in a terminal status.
	ErrSessionEnded = sentinel.ErrInvalidState
)

// Service orchestrates the session lifecycle for one kind.
type Service struct {
	kind      models.Kind
	store     store.Store
	recorder  *audit.Recorder
	directory Directory
	metrics   *sessionmetrics.Metrics
	log       *log.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics attaches prometheus metrics.
func WithMetrics(m *sessionmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger overrides the discard logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New constructs a Service for the given kind.
func New(kind models.Kind, st store.Store, recorder *audit.Recorder, directory Directory, opts ...Option) *Service {
	s := &Service{
		kind:      kind,
		store:     st,
		recorder:  recorder,
		directory: directory,
		log:       log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Kind returns the session kind this service manages.
func (s *Service) Kind() models.Kind { return s.kind }

// JoinResult is the outcome of CreateOrJoin.
type JoinResult struct {
	Session *models.Session
	// Joined is true when an already-live session was joined rather
	// than a new one created.
	Joined bool
}

// CreateOrJoin joins the live session for the subject when one exists,
// crediting the actor as a contributor, or creates a new live session
// otherwise. Returns ErrNotFound when subjectID is unknown to the
// directory.
//
// The read-then-write decision is not protected by a distributed lock: two
// near-simultaneous calls for one subject can both observe "no active
// session" and each create one on an eventually-consistent backend. This
// is a documented consistency gap, accepted to keep the hot path lock-free.
func (s *Service) CreateOrJoin(ctx context.Context, subjectID, actorID, actorName string) (*JoinResult, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveCreateOrJoin(start)
		}
	}()

	subject, err := s.directory.Lookup(ctx, subjectID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("subject %s: %w", subjectID, ErrNotFound)
		}
		return nil, fmt.Errorf("resolve subject: %w", err)
	}

	existing, err := s.store.GetActiveForSubject(ctx, s.kind, subjectID)
	switch {
	case err == nil:
		// Join: credit the actor without duplicating an existing name.
		existing.Contributors = platformstrings.AppendUnique(existing.Contributors, actorName)
		existing.UpdatedAt = requestcontext.Now(ctx)
		if err := s.store.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("join session: %w", err)
		}
		if s.metrics != nil {
			s.metrics.SessionsJoined.WithLabelValues(string(s.kind)).Inc()
		}
		return &JoinResult{Session: existing, Joined: true}, nil

	case errors.Is(err, ErrNotFound):
		now := requestcontext.Now(ctx)
		session := &models.Session{
			ID:           uuid.NewString(),
			Kind:         s.kind,
			SubjectID:    subject.ID,
			SubjectName:  subject.Name,
			StartTime:    now,
			Status:       s.kind.LiveStatus(),
			CreatedBy:    actorID,
			Contributors: platformstrings.AppendUnique(nil, actorName),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.store.Create(ctx, session); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		if s.metrics != nil {
			s.metrics.SessionsCreated.WithLabelValues(string(s.kind)).Inc()
		}
		return &JoinResult{Session: session, Joined: false}, nil

	default:
		return nil, fmt.Errorf("find active session: %w", err)
	}
}

// AddMembershipParams carries a membership toggle request. SubjectRefID is
// the member or checklist item; Method tags how it was recorded or the
// result status of a check item; Flagged marks a recorded issue.
type AddMembershipParams struct {
	SubjectRefID string
	NameSnapshot string
	Method       string
	Flagged      bool
	Offsite      bool
	Location     *models.Location
	Notes        string
}

// ToggleResult is the outcome of AddMembership.
type ToggleResult struct {
	Action     audit.Action
	Membership *models.Membership
}

// AddMembership toggles the membership for params.SubjectRefID on a live
// session: created when absent, removed when present. Exactly one audit
// entry is recorded on either branch.
func (s *Service) AddMembership(ctx context.Context, sessionID string, params AddMembershipParams) (*ToggleResult, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Live() {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrSessionEnded)
	}

	memberships, err := s.store.ListMemberships(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}

	actorID, _ := requestcontext.Actor(ctx)

	for _, m := range memberships {
		if m.SubjectRefID != params.SubjectRefID {
			continue
		}
		// Toggle off: the ref is already attached.
		if err := s.store.RemoveMembership(ctx, sessionID, m.ID); err != nil {
			return nil, fmt.Errorf("remove membership: %w", err)
		}
		if _, err := s.recorder.Record(ctx, audit.RecordParams{
			SessionID:    sessionID,
			Action:       audit.ActionRemoved,
			SubjectRefID: m.SubjectRefID,
			MembershipID: m.ID,
			PerformedBy:  actorID,
			Location:     params.Location,
			Notes:        params.Notes,
		}); err != nil {
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.MembershipToggles.WithLabelValues(string(s.kind), string(audit.ActionRemoved)).Inc()
		}
		return &ToggleResult{Action: audit.ActionRemoved, Membership: m}, nil
	}

	now := requestcontext.Now(ctx)
	membership := &models.Membership{
		ID:           uuid.NewString(),
		SessionID:    sessionID,
		SubjectRefID: params.SubjectRefID,
		NameSnapshot: params.NameSnapshot,
		JoinTime:     now,
		Method:       params.Method,
		Flagged:      params.Flagged,
		Offsite:      params.Offsite,
		CreatedAt:    now,
	}
	if params.Location != nil {
		loc := *params.Location
		membership.Location = &loc
	}
	if err := s.store.CreateMembership(ctx, membership); err != nil {
		return nil, fmt.Errorf("create membership: %w", err)
	}
	if _, err := s.recorder.Record(ctx, audit.RecordParams{
		SessionID:    sessionID,
		Action:       audit.ActionAdded,
		SubjectRefID: membership.SubjectRefID,
		MembershipID: membership.ID,
		PerformedBy:  actorID,
		Location:     params.Location,
		Notes:        params.Notes,
	}); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.MembershipToggles.WithLabelValues(string(s.kind), string(audit.ActionAdded)).Inc()
	}
	return &ToggleResult{Action: audit.ActionAdded, Membership: membership}, nil
}

// RemoveMembership removes the membership if present and reports whether a
// record was removed. One audit entry is recorded either way; the removal
// attempt is part of the trail.
func (s *Service) RemoveMembership(ctx context.Context, sessionID, membershipID, performedBy, notes string) (bool, error) {
	if _, err := s.getSession(ctx, sessionID); err != nil {
		return false, err
	}

	if performedBy == "" {
		performedBy, _ = requestcontext.Actor(ctx)
	}

	removed := true
	var subjectRefID string
	memberships, err := s.store.ListMemberships(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("list memberships: %w", err)
	}
	for _, m := range memberships {
		if m.ID == membershipID {
			subjectRefID = m.SubjectRefID
		}
	}

	if err := s.store.RemoveMembership(ctx, sessionID, membershipID); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return false, fmt.Errorf("remove membership: %w", err)
		}
		s.log.Printf("remove membership %s on session %s: already absent", membershipID, sessionID)
		removed = false
	}

	if _, err := s.recorder.Record(ctx, audit.RecordParams{
		SessionID:    sessionID,
		Action:       audit.ActionRemoved,
		SubjectRefID: subjectRefID,
		MembershipID: membershipID,
		PerformedBy:  performedBy,
		Notes:        notes,
	}); err != nil {
		return removed, err
	}
	return removed, nil
}

// EndSession moves the session to its terminal status, stamps the end time,
// and recomputes HasFlag from current memberships. Ending an already-ended
// session is a successful no-op; only an unknown id returns ErrNotFound.
func (s *Service) EndSession(ctx context.Context, sessionID, comments string) (*models.Session, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Live() {
		return session, nil
	}

	memberships, err := s.store.ListMemberships(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	hasFlag := false
	for _, m := range memberships {
		if m.Flagged {
			hasFlag = true
			break
		}
	}

	now := requestcontext.Now(ctx)
	session.Status = s.kind.TerminalStatus()
	session.EndTime = &now
	session.HasFlag = hasFlag
	if comments != "" {
		session.Comments = comments
	}
	session.UpdatedAt = now

	if err := s.store.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("end session: %w", err)
	}
	if s.metrics != nil {
		s.metrics.SessionsEnded.WithLabelValues(string(s.kind)).Inc()
	}
	return session, nil
}

// Trail is the audit view of one session.
type Trail struct {
	Entries []*audit.Entry
	Total   int
}

// GetAuditTrail returns the session's audit entries ordered by timestamp
// ascending. Returns ErrNotFound when sessionID is unknown.
func (s *Service) GetAuditTrail(ctx context.Context, sessionID string) (*Trail, error) {
	if _, err := s.getSession(ctx, sessionID); err != nil {
		return nil, err
	}
	entries, err := s.recorder.Trail(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("audit trail: %w", err)
	}
	return &Trail{Entries: entries, Total: len(entries)}, nil
}

// ListRecent returns sessions started within [from, to]. The expiry
// scheduler uses it to find sweep candidates.
func (s *Service) ListRecent(ctx context.Context, from, to time.Time) ([]*models.Session, error) {
	return s.store.ListByTimeRange(ctx, s.kind, from, to)
}

func (s *Service) getSession(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.store.GetByID(ctx, s.kind, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}
