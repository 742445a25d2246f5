package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"stationlog/internal/session/models"
	"stationlog/pkg/requestcontext"
)

// Store persists audit entries. Append-only: implementations must never
// expose mutation or deletion of written entries.
type Store interface {
	// Append persists one entry.
	Append(ctx context.Context, entry *Entry) error

	// ListBySession returns a session's entries ordered by timestamp
	// ascending, stable by insertion order for equal timestamps.
	ListBySession(ctx context.Context, sessionID string) ([]*Entry, error)
}

// RecordParams carries one membership change into the recorder. The raw
// user agent and request time are read from the context, where the
// excluded HTTP layer places them.
type RecordParams struct {
	SessionID    string
	Action       Action
	SubjectRefID string
	MembershipID string
	PerformedBy  string
	Location     *models.Location
	Notes        string
}

// Recorder builds sanitized audit entries and appends them in call order.
type Recorder struct {
	store Store
}

// NewRecorder constructs a Recorder over the given store.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Record sanitizes, classifies, and appends exactly one entry.
func (r *Recorder) Record(ctx context.Context, params RecordParams) (*Entry, error) {
	entry := &Entry{
		ID:           uuid.NewString(),
		SessionID:    params.SessionID,
		Action:       params.Action,
		SubjectRefID: params.SubjectRefID,
		MembershipID: params.MembershipID,
		PerformedBy:  params.PerformedBy,
		Timestamp:    requestcontext.Now(ctx),
		Device:       DescribeDevice(requestcontext.UserAgent(ctx)),
		Notes:        SanitizeNotes(params.Notes),
	}
	if params.Location != nil {
		loc := *params.Location
		entry.Location = &loc
	}
	if err := r.store.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append audit entry: %w", err)
	}
	return entry, nil
}

// Trail returns a session's audit entries, oldest first.
func (r *Recorder) Trail(ctx context.Context, sessionID string) ([]*Entry, error) {
	return r.store.ListBySession(ctx, sessionID)
}
