// Package models defines the session domain records shared by all store
// backends. The store owns every record; accessors hand out copies so
// concurrent requests never share mutable state.
package models

import (
	"fmt"
	"time"
)

// Kind distinguishes the two session surfaces built on the same lifecycle:
// attendance events and vehicle check runs.
type Kind string

const (
	KindEvent    Kind = "event"
	KindCheckRun Kind = "checkrun"
)

// Status is the lifecycle state of a session. Events move active -> ended,
// check runs move in-progress -> completed. Exactly one live and one
// terminal status exists per kind.
type Status string

const (
	StatusActive     Status = "active"
	StatusEnded      Status = "ended"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// LiveStatus returns the initial live status for the kind. Unknown kinds are
// a programmer error and panic rather than being coerced.
func (k Kind) LiveStatus() Status {
	switch k {
	case KindEvent:
		return StatusActive
	case KindCheckRun:
		return StatusInProgress
	}
	panic(fmt.Sprintf("models: unknown session kind %q", k))
}

// TerminalStatus returns the terminal status for the kind.
func (k Kind) TerminalStatus() Status {
	switch k {
	case KindEvent:
		return StatusEnded
	case KindCheckRun:
		return StatusCompleted
	}
	panic(fmt.Sprintf("models: unknown session kind %q", k))
}

// Live reports whether the status is a live one. Malformed statuses are a
// programmer error and panic.
func (s Status) Live() bool {
	switch s {
	case StatusActive, StatusInProgress:
		return true
	case StatusEnded, StatusCompleted:
		return false
	}
	panic(fmt.Sprintf("models: unknown session status %q", s))
}

// Session is a collaborative activity instance: an attendance event for an
// activity type, or a check run for an equipment asset. Multiple actors may
// create-or-join the same live session for one subject.
type Session struct {
	ID          string
	Kind        Kind
	SubjectID   string
	SubjectName string
	StartTime   time.Time
	EndTime     *time.Time
	Status      Status
	CreatedBy   string
	// Contributors is an ordered set of display names, case-preserving,
	// no duplicates. Tracked at the session level independent of
	// membership records.
	Contributors []string
	// HasFlag marks that at least one flagged membership (e.g. a check
	// item with an issue) was present when the session ended.
	HasFlag   bool
	Comments  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Live reports whether the session is still accepting memberships.
func (s *Session) Live() bool {
	return s.Status.Live()
}

// Clone returns a deep copy so callers never alias store-owned state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Contributors = append([]string(nil), s.Contributors...)
	if s.EndTime != nil {
		t := *s.EndTime
		out.EndTime = &t
	}
	return &out
}

// Location is an optional geolocation payload supplied by the caller.
type Location struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
	Address   string
}

// Membership attaches a member or checklist item to a session: a
// participant on an event, or a check result on a check run. Within one
// live session a subjectRefID has at most one live membership.
type Membership struct {
	ID           string
	SessionID    string
	SubjectRefID string
	NameSnapshot string
	JoinTime     time.Time
	// Method tags how the membership was recorded (e.g. "manual",
	// "kiosk") or the result status of a check item.
	Method string
	// Flagged marks an issue recorded against this entry; it feeds the
	// owning session's HasFlag on end.
	Flagged   bool
	Offsite   bool
	Location  *Location
	CreatedAt time.Time
}

// Clone returns a deep copy so callers never alias store-owned state.
func (m *Membership) Clone() *Membership {
	if m == nil {
		return nil
	}
	out := *m
	if m.Location != nil {
		loc := *m.Location
		out.Location = &loc
	}
	return &out
}
