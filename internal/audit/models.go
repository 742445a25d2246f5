// Package audit records every membership change as an append-only log
// entry with device and location capture. Entries are never mutated or
// deleted once written, even when the underlying membership is removed;
// the trail is the compliance record of who changed what, from where.
package audit

import (
	"time"

	"stationlog/internal/session/models"
	"stationlog/pkg/platform/sentinel"
)

// ErrNotFound mirrors the storage sentinel for callers of this package.
var ErrNotFound = sentinel.ErrNotFound

// Action classifies a membership change.
type Action string

const (
	ActionAdded   Action = "added"
	ActionRemoved Action = "removed"
)

// DeviceType is the coarse device classification derived from the raw
// user-agent string.
type DeviceType string

const (
	DeviceTablet  DeviceType = "tablet"
	DeviceMobile  DeviceType = "mobile"
	DeviceKiosk   DeviceType = "kiosk"
	DeviceDesktop DeviceType = "desktop"
)

// DeviceInfo captures where a change came from.
type DeviceInfo struct {
	Type DeviceType
	// DisplayName is a human-readable "Browser on OS" summary for
	// station logbooks; best effort, may be empty.
	DisplayName string
	UserAgent   string
}

// Entry is one immutable audit record. Exactly one entry is written per
// membership change, on both the add and the remove branch of a toggle.
type Entry struct {
	ID           string
	SessionID    string
	Action       Action
	SubjectRefID string
	MembershipID string
	PerformedBy  string
	Timestamp    time.Time
	Device       DeviceInfo
	Location     *models.Location
	// Notes is sanitized input: control bytes stripped, at most 500
	// characters.
	Notes string
}

// Clone returns a copy so callers never alias store-owned entries.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	out := *e
	if e.Location != nil {
		loc := *e.Location
		out.Location = &loc
	}
	return &out
}
