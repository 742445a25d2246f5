package store

import (
	"fmt"
	"time"

	"stationlog/internal/session/models"
)

// SessionPartition derives the time bucket a session row lives in:
// "{kind}_{YYYY-MM}" from the session's start time in UTC. The start time
// is immutable, so a session's partition never moves.
func SessionPartition(kind models.Kind, startTime time.Time) string {
	return fmt.Sprintf("%s_%s", kind, startTime.UTC().Format("2006-01"))
}

// MembershipPartition derives the co-location key for membership rows: the
// owning session id. Fetching "all memberships of session X" is a single
// partition read regardless of backend.
func MembershipPartition(sessionID string) string {
	return sessionID
}

// ProbePartitions returns the partitions to probe for point and range
// lookups, newest month first, bounded by months. A lookup for an id whose
// start month is older than the horizon misses every probe and surfaces as
// not found.
func ProbePartitions(kind models.Kind, now time.Time, months int) []string {
	if months < 1 {
		months = 1
	}
	out := make([]string, 0, months)
	year, month, _ := now.UTC().Date()
	cursor := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < months; i++ {
		out = append(out, SessionPartition(kind, cursor))
		cursor = cursor.AddDate(0, -1, 0)
	}
	return out
}
