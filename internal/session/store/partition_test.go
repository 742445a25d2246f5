package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stationlog/internal/session/models"
)

func TestSessionPartition(t *testing.T) {
	tests := []struct {
		name     string
		kind     models.Kind
		start    time.Time
		expected string
	}{
		{
			name:     "event bucketed by start month",
			kind:     models.KindEvent,
			start:    time.Date(2026, time.August, 14, 19, 30, 0, 0, time.UTC),
			expected: "event_2026-08",
		},
		{
			name:     "checkrun bucketed by start month",
			kind:     models.KindCheckRun,
			start:    time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			expected: "checkrun_2025-01",
		},
		{
			name:     "start time normalized to UTC",
			kind:     models.KindEvent,
			start:    time.Date(2026, time.September, 1, 1, 0, 0, 0, time.FixedZone("CEST", 2*3600)),
			expected: "event_2026-08",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SessionPartition(tt.kind, tt.start))
		})
	}
}

func TestMembershipPartition(t *testing.T) {
	assert.Equal(t, "sess-123", MembershipPartition("sess-123"))
}

func TestProbePartitions(t *testing.T) {
	now := time.Date(2026, time.August, 26, 12, 0, 0, 0, time.UTC)

	t.Run("newest month first, bounded by horizon", func(t *testing.T) {
		got := ProbePartitions(models.KindEvent, now, 3)
		assert.Equal(t, []string{"event_2026-08", "event_2026-07", "event_2026-06"}, got)
	})

	t.Run("crosses year boundary", func(t *testing.T) {
		jan := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
		got := ProbePartitions(models.KindCheckRun, jan, 3)
		assert.Equal(t, []string{"checkrun_2026-01", "checkrun_2025-12", "checkrun_2025-11"}, got)
	})

	t.Run("horizon of less than one month probes current month", func(t *testing.T) {
		got := ProbePartitions(models.KindEvent, now, 0)
		assert.Equal(t, []string{"event_2026-08"}, got)
	})
}
