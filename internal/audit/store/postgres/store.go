// Package postgres provides the durable audit store. Entries carry
// compliance weight, so deployments that can run Postgres keep them here
// rather than in the session backend.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	// Register the postgres driver for database/sql.
	_ "github.com/lib/pq"

	"stationlog/internal/audit"
	"stationlog/internal/session/models"
)

// Schema creates the audit table. The bigserial seq column preserves
// insertion order for entries sharing a timestamp.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_entries (
	seq            BIGSERIAL PRIMARY KEY,
	id             UUID NOT NULL UNIQUE,
	session_id     TEXT NOT NULL,
	action         TEXT NOT NULL,
	subject_ref_id TEXT NOT NULL,
	membership_id  TEXT NOT NULL,
	performed_by   TEXT NOT NULL DEFAULT '',
	occurred_at    TIMESTAMPTZ NOT NULL,
	device_type    TEXT NOT NULL,
	device_name    TEXT NOT NULL DEFAULT '',
	user_agent     TEXT NOT NULL DEFAULT '',
	location       JSONB,
	notes          TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS audit_entries_session_idx
	ON audit_entries (session_id, occurred_at, seq);
`

// Store implements audit.Store on PostgreSQL. There is no UPDATE or DELETE
// statement in this package; the log is append-only by construction.
type Store struct {
	db *sql.DB
}

var _ audit.Store = (*Store)(nil)

// New creates a PostgreSQL-backed audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects via DSN and applies the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply audit schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Append(ctx context.Context, entry *audit.Entry) error {
	var location []byte
	if entry.Location != nil {
		var err error
		location, err = json.Marshal(locationPayload{
			Latitude:  entry.Location.Latitude,
			Longitude: entry.Location.Longitude,
			Accuracy:  entry.Location.Accuracy,
			Address:   entry.Location.Address,
		})
		if err != nil {
			return fmt.Errorf("marshal location: %w", err)
		}
	}

	query := `
		INSERT INTO audit_entries (
			id, session_id, action, subject_ref_id, membership_id,
			performed_by, occurred_at, device_type, device_name,
			user_agent, location, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.SessionID,
		string(entry.Action),
		entry.SubjectRefID,
		entry.MembershipID,
		entry.PerformedBy,
		entry.Timestamp,
		string(entry.Device.Type),
		entry.Device.DisplayName,
		entry.Device.UserAgent,
		nullableJSON(location),
		entry.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]*audit.Entry, error) {
	query := `
		SELECT id, session_id, action, subject_ref_id, membership_id,
		       performed_by, occurred_at, device_type, device_name,
		       user_agent, location, notes
		FROM audit_entries
		WHERE session_id = $1
		ORDER BY occurred_at ASC, seq ASC
	`
	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []*audit.Entry
	for rows.Next() {
		var (
			entry    audit.Entry
			action   string
			devType  string
			location []byte
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.SessionID,
			&action,
			&entry.SubjectRefID,
			&entry.MembershipID,
			&entry.PerformedBy,
			&entry.Timestamp,
			&devType,
			&entry.Device.DisplayName,
			&entry.Device.UserAgent,
			&location,
			&entry.Notes,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry.Action = audit.Action(action)
		entry.Device.Type = audit.DeviceType(devType)
		if len(location) > 0 {
			var payload locationPayload
			if err := json.Unmarshal(location, &payload); err != nil {
				return nil, fmt.Errorf("decode location: %w", err)
			}
			entry.Location = &models.Location{
				Latitude:  payload.Latitude,
				Longitude: payload.Longitude,
				Accuracy:  payload.Accuracy,
				Address:   payload.Address,
			}
		}
		out = append(out, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return out, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

type locationPayload struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"long"`
	Accuracy  float64 `json:"accuracy"`
	Address   string  `json:"address,omitempty"`
}

func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
