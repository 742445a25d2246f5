package redis

import (
	"encoding/json"
	"fmt"
	"time"

	"stationlog/internal/session/models"
)

// sessionRow is the JSON wire shape of a session hash value. Field names
// are part of the persisted layout; do not rename without a migration.
type sessionRow struct {
	ID           string     `json:"id"`
	Kind         string     `json:"kind"`
	SubjectID    string     `json:"subject_id"`
	SubjectName  string     `json:"subject_name"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	Status       string     `json:"status"`
	CreatedBy    string     `json:"created_by"`
	Contributors []string   `json:"contributors"`
	HasFlag      bool       `json:"has_flag"`
	Comments     string     `json:"comments,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type locationRow struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"long"`
	Accuracy  float64 `json:"accuracy"`
	Address   string  `json:"address,omitempty"`
}

type membershipRow struct {
	ID           string       `json:"id"`
	SessionID    string       `json:"session_id"`
	SubjectRefID string       `json:"subject_ref_id"`
	NameSnapshot string       `json:"name_snapshot"`
	JoinTime     time.Time    `json:"join_time"`
	Method       string       `json:"method"`
	Flagged      bool         `json:"flagged"`
	Offsite      bool         `json:"offsite"`
	Location     *locationRow `json:"location,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

func sessionRowFrom(s *models.Session) sessionRow {
	return sessionRow{
		ID:           s.ID,
		Kind:         string(s.Kind),
		SubjectID:    s.SubjectID,
		SubjectName:  s.SubjectName,
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		Status:       string(s.Status),
		CreatedBy:    s.CreatedBy,
		Contributors: s.Contributors,
		HasFlag:      s.HasFlag,
		Comments:     s.Comments,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func (r sessionRow) toSession() *models.Session {
	return &models.Session{
		ID:           r.ID,
		Kind:         models.Kind(r.Kind),
		SubjectID:    r.SubjectID,
		SubjectName:  r.SubjectName,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		Status:       models.Status(r.Status),
		CreatedBy:    r.CreatedBy,
		Contributors: r.Contributors,
		HasFlag:      r.HasFlag,
		Comments:     r.Comments,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func membershipRowFrom(m *models.Membership) membershipRow {
	row := membershipRow{
		ID:           m.ID,
		SessionID:    m.SessionID,
		SubjectRefID: m.SubjectRefID,
		NameSnapshot: m.NameSnapshot,
		JoinTime:     m.JoinTime,
		Method:       m.Method,
		Flagged:      m.Flagged,
		Offsite:      m.Offsite,
		CreatedAt:    m.CreatedAt,
	}
	if m.Location != nil {
		row.Location = &locationRow{
			Latitude:  m.Location.Latitude,
			Longitude: m.Location.Longitude,
			Accuracy:  m.Location.Accuracy,
			Address:   m.Location.Address,
		}
	}
	return row
}

func (r membershipRow) toMembership() *models.Membership {
	m := &models.Membership{
		ID:           r.ID,
		SessionID:    r.SessionID,
		SubjectRefID: r.SubjectRefID,
		NameSnapshot: r.NameSnapshot,
		JoinTime:     r.JoinTime,
		Method:       r.Method,
		Flagged:      r.Flagged,
		Offsite:      r.Offsite,
		CreatedAt:    r.CreatedAt,
	}
	if r.Location != nil {
		m.Location = &models.Location{
			Latitude:  r.Location.Latitude,
			Longitude: r.Location.Longitude,
			Accuracy:  r.Location.Accuracy,
			Address:   r.Location.Address,
		}
	}
	return m
}

func decodeSession(raw string) (*models.Session, error) {
	var row sessionRow
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		return nil, fmt.Errorf("decode session row: %w", err)
	}
	return row.toSession(), nil
}

func decodeMembership(raw string) (*models.Membership, error) {
	var row membershipRow
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		return nil, fmt.Errorf("decode membership row: %w", err)
	}
	return row.toMembership(), nil
}
