package mongo

import (
	"time"

	"stationlog/internal/session/models"
)

// sessionDoc is the persisted document shape. Field names are part of the
// stored layout; do not rename without a migration.
type sessionDoc struct {
	SessionID    string     `bson:"session_id"`
	Kind         string     `bson:"kind"`
	SubjectID    string     `bson:"subject_id"`
	SubjectName  string     `bson:"subject_name"`
	StartTime    time.Time  `bson:"start_time"`
	EndTime      *time.Time `bson:"end_time,omitempty"`
	Status       string     `bson:"status"`
	CreatedBy    string     `bson:"created_by"`
	Contributors []string   `bson:"contributors"`
	HasFlag      bool       `bson:"has_flag"`
	Comments     string     `bson:"comments,omitempty"`
	CreatedAt    time.Time  `bson:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at"`
}

type locationDoc struct {
	Latitude  float64 `bson:"lat"`
	Longitude float64 `bson:"long"`
	Accuracy  float64 `bson:"accuracy"`
	Address   string  `bson:"address,omitempty"`
}

type membershipDoc struct {
	MembershipID string       `bson:"membership_id"`
	SessionID    string       `bson:"session_id"`
	SubjectRefID string       `bson:"subject_ref_id"`
	NameSnapshot string       `bson:"name_snapshot"`
	JoinTime     time.Time    `bson:"join_time"`
	Method       string       `bson:"method"`
	Flagged      bool         `bson:"flagged"`
	Offsite      bool         `bson:"offsite"`
	Location     *locationDoc `bson:"location,omitempty"`
	CreatedAt    time.Time    `bson:"created_at"`
}

func sessionDocFrom(s *models.Session) sessionDoc {
	return sessionDoc{
		SessionID:    s.ID,
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

func (d sessionDoc) toSession() *models.Session {
	return &models.Session{
		ID:           d.SessionID,
		Kind:         models.Kind(d.Kind),
		SubjectID:    d.SubjectID,
		SubjectName:  d.SubjectName,
		StartTime:    d.StartTime,
		EndTime:      d.EndTime,
		Status:       models.Status(d.Status),
		CreatedBy:    d.CreatedBy,
		Contributors: d.Contributors,
		HasFlag:      d.HasFlag,
		Comments:     d.Comments,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func membershipDocFrom(m *models.Membership) membershipDoc {
	doc := membershipDoc{
		MembershipID: m.ID,
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
		doc.Location = &locationDoc{
			Latitude:  m.Location.Latitude,
			Longitude: m.Location.Longitude,
			Accuracy:  m.Location.Accuracy,
			Address:   m.Location.Address,
		}
	}
	return doc
}

func (d membershipDoc) toMembership() *models.Membership {
	m := &models.Membership{
		ID:           d.MembershipID,
		SessionID:    d.SessionID,
		SubjectRefID: d.SubjectRefID,
		NameSnapshot: d.NameSnapshot,
		JoinTime:     d.JoinTime,
		Method:       d.Method,
		Flagged:      d.Flagged,
		Offsite:      d.Offsite,
		CreatedAt:    d.CreatedAt,
	}
	if d.Location != nil {
		m.Location = &models.Location{
			Latitude:  d.Location.Latitude,
			Longitude: d.Location.Longitude,
			Accuracy:  d.Location.Accuracy,
			Address:   d.Location.Address,
		}
	}
	return m
}
