package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zjrosen/breathe/internal/session"
	"github.com/zjrosen/breathe/internal/sessions/domain"
)

// RecordModel represents the database row for the sessions table.
// Timestamps are stored as Unix milliseconds.
type RecordModel struct {
	ID                  string
	StartedAt           int64
	CompletedAt         *int64 // nullable
	HoldDurationSeconds float64
	PreparationRounds   int
	ProtocolType        string
}

// toRecordModel converts a domain Record to a database RecordModel.
func toRecordModel(r *domain.Record) *RecordModel {
	m := &RecordModel{
		ID:                  r.ID(),
		StartedAt:           r.StartedAt().UnixMilli(),
		HoldDurationSeconds: r.HoldDurationSeconds(),
		PreparationRounds:   r.PreparationRounds(),
		ProtocolType:        r.ProtocolType(),
	}
	if at := r.CompletedAt(); at != nil {
		ms := at.UnixMilli()
		m.CompletedAt = &ms
	}
	return m
}

// toDomain converts a RecordModel back to a domain Record, re-applying
// the sanitization rules.
func (m *RecordModel) toDomain() *domain.Record {
	var completedAt *time.Time
	if m.CompletedAt != nil {
		at := time.UnixMilli(*m.CompletedAt)
		completedAt = &at
	}
	return domain.ReconstituteRecord(
		m.ID,
		time.UnixMilli(m.StartedAt),
		completedAt,
		m.HoldDurationSeconds,
		m.PreparationRounds,
		m.ProtocolType,
	)
}

// SnapshotModel represents the database row for the snapshots table.
// The captured session state is stored as a JSON document with stable
// field names.
type SnapshotModel struct {
	SessionID     string
	SavedAt       int64
	InterruptedAt int64
	Cause         string
	State         string
}

// toSnapshotModel converts a recovery snapshot to its database row.
func toSnapshotModel(s *session.RecoverySnapshot) (*SnapshotModel, error) {
	state, err := json.Marshal(s.State)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot state: %w", err)
	}
	return &SnapshotModel{
		SessionID:     s.SessionID,
		SavedAt:       s.SavedAt.UnixMilli(),
		InterruptedAt: s.InterruptedAt.UnixMilli(),
		Cause:         string(s.Cause),
		State:         string(state),
	}, nil
}

// toDomain converts a SnapshotModel back to a recovery snapshot.
func (m *SnapshotModel) toDomain() (*session.RecoverySnapshot, error) {
	var state session.State
	if err := json.Unmarshal([]byte(m.State), &state); err != nil {
		return nil, fmt.Errorf("decoding snapshot state: %w", err)
	}
	return &session.RecoverySnapshot{
		SessionID:     m.SessionID,
		SavedAt:       time.UnixMilli(m.SavedAt),
		InterruptedAt: time.UnixMilli(m.InterruptedAt),
		Cause:         session.Cause(m.Cause),
		State:         state,
	}, nil
}
