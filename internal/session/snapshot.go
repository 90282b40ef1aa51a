package session

import "time"

// RecoverySnapshot is the persisted capture of an interrupted session.
// Field names are stable identifiers: the snapshot round-trips through
// storage and must restore a State deep-equal to the one interrupted.
type RecoverySnapshot struct {
	// SessionID identifies the session the snapshot belongs to.
	SessionID string `json:"session_id"`

	// SavedAt is when the snapshot was written.
	SavedAt time.Time `json:"saved_at"`

	// InterruptedAt is when the interruption occurred. Snapshot expiry
	// is measured from this timestamp.
	InterruptedAt time.Time `json:"interrupted_at"`

	// Cause is the interruption cause recorded at save time.
	Cause Cause `json:"cause"`

	// State is the active state captured at interruption, either a
	// breathing or a holding state, never interrupted.
	State State `json:"state"`
}

// Age returns the elapsed time since the interruption, as observed at now.
func (s *RecoverySnapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.InterruptedAt)
}

// Expired reports whether the snapshot is older than the recovery window.
func (s *RecoverySnapshot) Expired(now time.Time, window time.Duration) bool {
	return s.Age(now) > window
}
