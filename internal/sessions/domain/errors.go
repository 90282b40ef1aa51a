package domain

import "fmt"

// RecordNotFoundError indicates no session record exists for an id.
type RecordNotFoundError struct {
	ID string
}

func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("session record not found: %s", e.ID)
}

// SnapshotNotFoundError indicates no recovery snapshot exists for a
// session. Callers treat this as "no recoverable session", not a fault.
type SnapshotNotFoundError struct {
	SessionID string
}

func (e *SnapshotNotFoundError) Error() string {
	if e.SessionID == "" {
		return "no recovery snapshot found"
	}
	return fmt.Sprintf("no recovery snapshot for session: %s", e.SessionID)
}

// PreconditionError signals a programming-contract violation, such as
// resuming a session that is not interrupted. The callee's state is
// left unchanged.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: precondition failed: %s", e.Op, e.Reason)
}
