package domain

import (
	"context"

	"github.com/zjrosen/breathe/internal/session"
)

// RecordRepository defines the persistence interface for session Records.
// Implementations may use SQLite, in-memory storage, or other backends.
type RecordRepository interface {
	// Save persists a record. Existing records with the same id are
	// replaced; records are written once completed and never mutated
	// in storage afterwards.
	Save(ctx context.Context, record *Record) error

	// FindByID retrieves a record by its id.
	// Returns RecordNotFoundError if no matching record exists.
	FindByID(ctx context.Context, id string) (*Record, error)

	// List retrieves all records ordered by started_at descending
	// (newest first).
	List(ctx context.Context) ([]*Record, error)

	// Delete removes a record by its id.
	// Returns RecordNotFoundError if no matching record exists.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the repository.
	Close() error
}

// SnapshotRepository defines the persistence interface for recovery
// snapshots. At most one snapshot exists per session; saving replaces
// any previous snapshot for the same session.
type SnapshotRepository interface {
	// SaveSnapshot persists a snapshot, replacing any existing one for
	// the same session id.
	SaveSnapshot(ctx context.Context, snapshot *session.RecoverySnapshot) error

	// LoadSnapshot retrieves the snapshot for a session.
	// Returns SnapshotNotFoundError if none exists. Expiry is not
	// evaluated here; the recovery manager applies the window at read
	// time.
	LoadSnapshot(ctx context.Context, sessionID string) (*session.RecoverySnapshot, error)

	// ClearSnapshot removes the snapshot for a session. Clearing a
	// session with no snapshot is a no-op.
	ClearSnapshot(ctx context.Context, sessionID string) error

	// LatestSnapshot retrieves the most recently saved snapshot across
	// all sessions, for the relaunch recovery prompt.
	// Returns SnapshotNotFoundError if none exists.
	LatestSnapshot(ctx context.Context) (*session.RecoverySnapshot, error)
}
