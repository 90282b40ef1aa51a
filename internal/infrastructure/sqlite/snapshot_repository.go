package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zjrosen/breathe/internal/session"
	"github.com/zjrosen/breathe/internal/sessions/domain"
)

const snapshotColumns = `session_id, saved_at, interrupted_at, cause, state`

// snapshotRepository implements domain.SnapshotRepository using SQLite.
type snapshotRepository struct {
	db *sql.DB
}

func newSnapshotRepository(db *sql.DB) *snapshotRepository {
	return &snapshotRepository{db: db}
}

// Ensure snapshotRepository implements domain.SnapshotRepository.
var _ domain.SnapshotRepository = (*snapshotRepository)(nil)

func scanSnapshot(scanner interface{ Scan(...any) error }) (*SnapshotModel, error) {
	var model SnapshotModel
	err := scanner.Scan(
		&model.SessionID, &model.SavedAt, &model.InterruptedAt, &model.Cause, &model.State,
	)
	return &model, err
}

// SaveSnapshot persists a snapshot, replacing any previous one for the
// same session.
func (r *snapshotRepository) SaveSnapshot(ctx context.Context, snapshot *session.RecoverySnapshot) error {
	model, err := toSnapshotModel(snapshot)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO snapshots (`+snapshotColumns+`) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			saved_at = excluded.saved_at,
			interrupted_at = excluded.interrupted_at,
			cause = excluded.cause,
			state = excluded.state`,
		model.SessionID, model.SavedAt, model.InterruptedAt, model.Cause, model.State,
	)
	if err != nil {
		return fmt.Errorf("saving recovery snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot retrieves the snapshot for a session.
func (r *snapshotRepository) LoadSnapshot(ctx context.Context, sessionID string) (*session.RecoverySnapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots WHERE session_id = ?`, sessionID)
	model, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.SnapshotNotFoundError{SessionID: sessionID}
	}
	if err != nil {
		return nil, fmt.Errorf("loading recovery snapshot: %w", err)
	}
	return model.toDomain()
}

// LatestSnapshot retrieves the most recently saved snapshot.
func (r *snapshotRepository) LatestSnapshot(ctx context.Context) (*session.RecoverySnapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots ORDER BY saved_at DESC LIMIT 1`)
	model, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.SnapshotNotFoundError{}
	}
	if err != nil {
		return nil, fmt.Errorf("loading latest recovery snapshot: %w", err)
	}
	return model.toDomain()
}

// ClearSnapshot removes the snapshot for a session. Clearing a session
// with no snapshot is a no-op.
func (r *snapshotRepository) ClearSnapshot(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("clearing recovery snapshot: %w", err)
	}
	return nil
}
