package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zjrosen/breathe/internal/sessions/domain"
)

const recordColumns = `id, started_at, completed_at, hold_duration_seconds, preparation_rounds, protocol_type`

// recordRepository implements domain.RecordRepository using SQLite.
type recordRepository struct {
	db *sql.DB
}

func newRecordRepository(db *sql.DB) *recordRepository {
	return &recordRepository{db: db}
}

// Ensure recordRepository implements domain.RecordRepository.
var _ domain.RecordRepository = (*recordRepository)(nil)

// scanRecord scans a row into a RecordModel.
func scanRecord(scanner interface{ Scan(...any) error }) (*RecordModel, error) {
	var model RecordModel
	err := scanner.Scan(
		&model.ID, &model.StartedAt, &model.CompletedAt,
		&model.HoldDurationSeconds, &model.PreparationRounds, &model.ProtocolType,
	)
	return &model, err
}

// Save persists a record, replacing any existing row with the same id.
func (r *recordRepository) Save(ctx context.Context, record *domain.Record) error {
	model := toRecordModel(record)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			completed_at = excluded.completed_at,
			hold_duration_seconds = excluded.hold_duration_seconds,
			preparation_rounds = excluded.preparation_rounds,
			protocol_type = excluded.protocol_type`,
		model.ID, model.StartedAt, model.CompletedAt,
		model.HoldDurationSeconds, model.PreparationRounds, model.ProtocolType,
	)
	if err != nil {
		return fmt.Errorf("saving session record: %w", err)
	}
	return nil
}

// FindByID retrieves a record by its id.
func (r *recordRepository) FindByID(ctx context.Context, id string) (*domain.Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM sessions WHERE id = ?`, id)
	model, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.RecordNotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("finding session record: %w", err)
	}
	return model.toDomain(), nil
}

// List retrieves all records, newest first.
func (r *recordRepository) List(ctx context.Context) ([]*domain.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing session records: %w", err)
	}
	defer rows.Close()

	var records []*domain.Record
	for rows.Next() {
		model, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session record: %w", err)
		}
		records = append(records, model.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating session records: %w", err)
	}
	return records, nil
}

// Delete removes a record by its id.
func (r *recordRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting session record: %w", err)
	}
	if affected == 0 {
		return &domain.RecordNotFoundError{ID: id}
	}
	return nil
}

// Close is a no-op; the shared connection is owned by DB.
func (r *recordRepository) Close() error {
	return nil
}
