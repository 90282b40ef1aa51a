package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/breathe/internal/sessions/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "breathe.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRecordRepository_SaveAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := db.Records()

	started := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	record := domain.NewRecord("rec-1", started, "box-4-4-4-4", started)
	record.Complete(62.3, 4, started.Add(2*time.Minute))

	require.NoError(t, repo.Save(t.Context(), record))

	found, err := repo.FindByID(t.Context(), "rec-1")
	require.NoError(t, err)
	require.Equal(t, "rec-1", found.ID())
	require.Equal(t, started.UnixMilli(), found.StartedAt().UnixMilli())
	require.Equal(t, 62.3, found.HoldDurationSeconds())
	require.Equal(t, 4, found.PreparationRounds())
	require.Equal(t, "box-4-4-4-4", found.ProtocolType())
	require.True(t, found.IsCompleted())
	require.Equal(t, started.Add(2*time.Minute).UnixMilli(), found.CompletedAt().UnixMilli())
}

func TestRecordRepository_FindMissing(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Records().FindByID(t.Context(), "nope")
	var notFound *domain.RecordNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "nope", notFound.ID)
}

func TestRecordRepository_SaveUpserts(t *testing.T) {
	db := newTestDB(t)
	repo := db.Records()

	started := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	record := domain.NewRecord("rec-1", started, "box-4-4-4-4", started)
	require.NoError(t, repo.Save(t.Context(), record))

	// Saving again after completion overwrites the row, not duplicates it.
	record.Complete(30, 4, started.Add(time.Minute))
	require.NoError(t, repo.Save(t.Context(), record))

	all, err := repo.List(t.Context())
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, 30.0, all[0].HoldDurationSeconds())
}

func TestRecordRepository_InProgressRecordHasNilCompletion(t *testing.T) {
	db := newTestDB(t)
	repo := db.Records()

	started := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(t.Context(), domain.NewRecord("rec-1", started, "", started)))

	found, err := repo.FindByID(t.Context(), "rec-1")
	require.NoError(t, err)
	require.False(t, found.IsCompleted())
	require.Nil(t, found.CompletedAt())
	require.Equal(t, domain.DefaultProtocolType, found.ProtocolType())
}

func TestRecordRepository_ListNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := db.Records()

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		started := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, repo.Save(t.Context(), domain.NewRecord(id, started, "", started)))
	}

	all, err := repo.List(t.Context())
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "c", all[0].ID())
	require.Equal(t, "b", all[1].ID())
	require.Equal(t, "a", all[2].ID())
}

func TestRecordRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	repo := db.Records()

	started := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(t.Context(), domain.NewRecord("rec-1", started, "", started)))

	require.NoError(t, repo.Delete(t.Context(), "rec-1"))

	_, err := repo.FindByID(t.Context(), "rec-1")
	require.Error(t, err)

	var notFound *domain.RecordNotFoundError
	require.ErrorAs(t, repo.Delete(t.Context(), "rec-1"), &notFound)
}

func TestRecordRepository_SanitizesTamperedRows(t *testing.T) {
	db := newTestDB(t)
	repo := db.Records()

	started := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(t.Context(), domain.NewRecord("rec-1", started, "", started)))

	// An out-of-band edit writes an impossible hold duration.
	_, err := db.conn.Exec(`UPDATE sessions SET hold_duration_seconds = 9999 WHERE id = 'rec-1'`)
	require.NoError(t, err)

	found, err := repo.FindByID(t.Context(), "rec-1")
	require.NoError(t, err)
	require.Equal(t, domain.MaxHoldDurationSeconds, found.HoldDurationSeconds(), "hydration clamps to the cap")
	require.True(t, found.IsValid())
}
