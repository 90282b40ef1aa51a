// Package testutil provides test doubles and database helpers shared
// across packages.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/breathe/internal/infrastructure/sqlite"
)

// NewTestDB creates a throwaway on-disk database in a temp directory.
// The database is closed when the test finishes.
func NewTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.NewDB(filepath.Join(t.TempDir(), "breathe.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
