package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/breathe/internal/config"
	"github.com/zjrosen/breathe/internal/infrastructure/sqlite"
)

func TestNewDB_CreatesMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "breathe.db")

	db, err := sqlite.NewDB(path)
	require.NoError(t, err, "opening a database in a missing directory should create it")
	require.NoError(t, db.Close(), "closing should succeed")
}

func TestStatsCommand_EmptyDatabase(t *testing.T) {
	cfg = config.Defaults()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "breathe.db")

	var out bytes.Buffer
	statsCmd.SetOut(&out)
	statsCmd.SetErr(&out)
	statsCmd.SetContext(t.Context())

	require.NoError(t, runStats(statsCmd, nil), "stats over an empty database should succeed")
	require.Contains(t, out.String(), "Sessions", "summary labels should print")
	require.Contains(t, out.String(), "none yet", "empty history should print the placeholder")
}

func TestStatsCommand_InvalidConfig(t *testing.T) {
	cfg = config.Defaults()
	cfg.RecoveryWindowSeconds = -1

	err := runStats(statsCmd, nil)
	require.Error(t, err, "invalid configuration should fail fast")
	require.Contains(t, err.Error(), "invalid configuration", "error should name the failure")
}

func TestLearnCommand_ListsTopics(t *testing.T) {
	cfg = config.Defaults()

	var out bytes.Buffer
	learnCmd.SetOut(&out)

	require.NoError(t, runLearn(learnCmd, nil), "listing topics should succeed")
	require.Contains(t, out.String(), "safety", "the safety card should be listed")
}

func TestLearnCommand_RendersCard(t *testing.T) {
	cfg = config.Defaults()

	var out bytes.Buffer
	learnCmd.SetOut(&out)

	require.NoError(t, runLearn(learnCmd, []string{"safety"}), "rendering a known topic should succeed")
	require.NotEmpty(t, out.String(), "rendered card should not be empty")
}

func TestLearnCommand_UnknownTopic(t *testing.T) {
	cfg = config.Defaults()

	err := runLearn(learnCmd, []string{"underwater-basket-weaving"})
	require.Error(t, err, "unknown topics should fail")
	require.Contains(t, err.Error(), "unknown topic", "error should name the failure")
}

func TestFormatSeconds(t *testing.T) {
	require.Equal(t, "none yet", formatSeconds(0), "zero renders as placeholder")
	require.Equal(t, "45.5s", formatSeconds(45.5), "sub-minute renders with tenths")
	require.Equal(t, "2m 05s", formatSeconds(125), "minutes render as m/s")
}
