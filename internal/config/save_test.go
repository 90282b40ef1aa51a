package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveProtocol_CreatesNewFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	err := SaveProtocol(configPath, ProtocolConfig{
		Name:               "box-5-5-5-5",
		Rounds:             3,
		ReadySeconds:       3,
		InhaleSeconds:      5,
		HoldFullSeconds:    5,
		ExhaleSeconds:      5,
		HoldEmptySeconds:   5,
		FinalInhaleSeconds: 5,
		FinalExhaleSeconds: 2,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: box-5-5-5-5")
	assert.Contains(t, string(data), "rounds: 3")
	assert.Contains(t, string(data), "inhale_seconds: 5")
}

func TestSaveProtocol_PreservesOtherConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	initial := `# keep this comment
auto_refresh: false
recovery_window_seconds: 120
ui:
  show_status_bar: false
`
	require.NoError(t, os.WriteFile(configPath, []byte(initial), 0o644))

	err := SaveProtocol(configPath, ProtocolConfig{Name: "custom", Rounds: 2})
	require.NoError(t, err)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "keep this comment")
	assert.Contains(t, string(data), "auto_refresh: false")
	assert.Contains(t, string(data), "recovery_window_seconds: 120")
	assert.Contains(t, string(data), "name: custom")
}

func TestSaveProtocol_ReplacesExistingSection(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	initial := `protocol:
  name: old
  rounds: 9
`
	require.NoError(t, os.WriteFile(configPath, []byte(initial), 0o644))

	err := SaveProtocol(configPath, ProtocolConfig{Name: "new", Rounds: 4})
	require.NoError(t, err)

	v := viper.New()
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	require.Equal(t, "new", cfg.Protocol.Name)
	require.Equal(t, 4, cfg.Protocol.Rounds)
}

func TestSaveMilestones_RoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	err := SaveMilestones(configPath, []float64{15, 30, 45.5})
	require.NoError(t, err)

	v := viper.New()
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	require.Equal(t, []float64{15, 30, 45.5}, cfg.Milestones)
}
