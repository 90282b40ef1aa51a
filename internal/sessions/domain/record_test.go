package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestNewRecord(t *testing.T) {
	r := NewRecord("id-1", testNow, "box-4-4-4-4", testNow)

	require.Equal(t, "id-1", r.ID())
	require.Equal(t, testNow, r.StartedAt())
	require.Equal(t, "box-4-4-4-4", r.ProtocolType())
	require.False(t, r.IsCompleted())
	require.Nil(t, r.CompletedAt())
	require.Zero(t, r.HoldDurationSeconds())
	require.True(t, r.IsValid())
}

func TestNewRecord_ClampsFutureStart(t *testing.T) {
	future := testNow.Add(time.Hour)
	r := NewRecord("id-1", future, "", testNow)
	require.Equal(t, testNow, r.StartedAt())
}

func TestNewRecord_DefaultsProtocol(t *testing.T) {
	r := NewRecord("id-1", testNow, "", testNow)
	require.Equal(t, DefaultProtocolType, r.ProtocolType())
}

func TestRecord_Complete(t *testing.T) {
	r := NewRecord("id-1", testNow, "", testNow)
	completedAt := testNow.Add(2 * time.Minute)

	r.Complete(62.3, 4, completedAt)

	require.True(t, r.IsCompleted())
	require.Equal(t, 62.3, r.HoldDurationSeconds())
	require.Equal(t, 4, r.PreparationRounds())
	require.Equal(t, completedAt, *r.CompletedAt())
}

func TestRecord_CompleteIsFrozen(t *testing.T) {
	r := NewRecord("id-1", testNow, "", testNow)
	r.Complete(62.3, 4, testNow.Add(time.Minute))

	// A second completion and later duration updates are ignored.
	r.Complete(99, 9, testNow.Add(time.Hour))
	r.SetHoldDuration(99)

	require.Equal(t, 62.3, r.HoldDurationSeconds())
	require.Equal(t, 4, r.PreparationRounds())
	require.Equal(t, testNow.Add(time.Minute), *r.CompletedAt())
}

func TestRecord_SetHoldDuration(t *testing.T) {
	r := NewRecord("id-1", testNow, "", testNow)

	r.SetHoldDuration(12.5)
	require.Equal(t, 12.5, r.HoldDurationSeconds())

	r.SetHoldDuration(-3)
	require.Zero(t, r.HoldDurationSeconds(), "negative durations clamp to zero")

	r.SetHoldDuration(MaxHoldDurationSeconds + 1)
	require.Equal(t, MaxHoldDurationSeconds, r.HoldDurationSeconds(), "durations clamp at the cap")
}

func TestReconstituteRecord_Sanitizes(t *testing.T) {
	early := testNow.Add(-time.Hour)

	r := ReconstituteRecord("id-1", testNow, &early, -5, -2, "")

	require.Zero(t, r.HoldDurationSeconds())
	require.Zero(t, r.PreparationRounds())
	require.Equal(t, DefaultProtocolType, r.ProtocolType())
	require.Equal(t, testNow, *r.CompletedAt(), "completion before start snaps to start")
	require.True(t, r.IsValid())
}

func TestRecord_IsValid(t *testing.T) {
	require.False(t, (&Record{}).IsValid(), "empty id is invalid")

	r := ReconstituteRecord("id-1", testNow, nil, 30, 4, "box-4-4-4-4")
	require.True(t, r.IsValid())
}
