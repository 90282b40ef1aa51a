package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestStateConstructors_ExactlyOnePayload(t *testing.T) {
	states := []State{
		Idle(),
		Breathing(2, PhaseInhale, 3.4),
		Holding(12.5, 45),
		Interrupted(CauseBackgrounded, Holding(12.5, 45)),
		Completed(62.3),
		Errored("timer fault"),
	}

	for _, s := range states {
		count := 0
		if s.Breathing != nil {
			count++
		}
		if s.Holding != nil {
			count++
		}
		if s.Interrupted != nil {
			count++
		}
		if s.Completed != nil {
			count++
		}
		if s.Errored != nil {
			count++
		}
		switch s.Kind {
		case KindIdle:
			require.Zero(t, count, "idle carries no payload")
		default:
			require.Equal(t, 1, count, "state %s must carry exactly one payload", s.Kind)
		}
	}
}

func TestInterrupted_WrapsActiveState(t *testing.T) {
	inner := Breathing(3, PhaseExhale, 1.2)
	s := Interrupted(CauseSystemAlert, inner)

	require.Equal(t, KindInterrupted, s.Kind)
	require.Equal(t, CauseSystemAlert, s.Interrupted.Cause)
	require.Equal(t, inner, *s.Interrupted.Saved)
}

func TestInterrupted_NeverNests(t *testing.T) {
	wrapped := Interrupted(CauseBackgrounded, Holding(10, 45))
	require.Panics(t, func() {
		Interrupted(CauseLowBattery, wrapped)
	}, "wrapping an interrupted state must panic")
}

func TestInterrupted_CopiesSaved(t *testing.T) {
	inner := Holding(10, 45)
	s := Interrupted(CauseBackgrounded, inner)

	// Mutating the original must not leak into the wrapped copy.
	inner.Holding.Elapsed = 99
	require.Equal(t, 10.0, s.Interrupted.Saved.Holding.Elapsed)
}

func TestState_IsActive(t *testing.T) {
	require.True(t, Breathing(1, PhaseReady, 3).IsActive())
	require.True(t, Holding(0, 45).IsActive())

	require.False(t, Idle().IsActive())
	require.False(t, Interrupted(CauseBackgrounded, Holding(1, 45)).IsActive())
	require.False(t, Completed(60).IsActive())
	require.False(t, Errored("boom").IsActive())
}

func TestState_JSONRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		phases := []Phase{PhaseReady, PhaseInhale, PhaseHoldFull, PhaseExhale, PhaseHoldEmpty, PhaseFinalInhale, PhaseFinalExhale}
		causes := []Cause{CauseBackgrounded, CauseExternalAudio, CauseSystemAlert, CauseLowBattery, CauseUserInitiated, CauseEmergencyStop, CauseTimerFault}

		var original State
		switch rapid.IntRange(0, 2).Draw(t, "shape") {
		case 0:
			original = Breathing(
				rapid.IntRange(1, 10).Draw(t, "round"),
				rapid.SampledFrom(phases).Draw(t, "phase"),
				rapid.Float64Range(0, 10).Draw(t, "remaining"),
			)
		case 1:
			original = Holding(
				rapid.Float64Range(0, 600).Draw(t, "elapsed"),
				rapid.Float64Range(0, 600).Draw(t, "target"),
			)
		default:
			inner := Holding(
				rapid.Float64Range(0, 600).Draw(t, "innerElapsed"),
				rapid.Float64Range(0, 600).Draw(t, "innerTarget"),
			)
			original = Interrupted(rapid.SampledFrom(causes).Draw(t, "cause"), inner)
		}

		data, err := json.Marshal(original)
		require.NoError(t, err)

		var restored State
		require.NoError(t, json.Unmarshal(data, &restored))
		require.Equal(t, original, restored, "state must survive a storage round trip unchanged")
	})
}

func TestPhase_IsValid(t *testing.T) {
	for _, p := range []Phase{PhaseReady, PhaseInhale, PhaseHoldFull, PhaseExhale, PhaseHoldEmpty, PhaseFinalInhale, PhaseFinalExhale} {
		require.True(t, p.IsValid(), "phase %s", p)
	}
	require.False(t, Phase("warmup").IsValid())
	require.False(t, Phase("").IsValid())
}

func TestPhase_IsFinal(t *testing.T) {
	require.True(t, PhaseFinalInhale.IsFinal())
	require.True(t, PhaseFinalExhale.IsFinal())

	for _, p := range []Phase{PhaseReady, PhaseInhale, PhaseHoldFull, PhaseExhale, PhaseHoldEmpty} {
		require.False(t, p.IsFinal(), "phase %s is part of a round", p)
	}
}
