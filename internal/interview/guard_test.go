package interview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedGuard(t *testing.T, timebox time.Duration, start time.Time) GuardState {
	t.Helper()
	gs, err := NewGuardState(timebox)
	require.NoError(t, err)
	return StoppingGuard{}.EnsureTimerStarted(gs, start)
}

func TestDecideTimeboxBoundary(t *testing.T) {
	g, err := NewStoppingGuard(0)
	require.NoError(t, err)
	start := time.UnixMilli(1_000_000)
	gs := startedGuard(t, 240000*time.Millisecond, start)

	reason, err := g.Decide(gs, false, start.Add(239999*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, ExitNone, reason)

	reason, err = g.Decide(gs, false, start.Add(240000*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, ExitTimebox, reason)
}

func TestDecideTimeboxWinsOverStreak(t *testing.T) {
	g := StoppingGuard{UnproductiveLimit: 2}
	start := time.UnixMilli(0)
	gs := startedGuard(t, time.Minute, start)
	gs.ConsecutiveUnproductiveAnswers = 5

	reason, err := g.Decide(gs, true, start.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, ExitTimebox, reason)
}

func TestDecideStreakWinsOverGate(t *testing.T) {
	g := StoppingGuard{UnproductiveLimit: 2}
	start := time.UnixMilli(0)
	gs := startedGuard(t, time.Minute, start)
	gs = g.RecordTurnOutcome(gs, true)
	gs = g.RecordTurnOutcome(gs, true)

	reason, err := g.Decide(gs, true, start.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, ExitUnproductiveStreak, reason)
}

func TestDecideGateReady(t *testing.T) {
	g := StoppingGuard{UnproductiveLimit: 2}
	start := time.UnixMilli(0)
	gs := startedGuard(t, time.Minute, start)

	reason, err := g.Decide(gs, true, start.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, ExitScorerReady, reason)

	reason, err = g.Decide(gs, false, start.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, ExitNone, reason)
}

func TestEnsureTimerStartedIsIdempotent(t *testing.T) {
	g := StoppingGuard{}
	first := time.UnixMilli(100)
	gs := startedGuard(t, time.Minute, first)

	gs = g.EnsureTimerStarted(gs, first.Add(30*time.Second))
	assert.True(t, gs.StartedAt.Equal(first))
}

func TestRecordTurnOutcomeResetsStreak(t *testing.T) {
	g := StoppingGuard{}
	gs := GuardState{Timebox: time.Minute}

	gs = g.RecordTurnOutcome(gs, true)
	assert.Equal(t, 1, gs.ConsecutiveUnproductiveAnswers)
	gs = g.RecordTurnOutcome(gs, false)
	assert.Equal(t, 0, gs.ConsecutiveUnproductiveAnswers)
}

func TestGuardConfigErrors(t *testing.T) {
	_, err := NewGuardState(0)
	assert.ErrorIs(t, err, ErrTimeboxRequired)

	_, err = NewStoppingGuard(-1)
	assert.ErrorIs(t, err, ErrInvalidUnproductiveLimit)

	_, err = StoppingGuard{}.Decide(GuardState{StartedAt: time.UnixMilli(1)}, false, time.UnixMilli(2))
	assert.ErrorIs(t, err, ErrTimeboxRequired)

	_, err = StoppingGuard{}.Decide(GuardState{Timebox: time.Minute}, false, time.UnixMilli(2))
	assert.ErrorIs(t, err, ErrTimerNotStarted)
}
