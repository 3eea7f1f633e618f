package interview

import "time"

// DefaultUnproductiveLimit es la cantidad de turnos sin evidencia que cierran la fase.
const DefaultUnproductiveLimit = 2

// GuardState acota la fase de background en tiempo y en respuestas improductivas.
type GuardState struct {
	StartedAt                      time.Time     `json:"started_at"`
	ConsecutiveUnproductiveAnswers int           `json:"consecutive_unproductive_answers"`
	Timebox                        time.Duration `json:"timebox"`
	LastExitReason                 ExitReason    `json:"last_exit_reason,omitempty"`
}

// NewGuardState exige un timebox explicito; no existe timebox implicito ilimitado.
func NewGuardState(timebox time.Duration) (GuardState, error) {
	if timebox <= 0 {
		return GuardState{}, ErrTimeboxRequired
	}
	return GuardState{Timebox: timebox}, nil
}

// TimerStarted indica si ya se tomo la marca de inicio de la fase.
func (s GuardState) TimerStarted() bool {
	return !s.StartedAt.IsZero()
}

// Elapsed devuelve el tiempo transcurrido desde el inicio, o cero si no arranco.
func (s GuardState) Elapsed(now time.Time) time.Duration {
	if !s.TimerStarted() {
		return 0
	}
	return now.Sub(s.StartedAt)
}

// StoppingGuard aplica las reglas de corte en orden fijo.
type StoppingGuard struct {
	UnproductiveLimit int
}

// NewStoppingGuard usa DefaultUnproductiveLimit cuando limit es cero.
func NewStoppingGuard(limit int) (StoppingGuard, error) {
	if limit == 0 {
		limit = DefaultUnproductiveLimit
	}
	if limit < 0 {
		return StoppingGuard{}, ErrInvalidUnproductiveLimit
	}
	return StoppingGuard{UnproductiveLimit: limit}, nil
}

func (g StoppingGuard) limit() int {
	if g.UnproductiveLimit <= 0 {
		return DefaultUnproductiveLimit
	}
	return g.UnproductiveLimit
}

// EnsureTimerStarted es idempotente: solo fija StartedAt la primera vez.
func (StoppingGuard) EnsureTimerStarted(s GuardState, now time.Time) GuardState {
	if s.TimerStarted() {
		return s
	}
	s.StartedAt = now
	return s
}

// RecordTurnOutcome suma un turno improductivo o reinicia la racha.
func (StoppingGuard) RecordTurnOutcome(s GuardState, allTraitsZeroWeight bool) GuardState {
	if allTraitsZeroWeight {
		s.ConsecutiveUnproductiveAnswers++
	} else {
		s.ConsecutiveUnproductiveAnswers = 0
	}
	return s
}

// Decide evalua, en este orden, timebox, racha improductiva y readiness del scorer.
// Gana la primera regla que se cumpla; ExitNone significa que la fase continua.
func (g StoppingGuard) Decide(s GuardState, gateReady bool, now time.Time) (ExitReason, error) {
	if s.Timebox <= 0 {
		return ExitNone, ErrTimeboxRequired
	}
	if !s.TimerStarted() {
		return ExitNone, ErrTimerNotStarted
	}

	switch {
	case now.Sub(s.StartedAt) >= s.Timebox:
		return ExitTimebox, nil
	case s.ConsecutiveUnproductiveAnswers >= g.limit():
		return ExitUnproductiveStreak, nil
	case gateReady:
		return ExitScorerReady, nil
	default:
		return ExitNone, nil
	}
}
