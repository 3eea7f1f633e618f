package interview

import (
	"strings"
	"time"
)

// Config reune lo que el host debe proveer para una entrevista.
type Config struct {
	CandidateName     string
	Script            Script
	Timebox           time.Duration
	UnproductiveLimit int
	Weight            WeightFunc
}

// Session es el contexto explicito de una entrevista: maquina, guard y scorer.
// Pertenece a un unico escritor y no se comparte entre entrevistas.
type Session struct {
	Machine           MachineState `json:"machine"`
	Guard             GuardState   `json:"guard"`
	Scorer            ScorerState  `json:"scorer"`
	UnproductiveLimit int          `json:"unproductive_limit"`
	Script            Script       `json:"script"`
	Turns             int          `json:"turns"`

	weight WeightFunc
}

// Decision es el resultado de un punto de decision en background_answered.
type Decision struct {
	Stage        Stage              `json:"stage"`
	ExitReason   ExitReason         `json:"exit_reason,omitempty"`
	Observations []TraitObservation `json:"observations,omitempty"`
	Unproductive bool               `json:"unproductive"`
}

// Exited indica si la fase de background termino.
func (d Decision) Exited() bool {
	return d.ExitReason != ExitNone
}

// NewSession valida la configuracion y arranca en idle.
func NewSession(cfg Config) (*Session, error) {
	guard, err := NewStoppingGuard(cfg.UnproductiveLimit)
	if err != nil {
		return nil, err
	}
	gs, err := NewGuardState(cfg.Timebox)
	if err != nil {
		return nil, err
	}
	m, err := NewMachineState(cfg.CandidateName, cfg.Script)
	if err != nil {
		return nil, err
	}
	return &Session{
		Machine:           m,
		Guard:             gs,
		UnproductiveLimit: guard.UnproductiveLimit,
		Script:            cfg.Script,
		weight:            cfg.Weight,
	}, nil
}

// SetWeightFunc reemplaza el calculo de peso (por ejemplo tras deserializar).
func (s *Session) SetWeightFunc(fn WeightFunc) {
	s.weight = fn
}

func (s *Session) guard() StoppingGuard {
	return StoppingGuard{UnproductiveLimit: s.UnproductiveLimit}
}

func (s *Session) scorer() TraitScorer {
	return TraitScorer{Weight: s.weight}
}

// Stage devuelve la etapa actual.
func (s *Session) Stage() Stage {
	return s.Machine.Stage
}

// ExitReason devuelve el motivo de salida de la fase, si la hubo.
func (s *Session) ExitReason() ExitReason {
	return s.Machine.ExitReason
}

// OnAssistantUtteranceFinalized aplica una frase final del asistente.
// Al entrar (o reentrar) a background_asked arranca el reloj de la fase si no corria.
// Salir de background_answered siempre pasa por el guard: si hay motivo de salida la
// sesion va a coding_session en lugar de aceptar la repregunta.
func (s *Session) OnAssistantUtteranceFinalized(text string, now time.Time) (Outcome, error) {
	next, outcome, err := ApplyAssistantUtterance(s.Machine, text)
	if err != nil {
		return outcome, err
	}
	if outcome == OutcomeAdvanced && s.Machine.Stage == StageBackgroundAnswered {
		decision, machine, gs, err := s.decide(s.Scorer, s.Guard, now)
		if err != nil {
			return OutcomeIgnored, err
		}
		if decision.Exited() {
			s.Machine = machine
			s.Guard = gs
			return OutcomeAdvanced, nil
		}
	}
	if outcome == OutcomeAdvanced && next.Stage == StageBackgroundAsked {
		s.Guard = s.guard().EnsureTimerStarted(s.Guard, now)
	}
	s.Machine = next
	return outcome, nil
}

// OnUserUtteranceFinalized aplica el fin de turno del candidato.
func (s *Session) OnUserUtteranceFinalized() Outcome {
	next, outcome := ApplyUserUtterance(s.Machine)
	s.Machine = next
	return outcome
}

// ExpectFollowup registra la repregunta que el asistente va a decir a continuacion.
func (s *Session) ExpectFollowup(text string) {
	s.Machine = ExpectFollowup(s.Machine, text)
}

// RecordEvaluation incorpora el resultado del juez para el ultimo turno y decide si la fase termina.
// Si algo falla no se aplica ningun cambio.
func (s *Session) RecordEvaluation(result JudgeResult, answer string, now time.Time) (Decision, error) {
	if s.Machine.Stage != StageBackgroundAnswered {
		return Decision{Stage: s.Machine.Stage}, ErrNotAtDecisionPoint
	}
	if s.Machine.AnswerEvaluated {
		return Decision{Stage: s.Machine.Stage}, ErrAnswerEvaluated
	}

	sc := s.scorer()
	observations := sc.Observe(result, len(strings.Fields(answer)))
	scorerState := s.Scorer
	allZero := true
	for _, obs := range observations {
		if obs.Weight > 0 {
			allZero = false
		}
		scorerState = sc.Update(scorerState, obs)
	}
	guardState := s.guard().RecordTurnOutcome(s.Guard, allZero)

	decision, machine, guardState, err := s.decide(scorerState, guardState, now)
	if err != nil {
		return Decision{Stage: s.Machine.Stage}, err
	}
	machine.AnswerEvaluated = true
	s.Scorer = scorerState
	s.Guard = guardState
	s.Machine = machine
	s.Turns++

	decision.Observations = observations
	decision.Unproductive = allZero
	return decision, nil
}

// Decide es un punto de decision sin evidencia nueva; sirve para que el timebox se evalue
// aunque el juez no haya respondido.
func (s *Session) Decide(now time.Time) (Decision, error) {
	if s.Machine.Stage != StageBackgroundAnswered {
		return Decision{Stage: s.Machine.Stage}, ErrNotAtDecisionPoint
	}
	decision, machine, guardState, err := s.decide(s.Scorer, s.Guard, now)
	if err != nil {
		return Decision{Stage: s.Machine.Stage}, err
	}
	s.Guard = guardState
	s.Machine = machine
	return decision, nil
}

func (s *Session) decide(scorerState ScorerState, gs GuardState, now time.Time) (Decision, MachineState, GuardState, error) {
	reason, err := s.guard().Decide(gs, s.scorer().StopCheck(scorerState), now)
	if err != nil {
		return Decision{}, s.Machine, gs, err
	}
	machine := s.Machine
	if reason != ExitNone {
		gs.LastExitReason = reason
		machine = ExitToCoding(machine, reason)
	}
	return Decision{Stage: machine.Stage, ExitReason: reason}, machine, gs, nil
}

// End termina la entrevista desde cualquier etapa.
func (s *Session) End() {
	s.Machine = End(s.Machine)
}

// Reset vuelve a idle y descarta guard y scorer. Hace falta Configure antes de volver a usarla.
func (s *Session) Reset() {
	s.Machine = Reset(s.Machine)
	s.Guard = GuardState{Timebox: s.Guard.Timebox}
	s.Scorer = ScorerState{}
	s.Turns = 0
}

// Configure vuelve a cargar candidato y guion sobre una sesion en idle.
func (s *Session) Configure(candidate string, script Script) error {
	m, err := NewMachineState(candidate, script)
	if err != nil {
		return err
	}
	s.Machine = m
	s.Script = script
	return nil
}

// SessionSnapshot es la vista que se muestra en telemetria.
type SessionSnapshot struct {
	Stage                          Stage          `json:"stage"`
	ExitReason                     ExitReason     `json:"exit_reason,omitempty"`
	ConsecutiveUnproductiveAnswers int            `json:"consecutive_unproductive_answers"`
	ElapsedMs                      int64          `json:"elapsed_ms"`
	TimeboxMs                      int64          `json:"timebox_ms"`
	Turns                          int            `json:"turns"`
	Scorer                         ScorerSnapshot `json:"scorer"`
}

// Snapshot proyecta el estado actual.
func (s *Session) Snapshot(now time.Time) SessionSnapshot {
	return SessionSnapshot{
		Stage:                          s.Machine.Stage,
		ExitReason:                     s.Machine.ExitReason,
		ConsecutiveUnproductiveAnswers: s.Guard.ConsecutiveUnproductiveAnswers,
		ElapsedMs:                      s.Guard.Elapsed(now).Milliseconds(),
		TimeboxMs:                      s.Guard.Timebox.Milliseconds(),
		Turns:                          s.Turns,
		Scorer:                         s.scorer().Snapshot(s.Scorer),
	}
}
