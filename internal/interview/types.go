package interview

import "errors"

// Stage identifica en que punto del dialogo guionado esta la entrevista.
type Stage string

const (
	StageIdle                 Stage = "idle"
	StageGreetingAcknowledged Stage = "greeting_acknowledged"
	StageGreetingAnswered     Stage = "greeting_answered"
	StageBackgroundAsked      Stage = "background_asked"
	StageBackgroundAnswered   Stage = "background_answered"
	StageFollowupAsked        Stage = "followup_asked"
	StageCodingSession        Stage = "coding_session"
	StageEnded                Stage = "ended"
)

// ExitReason explica por que termino la fase de background.
type ExitReason string

const (
	ExitNone               ExitReason = ""
	ExitTimebox            ExitReason = "timebox"
	ExitUnproductiveStreak ExitReason = "unproductive-streak"
	ExitScorerReady        ExitReason = "scorer-ready"
)

// Trait es una de las dimensiones evaluadas por turno.
type Trait int

const (
	TraitAdaptability Trait = iota
	TraitCreativity
	TraitReasoning

	traitCount
)

// AllTraits lista los rasgos en orden estable.
var AllTraits = [traitCount]Trait{TraitAdaptability, TraitCreativity, TraitReasoning}

func (t Trait) String() string {
	switch t {
	case TraitAdaptability:
		return "adaptability"
	case TraitCreativity:
		return "creativity"
	case TraitReasoning:
		return "reasoning"
	default:
		return "unknown"
	}
}

// ParseTrait acepta el nombre en minusculas que usa el juez.
func ParseTrait(name string) (Trait, bool) {
	for _, t := range AllTraits {
		if t.String() == name {
			return t, true
		}
	}
	return 0, false
}

var (
	// Errores de configuracion: nunca se degradan a un default silencioso.
	ErrCandidateNameRequired    = errors.New("interview: candidate name is required")
	ErrGreetingRequired         = errors.New("interview: greeting template is required")
	ErrBackgroundQuestionNeeded = errors.New("interview: background question is required")
	ErrTimeboxRequired          = errors.New("interview: timebox must be a positive duration")
	ErrInvalidUnproductiveLimit = errors.New("interview: unproductive limit must be positive")

	ErrTimerNotStarted    = errors.New("interview: background timer not started")
	ErrNotAtDecisionPoint = errors.New("interview: stage is not a decision point")
	ErrAnswerEvaluated    = errors.New("interview: answer already evaluated")
)

// IsConfigError indica si err es un error de configuracion del motor.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrCandidateNameRequired) ||
		errors.Is(err, ErrGreetingRequired) ||
		errors.Is(err, ErrBackgroundQuestionNeeded) ||
		errors.Is(err, ErrTimeboxRequired) ||
		errors.Is(err, ErrInvalidUnproductiveLimit)
}
