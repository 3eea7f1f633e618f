package interview

import "strings"

const (
	candidatePlaceholder   = "{{candidate}}"
	interviewerPlaceholder = "{{interviewer}}"
)

// Script contiene las frases que el asistente debe pronunciar textualmente.
type Script struct {
	InterviewerName    string `json:"interviewer_name"`
	GreetingTemplate   string `json:"greeting_template"`
	BackgroundQuestion string `json:"background_question"`
}

// DefaultScript es el guion que se usa cuando no hay archivo configurado.
func DefaultScript() Script {
	return Script{
		InterviewerName:    "Carrie",
		GreetingTemplate:   "Hi {{candidate}}, I'm {{interviewer}}. I'll be the one interviewing today!",
		BackgroundQuestion: "Tell me about a project you worked on recently that you are proud of.",
	}
}

// RenderGreeting reemplaza los placeholders del saludo.
func (s Script) RenderGreeting(candidate string) string {
	r := strings.NewReplacer(
		candidatePlaceholder, candidate,
		interviewerPlaceholder, s.InterviewerName,
	)
	return strings.TrimSpace(r.Replace(s.GreetingTemplate))
}

// Expectation es la frase canonica que habilita una transicion desde Stage.
type Expectation struct {
	Stage     Stage
	Next      Stage
	Utterance string
}

// Matches compara exacto tras recortar espacios; no hay case folding.
func (e Expectation) Matches(text string) bool {
	return e.Utterance != "" && strings.TrimSpace(text) == e.Utterance
}

// Outcome describe el efecto de un evento sobre la maquina.
type Outcome string

const (
	// OutcomeAdvanced: la etapa cambio.
	OutcomeAdvanced Outcome = "advanced"
	// OutcomeIgnored: la etapa no esperaba ese evento (el guion aun no llego ahi).
	OutcomeIgnored Outcome = "ignored"
	// OutcomeMismatch: la etapa esperaba una frase y llego otra (el guion se desvio).
	OutcomeMismatch Outcome = "mismatch"
)

// MachineState es el estado del protocolo conversacional. Se trata como valor inmutable.
type MachineState struct {
	Stage              Stage      `json:"stage"`
	CandidateName      string     `json:"candidate_name,omitempty"`
	Greeting           string     `json:"greeting,omitempty"`
	BackgroundQuestion string     `json:"background_question,omitempty"`
	PendingFollowup    string     `json:"pending_followup,omitempty"`
	ExitReason         ExitReason `json:"exit_reason,omitempty"`
	// AnswerEvaluated marca que la respuesta actual ya paso por el juez; se limpia con cada respuesta nueva.
	AnswerEvaluated bool `json:"answer_evaluated,omitempty"`
}

// NewMachineState prepara la maquina en idle con el guion renderizado.
func NewMachineState(candidate string, script Script) (MachineState, error) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return MachineState{}, ErrCandidateNameRequired
	}
	if strings.TrimSpace(script.GreetingTemplate) == "" {
		return MachineState{}, ErrGreetingRequired
	}
	question := strings.TrimSpace(script.BackgroundQuestion)
	if question == "" {
		return MachineState{}, ErrBackgroundQuestionNeeded
	}
	return MachineState{
		Stage:              StageIdle,
		CandidateName:      candidate,
		Greeting:           script.RenderGreeting(candidate),
		BackgroundQuestion: question,
	}, nil
}

// Expectations devuelve las frases que el asistente puede decir para avanzar desde la etapa actual.
func (m MachineState) Expectations() []Expectation {
	switch m.Stage {
	case StageIdle:
		return []Expectation{{Stage: StageIdle, Next: StageGreetingAcknowledged, Utterance: m.Greeting}}
	case StageGreetingAnswered:
		return []Expectation{{Stage: StageGreetingAnswered, Next: StageBackgroundAsked, Utterance: m.BackgroundQuestion}}
	case StageBackgroundAnswered:
		exp := []Expectation{{Stage: StageBackgroundAnswered, Next: StageBackgroundAsked, Utterance: m.BackgroundQuestion}}
		if m.PendingFollowup != "" {
			exp = append(exp, Expectation{Stage: StageBackgroundAnswered, Next: StageFollowupAsked, Utterance: m.PendingFollowup})
		}
		return exp
	default:
		return nil
	}
}

// ApplyAssistantUtterance avanza solo si text coincide con una frase esperada.
func ApplyAssistantUtterance(m MachineState, text string) (MachineState, Outcome, error) {
	if m.Stage == StageIdle && m.CandidateName == "" {
		return m, OutcomeIgnored, ErrCandidateNameRequired
	}
	expectations := m.Expectations()
	if len(expectations) == 0 {
		return m, OutcomeIgnored, nil
	}
	for _, e := range expectations {
		if e.Matches(text) {
			next := m
			next.Stage = e.Next
			next.PendingFollowup = ""
			return next, OutcomeAdvanced, nil
		}
	}
	return m, OutcomeMismatch, nil
}

// ApplyUserUtterance pasa de "hablo el asistente" a "respondio el usuario" sin mirar el contenido.
func ApplyUserUtterance(m MachineState) (MachineState, Outcome) {
	next := m
	switch m.Stage {
	case StageGreetingAcknowledged:
		next.Stage = StageGreetingAnswered
	case StageBackgroundAsked, StageFollowupAsked:
		next.Stage = StageBackgroundAnswered
		next.AnswerEvaluated = false
	default:
		return m, OutcomeIgnored
	}
	return next, OutcomeAdvanced
}

// ExpectFollowup registra la proxima repregunta aceptable en background_answered.
func ExpectFollowup(m MachineState, text string) MachineState {
	next := m
	next.PendingFollowup = strings.TrimSpace(text)
	return next
}

// ExitToCoding cierra la fase de background con el motivo dado.
func ExitToCoding(m MachineState, reason ExitReason) MachineState {
	next := m
	next.Stage = StageCodingSession
	next.ExitReason = reason
	next.PendingFollowup = ""
	return next
}

// End lleva la maquina al estado terminal desde cualquier etapa.
func End(m MachineState) MachineState {
	next := m
	next.Stage = StageEnded
	next.PendingFollowup = ""
	return next
}

// Reset vuelve a idle y descarta nombre y preguntas configuradas.
func Reset(MachineState) MachineState {
	return MachineState{Stage: StageIdle}
}
