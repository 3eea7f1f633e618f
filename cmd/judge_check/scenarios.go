package main

import (
	"context"
	"fmt"
	"strings"

	"sfinx/internal/interview"
	"sfinx/internal/service"
)

// Scenario es una respuesta de ejemplo con la evidencia que se espera del juez.
type Scenario struct {
	Name     string
	Question string
	Answer   string
	// ExpectEvidence indica si el turno deberia contar como productivo.
	ExpectEvidence bool
}

// ScenarioResult es lo que el juez y el scorer hicieron con un escenario.
type ScenarioResult struct {
	Scenario     Scenario
	Observations []interview.TraitObservation
	Productive   bool
	Passed       bool
}

var defaultQuestion = interview.DefaultScript().BackgroundQuestion

func defaultScenarios() []Scenario {
	return []Scenario{
		{
			Name:           "detailed-migration",
			Question:       defaultQuestion,
			Answer:         "We moved our order service from a nightly batch to an event stream. Halfway through, the vendor changed their API, so I rewrote the adapter and added a replay tool to backfill missed events.",
			ExpectEvidence: true,
		},
		{
			Name:           "tradeoff-reasoning",
			Question:       "What was the hardest trade-off you had to make there?",
			Answer:         "We picked eventual consistency over distributed locks because the lock service added two hundred milliseconds per request and our checkout SLA could not absorb it.",
			ExpectEvidence: true,
		},
		{
			Name:           "evasive",
			Question:       defaultQuestion,
			Answer:         "I don't know.",
			ExpectEvidence: false,
		},
		{
			Name:           "empty",
			Question:       defaultQuestion,
			Answer:         "",
			ExpectEvidence: false,
		},
	}
}

// runScenario juzga un escenario y pasa el resultado por el scorer por defecto.
func runScenario(ctx context.Context, judge service.Judge, sc Scenario) (ScenarioResult, error) {
	result, err := judge.Evaluate(ctx, sc.Question, sc.Answer)
	if err != nil {
		return ScenarioResult{}, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	scorer := interview.TraitScorer{}
	obs := scorer.Observe(result, len(strings.Fields(sc.Answer)))
	productive := false
	for _, o := range obs {
		if o.Weight > 0 {
			productive = true
			break
		}
	}
	return ScenarioResult{
		Scenario:     sc,
		Observations: obs,
		Productive:   productive,
		Passed:       productive == sc.ExpectEvidence,
	}, nil
}
