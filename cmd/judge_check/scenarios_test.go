package main

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"sfinx/internal/llm"
	"sfinx/internal/service"
)

func TestRunScenarioProductiveAnswer(t *testing.T) {
	client := &llm.MockClient{Response: `{"pillars":{"adaptability":72,"creativity":40,"reasoning":88},"confidence":{"adaptability":0.9,"creativity":0.5,"reasoning":0.9}}`}
	judge := service.NewJudgeService(client, zap.NewNop())

	res, err := runScenario(context.Background(), judge, defaultScenarios()[0])
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !res.Productive || !res.Passed {
		t.Fatalf("expected productive pass, got %+v", res)
	}
	if len(res.Observations) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(res.Observations))
	}
}

func TestRunScenarioEmptyAnswerSkipsLLM(t *testing.T) {
	client := &llm.MockClient{Response: `{"pillars":{"adaptability":90}}`}
	judge := service.NewJudgeService(client, zap.NewNop())

	var empty Scenario
	for _, sc := range defaultScenarios() {
		if sc.Name == "empty" {
			empty = sc
		}
	}
	res, err := runScenario(context.Background(), judge, empty)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Productive || !res.Passed {
		t.Fatalf("expected unproductive pass, got %+v", res)
	}
	if client.Calls != 0 {
		t.Fatalf("empty answer must not reach the llm, got %d calls", client.Calls)
	}
}

func TestRunScenarioFlagsMiscalibratedJudge(t *testing.T) {
	client := &llm.MockClient{Response: `{"pillars":{"adaptability":50,"creativity":50,"reasoning":50}}`}
	judge := service.NewJudgeService(client, zap.NewNop())

	var evasive Scenario
	for _, sc := range defaultScenarios() {
		if sc.Name == "evasive" {
			evasive = sc
		}
	}
	res, err := runScenario(context.Background(), judge, evasive)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Passed {
		t.Fatalf("a judge rating an evasive answer must fail calibration")
	}
}

func TestRunScenarioPropagatesTransportError(t *testing.T) {
	client := &llm.MockClient{Err: errors.New("timeout")}
	judge := service.NewJudgeService(client, zap.NewNop())

	if _, err := runScenario(context.Background(), judge, defaultScenarios()[0]); err == nil {
		t.Fatalf("expected transport error")
	}
}
