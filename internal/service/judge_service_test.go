package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"sfinx/internal/interview"
	"sfinx/internal/llm"
)

func TestJudgeServiceParsesPillars(t *testing.T) {
	client := &llm.MockClient{
		Response: "```json\n{\"pillars\":{\"adaptability\":60,\"creativity\":null,\"reasoning\":85},\"confidence\":{\"adaptability\":0.5}}\n```",
	}
	svc := NewJudgeService(client, zap.NewNop())

	result, err := svc.Evaluate(context.Background(), "Tell me about a project.", "I migrated our queue to NATS.")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Absent() {
		t.Fatalf("expected ratings")
	}
	if got := result.Ratings[interview.TraitAdaptability]; got != 60 {
		t.Fatalf("expected adaptability 60, got %v", got)
	}
	if _, ok := result.Ratings[interview.TraitCreativity]; ok {
		t.Fatalf("null pillar must be treated as no rating")
	}
	if got := result.Confidence[interview.TraitAdaptability]; got != 0.5 {
		t.Fatalf("expected confidence 0.5, got %v", got)
	}
	if !strings.Contains(client.LastPrompt, "I migrated our queue to NATS.") {
		t.Fatalf("expected answer in prompt, got %q", client.LastPrompt)
	}
}

func TestJudgeServiceWrappedJSON(t *testing.T) {
	client := &llm.MockClient{
		Response: `Evaluation:
{"pillars":{"Reasoning":70,"unknown":10}} done`,
	}
	svc := NewJudgeService(client, zap.NewNop())

	result, err := svc.Evaluate(context.Background(), "q", "a long enough answer")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(result.Ratings) != 1 || result.Ratings[interview.TraitReasoning] != 70 {
		t.Fatalf("unexpected ratings %+v", result.Ratings)
	}
}

func TestJudgeServiceMalformedIsAbsent(t *testing.T) {
	cases := []string{
		"Lo siento, no puedo evaluar esto.",
		`{"pillars": }`,
		`{"verdict":"ok"}`,
	}
	for _, raw := range cases {
		svc := NewJudgeService(&llm.MockClient{Response: raw}, zap.NewNop())
		result, err := svc.Evaluate(context.Background(), "q", "answer")
		if err != nil {
			t.Fatalf("expected malformed response to be absorbed, got %v", err)
		}
		if !result.Absent() {
			t.Fatalf("expected absent result for %q, got %+v", raw, result)
		}
	}
}

func TestJudgeServiceSkipsEmptyAnswer(t *testing.T) {
	client := &llm.MockClient{Response: `{"pillars":{"reasoning":90}}`}
	svc := NewJudgeService(client, zap.NewNop())

	result, err := svc.Evaluate(context.Background(), "q", "   ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.Absent() {
		t.Fatalf("expected absent result for empty answer")
	}
	if client.Calls != 0 {
		t.Fatalf("expected no llm call, got %d", client.Calls)
	}
}

func TestJudgeServicePropagatesTransportError(t *testing.T) {
	svc := NewJudgeService(&llm.MockClient{Err: errors.New("timeout")}, zap.NewNop())
	if _, err := svc.Evaluate(context.Background(), "q", "answer"); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestExtractFirstJSONObjectIgnoresBracesInStrings(t *testing.T) {
	in := `noise {"a":"}{","b":{"c":1}} tail {"x":2}`
	if got := extractFirstJSONObject(in); got != `{"a":"}{","b":{"c":1}}` {
		t.Fatalf("unexpected extraction %q", got)
	}
	if got := extractFirstJSONObject("no json"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
