package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"sfinx/internal/interview"
	"sfinx/internal/llm"
)

// Judge convierte un par pregunta/respuesta en ratings por rasgo.
type Judge interface {
	Evaluate(ctx context.Context, question, answer string) (interview.JudgeResult, error)
}

// JudgeService usa el LLM como juez de cada turno de background.
type JudgeService struct {
	llmClient llm.LLMClient
	logger    *zap.Logger
}

func NewJudgeService(llmClient llm.LLMClient, logger *zap.Logger) *JudgeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JudgeService{
		llmClient: llmClient,
		logger:    logger,
	}
}

// Evaluate devuelve un resultado ausente (sin error) cuando la respuesta esta vacia o el juez
// contesta algo que no se puede parsear; solo los errores de transporte se propagan.
func (s *JudgeService) Evaluate(ctx context.Context, question, answer string) (interview.JudgeResult, error) {
	if strings.TrimSpace(answer) == "" {
		return interview.JudgeResult{}, nil
	}

	raw, err := s.llmClient.Generate(ctx, buildJudgePrompt(question, answer))
	if err != nil {
		return interview.JudgeResult{}, fmt.Errorf("llm generate: %w", err)
	}

	result, err := parseJudgeResponse(raw)
	if err != nil {
		s.logger.Warn("judge response unusable", zap.Error(err), zap.Int("raw_len", len(raw)))
		return interview.JudgeResult{}, nil
	}
	return result, nil
}

func buildJudgePrompt(question, answer string) string {
	return fmt.Sprintf(`You are evaluating one turn of a technical interview background discussion.

Question: %q
Candidate answer: %q

Rate the answer on three pillars, 0-100:
- adaptability: handling change, constraints, shifting requirements
- creativity: original approaches, alternatives considered
- reasoning: structured thinking, trade-offs, causality

Use null for a pillar when the answer contains no evidence about it. A low score means
evidence of low quality; null means no evidence at all.
Confidence (0-1) says how sure you are about each rating.

Reply ONLY with JSON (no markdown):
{
  "pillars": {"adaptability": 0, "creativity": null, "reasoning": 0},
  "confidence": {"adaptability": 0.0, "reasoning": 0.0}
}`, strings.TrimSpace(question), strings.TrimSpace(answer))
}

type judgeResponse struct {
	Pillars    map[string]*float64 `json:"pillars"`
	Confidence map[string]*float64 `json:"confidence"`
}

// parseJudgeResponse tolera fences de markdown y texto alrededor del JSON.
func parseJudgeResponse(raw string) (interview.JudgeResult, error) {
	candidate := extractFirstJSONObject(cleanLLMJSONResponse(raw))
	if candidate == "" {
		return interview.JudgeResult{}, fmt.Errorf("judge returned no json object")
	}

	var jr judgeResponse
	if err := json.Unmarshal([]byte(candidate), &jr); err != nil {
		return interview.JudgeResult{}, fmt.Errorf("parse judge json: %w", err)
	}
	if len(jr.Pillars) == 0 {
		return interview.JudgeResult{}, fmt.Errorf("judge json without pillars")
	}

	result := interview.JudgeResult{
		Ratings:    make(map[interview.Trait]float64, len(jr.Pillars)),
		Confidence: make(map[interview.Trait]float64, len(jr.Confidence)),
	}
	for name, v := range jr.Pillars {
		trait, ok := interview.ParseTrait(strings.ToLower(strings.TrimSpace(name)))
		if !ok || v == nil {
			continue
		}
		result.Ratings[trait] = *v
	}
	for name, v := range jr.Confidence {
		trait, ok := interview.ParseTrait(strings.ToLower(strings.TrimSpace(name)))
		if !ok || v == nil {
			continue
		}
		result.Confidence[trait] = *v
	}
	return result, nil
}
