package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sfinx/internal/interview"
	"sfinx/internal/service"
)

type stubJudge struct {
	result interview.JudgeResult
}

func (s stubJudge) Evaluate(_ context.Context, _, _ string) (interview.JudgeResult, error) {
	return s.result, nil
}

func newTestRouter(t *testing.T, timebox time.Duration, judge service.Judge) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := service.NewInterviewService(
		zap.NewNop(),
		service.NewMemorySessionStore(time.Hour),
		judge,
		service.InterviewSettings{Script: interview.DefaultScript(), Timebox: timebox},
		service.InterviewRepositories{},
	)
	return NewRouter(zap.NewNop(), NewInterviewHandler(zap.NewNop(), svc))
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type stateResponse struct {
	Outcome  string `json:"outcome"`
	Decision struct {
		Stage      string `json:"stage"`
		ExitReason string `json:"exit_reason"`
		Exited     bool   `json:"exited"`
	} `json:"decision"`
	State interview.SessionSnapshot `json:"state"`
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) stateResponse {
	t.Helper()
	var resp stateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v body=%s", err, w.Body.String())
	}
	return resp
}

func startInterview(t *testing.T, r http.Handler, candidate string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/interviews", map[string]string{"candidate_name": candidate})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Interview struct {
			ID string `json:"id"`
		} `json:"interview"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode start: %v", err)
	}
	if resp.Interview.ID == "" {
		t.Fatalf("expected interview id")
	}
	return resp.Interview.ID
}

func TestInterviewHandlerHappyPath(t *testing.T) {
	judge := stubJudge{result: interview.JudgeResult{Ratings: map[interview.Trait]float64{
		interview.TraitAdaptability: 80,
		interview.TraitCreativity:   65,
		interview.TraitReasoning:    75,
	}}}
	r := newTestRouter(t, 10*time.Minute, judge)
	id := startInterview(t, r, "Ada")
	script := interview.DefaultScript()

	w := doJSON(t, r, http.MethodPost, "/interviews/"+id+"/assistant", map[string]string{"text": script.RenderGreeting("Ada")})
	if resp := decodeState(t, w); resp.Outcome != string(interview.OutcomeAdvanced) || resp.State.Stage != interview.StageGreetingAcknowledged {
		t.Fatalf("unexpected greeting response %+v", resp)
	}
	doJSON(t, r, http.MethodPost, "/interviews/"+id+"/user", map[string]string{"text": "hello"})
	doJSON(t, r, http.MethodPost, "/interviews/"+id+"/assistant", map[string]string{"text": script.BackgroundQuestion})
	w = doJSON(t, r, http.MethodPost, "/interviews/"+id+"/user", map[string]string{
		"text": "I led the rewrite of our search indexer and cut reindex time from hours to minutes for the whole team",
	})
	if resp := decodeState(t, w); resp.State.Stage != interview.StageBackgroundAnswered {
		t.Fatalf("expected background_answered, got %s", resp.State.Stage)
	}

	w = doJSON(t, r, http.MethodPost, "/interviews/"+id+"/evaluate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	resp := decodeState(t, w)
	if !resp.Decision.Exited || resp.Decision.ExitReason != string(interview.ExitScorerReady) {
		t.Fatalf("expected scorer-ready exit, got %+v", resp.Decision)
	}
	if resp.State.Stage != interview.StageCodingSession || !resp.State.Scorer.Ready {
		t.Fatalf("unexpected state %+v", resp.State)
	}

	w = doJSON(t, r, http.MethodGet, "/interviews/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 snapshot, got %d", w.Code)
	}
	if got := decodeState(t, w).State.ExitReason; got != interview.ExitScorerReady {
		t.Fatalf("expected exit reason in snapshot, got %q", got)
	}
}

func TestInterviewHandlerErrorMapping(t *testing.T) {
	r := newTestRouter(t, time.Minute, stubJudge{})

	w := doJSON(t, r, http.MethodPost, "/interviews", map[string]string{"candidate_name": ""})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for missing candidate, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/interviews/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	id := startInterview(t, r, "Ada")
	w = doJSON(t, r, http.MethodPost, "/interviews/"+id+"/evaluate", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 outside decision point, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, "/interviews/"+id+"/followup", map[string]string{"text": "why?"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for followup in idle, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, "/interviews/"+id+"/assistant", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing text, got %d", w.Code)
	}
}

func TestInterviewHandlerMissingTimebox(t *testing.T) {
	r := newTestRouter(t, 0, stubJudge{})
	w := doJSON(t, r, http.MethodPost, "/interviews", map[string]string{"candidate_name": "Ada"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for missing timebox, got %d", w.Code)
	}
}

func TestInterviewHandlerEndAndReset(t *testing.T) {
	r := newTestRouter(t, time.Minute, stubJudge{})
	id := startInterview(t, r, "Ada")

	w := doJSON(t, r, http.MethodPost, "/interviews/"+id+"/end", nil)
	if resp := decodeState(t, w); resp.State.Stage != interview.StageEnded {
		t.Fatalf("expected ended, got %s", resp.State.Stage)
	}
	w = doJSON(t, r, http.MethodPost, "/interviews/"+id+"/reset", nil)
	if resp := decodeState(t, w); resp.State.Stage != interview.StageIdle {
		t.Fatalf("expected idle after reset, got %s", resp.State.Stage)
	}
}

func TestInterviewHandlerRepeatedEvaluateConflicts(t *testing.T) {
	r := newTestRouter(t, 10*time.Minute, stubJudge{})
	id := startInterview(t, r, "Ada")
	script := interview.DefaultScript()

	doJSON(t, r, http.MethodPost, "/interviews/"+id+"/assistant", map[string]string{"text": script.RenderGreeting("Ada")})
	doJSON(t, r, http.MethodPost, "/interviews/"+id+"/user", map[string]string{"text": "hello"})
	doJSON(t, r, http.MethodPost, "/interviews/"+id+"/assistant", map[string]string{"text": script.BackgroundQuestion})
	doJSON(t, r, http.MethodPost, "/interviews/"+id+"/user", map[string]string{"text": "not sure"})

	w := doJSON(t, r, http.MethodPost, "/interviews/"+id+"/evaluate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodPost, "/interviews/"+id+"/evaluate", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on repeated evaluate, got %d", w.Code)
	}
}
