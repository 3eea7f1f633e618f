package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sfinx/internal/interview"
	"sfinx/internal/service"
)

// InterviewHandler expone los eventos de una entrevista sobre HTTP.
type InterviewHandler struct {
	logger     *zap.Logger
	interviews *service.InterviewService
	now        func() time.Time
}

func NewInterviewHandler(logger *zap.Logger, interviews *service.InterviewService) *InterviewHandler {
	return &InterviewHandler{
		logger:     logger,
		interviews: interviews,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type utteranceRequest struct {
	Text string `json:"text" binding:"required"`
}

// Start maneja POST /interviews.
func (h *InterviewHandler) Start(c *gin.Context) {
	var req struct {
		CandidateName string `json:"candidate_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid start interview request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	live, err := h.interviews.Start(c.Request.Context(), req.CandidateName)
	if err != nil {
		h.fail(c, "start interview failed", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"interview": gin.H{
			"id":             live.ID,
			"candidate_name": live.CandidateName,
			"created_at":     live.CreatedAt,
		},
		"state": live.Session.Snapshot(h.now()),
	})
}

// AssistantUtterance maneja POST /interviews/:id/assistant.
func (h *InterviewHandler) AssistantUtterance(c *gin.Context) {
	var req utteranceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid assistant utterance request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	outcome, live, err := h.interviews.AssistantFinalized(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		h.fail(c, "assistant utterance failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": outcome, "state": live.Session.Snapshot(h.now())})
}

// UserUtterance maneja POST /interviews/:id/user.
func (h *InterviewHandler) UserUtterance(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid user utterance request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	outcome, live, err := h.interviews.UserFinalized(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		h.fail(c, "user utterance failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": outcome, "state": live.Session.Snapshot(h.now())})
}

// ExpectFollowup maneja POST /interviews/:id/followup.
func (h *InterviewHandler) ExpectFollowup(c *gin.Context) {
	var req utteranceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid followup request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.interviews.ExpectFollowup(c.Request.Context(), c.Param("id"), req.Text); err != nil {
		h.fail(c, "expect followup failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Evaluate maneja POST /interviews/:id/evaluate.
func (h *InterviewHandler) Evaluate(c *gin.Context) {
	decision, live, err := h.interviews.Evaluate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "evaluate failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"decision": decisionView(decision), "state": live.Session.Snapshot(h.now())})
}

// Tick maneja POST /interviews/:id/tick.
func (h *InterviewHandler) Tick(c *gin.Context) {
	decision, live, err := h.interviews.Tick(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "tick failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"decision": decisionView(decision), "state": live.Session.Snapshot(h.now())})
}

// End maneja POST /interviews/:id/end.
func (h *InterviewHandler) End(c *gin.Context) {
	live, err := h.interviews.End(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "end interview failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": live.Session.Snapshot(h.now())})
}

// Reset maneja POST /interviews/:id/reset.
func (h *InterviewHandler) Reset(c *gin.Context) {
	live, err := h.interviews.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "reset interview failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": live.Session.Snapshot(h.now())})
}

// Snapshot maneja GET /interviews/:id.
func (h *InterviewHandler) Snapshot(c *gin.Context) {
	snap, err := h.interviews.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "snapshot failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": snap})
}

func decisionView(d interview.Decision) gin.H {
	return gin.H{
		"stage":        d.Stage,
		"exit_reason":  d.ExitReason,
		"exited":       d.Exited(),
		"unproductive": d.Unproductive,
	}
}

func (h *InterviewHandler) fail(c *gin.Context, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(msg, zap.Error(err), zap.String("interview_id", c.Param("id")))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	h.logger.Warn(msg, zap.Error(err), zap.String("interview_id", c.Param("id")))
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case interview.IsConfigError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrFollowupTextRequired):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInterviewNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrWrongStage),
		errors.Is(err, interview.ErrNotAtDecisionPoint),
		errors.Is(err, interview.ErrAnswerEvaluated):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
