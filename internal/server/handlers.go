package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mathtrail/mathtrail/internal/numrange"
	"github.com/mathtrail/mathtrail/internal/progression"
	"github.com/mathtrail/mathtrail/internal/session"
)

// Handler adapts the session service to HTTP. Unknown operators and
// malformed bodies are rejected here, at the boundary; the core never
// sees them.
type Handler struct {
	svc *session.Service
	log *zap.Logger
}

// NewHandler creates the HTTP handler set.
func NewHandler(svc *session.Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// NextQuestion serves GET /api/users/:id/questions/next?operator=&grade=.
func (h *Handler) NextQuestion(c *gin.Context) {
	userID := c.Param("id")
	op, ok := h.operatorQuery(c, c.Query("operator"))
	if !ok {
		return
	}
	grade, ok := h.gradeQuery(c, c.DefaultQuery("grade", "0"))
	if !ok {
		return
	}

	q, err := h.svc.NextQuestion(c.Request.Context(), userID, op, grade)
	if err != nil {
		h.fail(c, "next question", err)
		return
	}
	c.JSON(http.StatusOK, q)
}

type resultPayload struct {
	Stage   string `json:"stage"`
	Correct bool   `json:"correct"`
}

type assessmentPayload struct {
	Operator string          `json:"operator" binding:"required"`
	Grade    int             `json:"grade"`
	Results  []resultPayload `json:"results" binding:"required"`
}

// SubmitAssessment serves POST /api/users/:id/assessments.
func (h *Handler) SubmitAssessment(c *gin.Context) {
	userID := c.Param("id")
	var body assessmentPayload
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	op, ok := h.operatorQuery(c, body.Operator)
	if !ok {
		return
	}

	sum, err := h.svc.SubmitAssessment(c.Request.Context(), userID, op, body.Grade, toResults(body.Results))
	if err != nil {
		h.fail(c, "submit assessment", err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

type practicePayload struct {
	Operator        string          `json:"operator" binding:"required"`
	Grade           int             `json:"grade"`
	Results         []resultPayload `json:"results" binding:"required"`
	DurationSeconds int             `json:"durationSeconds"`
}

// SubmitPractice serves POST /api/users/:id/sessions.
func (h *Handler) SubmitPractice(c *gin.Context) {
	userID := c.Param("id")
	var body practicePayload
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	op, ok := h.operatorQuery(c, body.Operator)
	if !ok {
		return
	}

	sum, err := h.svc.SubmitPractice(c.Request.Context(), userID, op, body.Grade,
		toResults(body.Results), body.DurationSeconds)
	if err != nil {
		h.fail(c, "submit practice", err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

type microTokenPayload struct {
	Operator     string `json:"operator" binding:"required"`
	CorrectCount int    `json:"correctCount"`
}

// MicroTokens serves POST /api/users/:id/micro-tokens.
func (h *Handler) MicroTokens(c *gin.Context) {
	userID := c.Param("id")
	var body microTokenPayload
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	op, ok := h.operatorQuery(c, body.Operator)
	if !ok {
		return
	}

	tokens, err := h.svc.MicroTokens(c.Request.Context(), userID, op, body.CorrectCount)
	if err != nil {
		h.fail(c, "micro tokens", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokensAwarded": tokens})
}

// Mastery serves GET /api/users/:id/mastery/:operator.
func (h *Handler) Mastery(c *gin.Context) {
	userID := c.Param("id")
	op, ok := h.operatorQuery(c, c.Param("operator"))
	if !ok {
		return
	}
	grade, ok := h.gradeQuery(c, c.DefaultQuery("grade", "0"))
	if !ok {
		return
	}

	rec, err := h.svc.Mastery(c.Request.Context(), userID, op, grade)
	if err != nil {
		h.fail(c, "load mastery", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"operator":       rec.Operator,
		"testTaken":      rec.TestTaken,
		"masteryLevel":   rec.MasteryLevel,
		"typesComplete":  rec.TypesComplete,
		"tokensEarned":   rec.TokensEarned,
		"totalAnswered":  rec.TotalAnswered,
		"correctAnswers": rec.CorrectAnswers,
		"streakBest":     rec.StreakBest,
	})
}

// ResetSeen serves POST /api/users/:id/seen/:operator/reset.
func (h *Handler) ResetSeen(c *gin.Context) {
	op, ok := h.operatorQuery(c, c.Param("operator"))
	if !ok {
		return
	}
	h.svc.ResetSeen(c.Param("id"), op)
	c.Status(http.StatusNoContent)
}

func (h *Handler) operatorQuery(c *gin.Context, raw string) (numrange.Operation, bool) {
	op, err := numrange.ParseOperation(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return op, true
}

func (h *Handler) gradeQuery(c *gin.Context, raw string) (int, bool) {
	grade, err := strconv.Atoi(raw)
	if err != nil || grade < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "grade must be a non-negative integer"})
		return 0, false
	}
	return grade, true
}

// fail maps service errors to responses. Save failures must reach the
// client as explicit errors so earned tokens are never silently dropped.
func (h *Handler) fail(c *gin.Context, action string, err error) {
	if errors.Is(err, numrange.ErrUnknownOperation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.log.Error(action, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": action + " failed, please retry"})
}

func toResults(in []resultPayload) []progression.Result {
	out := make([]progression.Result, len(in))
	for i, r := range in {
		out[i] = progression.Result{Stage: r.Stage, Correct: r.Correct}
	}
	return out
}
