package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"youthunion-chat/internal/common/metrics"
	"youthunion-chat/internal/models"
	"youthunion-chat/internal/queryrouter"
	"youthunion-chat/internal/transcript"
)

// MissingMessageError is the body of a 400 answer to /api/chat/ask.
const MissingMessageError = "Thiếu thông tin tin nhắn"

const source = "http"

// Asker answers one question and never fails.
type Asker interface {
	Answer(ctx context.Context, query string) queryrouter.Result
}

// QuestionRecorder receives per-question metrics.
type QuestionRecorder interface {
	RecordQuestion(ctx context.Context, source, intent, outcome string, elapsed time.Duration)
}

// IntentLister lists the recognizable intents.
type IntentLister interface {
	Summaries() []models.IntentSummary
}

// History returns recently answered questions.
type History interface {
	Recent(ctx context.Context, limit int) ([]transcript.Entry, error)
}

// ChatHandler serves the chat endpoints.
type ChatHandler struct {
	asker    Asker
	recorder QuestionRecorder
	intents  IntentLister
	history  History
	timeout  time.Duration
}

// NewChatHandler creates a ChatHandler. recorder and history may be nil.
func NewChatHandler(asker Asker, recorder QuestionRecorder, intents IntentLister, history History, timeout time.Duration) *ChatHandler {
	return &ChatHandler{
		asker:    asker,
		recorder: recorder,
		intents:  intents,
		history:  history,
		timeout:  timeout,
	}
}

// Ask handles POST /api/chat/ask.
func (h *ChatHandler) Ask(c *gin.Context) {
	var req models.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		metrics.QuestionsTotal.WithLabelValues("", metrics.OutcomeRejected).Inc()
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: MissingMessageError})
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	res := h.asker.Answer(ctx, req.Message)
	if h.recorder != nil {
		h.recorder.RecordQuestion(ctx, source, res.Analysis.Intent, res.Outcome, res.Duration)
	}
	if res.Err != nil {
		_ = c.Error(res.Err)
	}

	c.JSON(http.StatusOK, models.AskResponse{Response: res.Answer})
}

// Intents handles GET /api/chat/intents.
func (h *ChatHandler) Intents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"intents": h.intents.Summaries()})
}

// History handles GET /api/chat/history?limit=N.
func (h *ChatHandler) History(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "transcript storage is disabled"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	entries, err := h.history.Recent(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Lỗi server khi đọc lịch sử"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}
