// internal/workers/ai-conversation/answer-question/handler.go
package answerquestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "youthunion-chat/internal/common/errors"
	"youthunion-chat/internal/common/metrics"
	"youthunion-chat/internal/common/validation"
	"youthunion-chat/internal/queryrouter"
)

const (
	TaskType = "answer-chat-question"
	source   = "zeebe"
)

var (
	ErrInvalidQuestion = errors.New("INVALID_QUESTION")
)

const inputSchema = `{
	"type": "object",
	"required": ["message"],
	"properties": {
		"message": {"type": "string", "minLength": 1, "maxLength": %d}
	}
}`

// Asker answers one question; it never fails.
type Asker interface {
	Answer(ctx context.Context, query string) queryrouter.Result
}

// QuestionRecorder receives per-question metrics.
type QuestionRecorder interface {
	RecordQuestion(ctx context.Context, source, intent, outcome string, elapsed time.Duration)
}

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config     *Config
	asker      Asker
	recorder   QuestionRecorder
	schema     *validation.Schema
	errHandler *apperrors.ErrorHandler
	logger     Logger
}

func NewHandler(config *Config, asker Asker, recorder QuestionRecorder, log Logger) *Handler {
	if config.MaxMessageLength <= 0 {
		config.MaxMessageLength = LoadConfig().MaxMessageLength
	}
	l := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:     config,
		asker:      asker,
		recorder:   recorder,
		schema:     validation.MustCompile(fmt.Sprintf(inputSchema, config.MaxMessageLength)),
		errHandler: apperrors.NewErrorHandler(l),
		logger:     l,
	}
}

// Handle completes the job with the answer. An invalid message throws the
// INVALID_QUESTION BPMN error; the returned error is for logging only.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job.Variables)
	if err != nil {
		metrics.QuestionsTotal.WithLabelValues("", metrics.OutcomeRejected).Inc()
		h.errHandler.HandleJobError(ctx, client, job, apperrors.NewInvalidQuestionError(err.Error()))
		return err
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	return h.completeJob(ctx, client, job, output)
}

func (h *Handler) parseInput(variables string) (*Input, error) {
	result, err := h.schema.ValidateJSON([]byte(variables))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuestion, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidQuestion, result.Error())
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, fmt.Errorf("%w: parse input: %v", ErrInvalidQuestion, err)
	}
	input.Message = strings.TrimSpace(input.Message)
	if input.Message == "" {
		return nil, fmt.Errorf("%w: message is blank", ErrInvalidQuestion)
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	res := h.asker.Answer(ctx, input.Message)
	if h.recorder != nil {
		h.recorder.RecordQuestion(ctx, source, res.Analysis.Intent, res.Outcome, res.Duration)
	}

	h.logger.Info("question answered", map[string]interface{}{
		"intent":  res.Analysis.Intent,
		"outcome": res.Outcome,
	})

	return &Output{
		Response: res.Answer,
		Intent:   res.Analysis.Intent,
		Params:   res.Analysis.Params,
		Outcome:  res.Outcome,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) ParseInput(variables string) (*Input, error) {
	return h.parseInput(variables)
}
