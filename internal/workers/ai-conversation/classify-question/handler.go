// internal/workers/ai-conversation/classify-question/handler.go
package classifyquestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "youthunion-chat/internal/common/errors"
	"youthunion-chat/internal/common/metrics"
	"youthunion-chat/internal/intent"
)

const (
	TaskType = "classify-chat-question"
)

var (
	ErrInvalidQuestion = errors.New("INVALID_QUESTION")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config     *Config
	analyzer   *intent.Analyzer
	errHandler *apperrors.ErrorHandler
	logger     Logger
}

func NewHandler(config *Config, analyzer *intent.Analyzer, log Logger) *Handler {
	l := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:     config,
		analyzer:   analyzer,
		errHandler: apperrors.NewErrorHandler(l),
		logger:     l,
	}
}

// Handle classifies the question offline, without calling the Data API or
// the generative model, so a process can branch on the intent.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx := context.Background()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		err = fmt.Errorf("%w: parse input: %v", ErrInvalidQuestion, err)
		h.errHandler.HandleJobError(ctx, client, job, apperrors.NewInvalidQuestionError(err.Error()))
		return err
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, apperrors.NewInvalidQuestionError(err.Error()))
		return err
	}

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

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", ErrInvalidQuestion)
	}

	analysis := h.analyzer.Analyze(question)
	if analysis.Known() && analysis.Score < h.config.MinScore {
		analysis.Intent = intent.Unknown
		analysis.Params = nil
	}

	output := &Output{
		IntentAnalysis: IntentAnalysis{
			PrimaryIntent: analysis.Intent,
			Score:         analysis.Score,
			Corrected:     analysis.Corrected,
		},
		Params:      map[string]string{},
		Expressions: analysis.Expressions,
	}
	if output.Expressions == nil {
		output.Expressions = []string{}
	}
	for k, v := range analysis.Params {
		output.Params[k] = v
	}

	if def, ok := h.analyzer.Lexicon().Find(analysis.Intent); ok {
		output.DataSource = DataSource{
			Endpoint: def.APIEndpoint,
			Method:   def.HTTPMethod,
			Route:    string(def.Route),
		}
	}

	h.logger.Info("question classified", map[string]interface{}{
		"intent": analysis.Intent,
		"score":  analysis.Score,
		"params": output.Params,
	})

	return output, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
