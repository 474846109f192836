// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler reports a failed chat job back to the broker.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError fails the job with retries for retryable codes and throws
// a BPMN error otherwise. Broker send failures are logged, not returned.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := asStandardError(err)
	bpmnErr := ConvertToBPMNError(stdErr)
	retries := remainingRetries(GetRetryCount(stdErr.Code), job.Retries)

	h.logger.Error("chat job failed", map[string]interface{}{
		"jobKey":        job.Key,
		"jobType":       job.Type,
		"processKey":    job.ProcessInstanceKey,
		"errorCode":     string(stdErr.Code),
		"bpmnErrorCode": bpmnErr.Code,
		"errorCategory": GetErrorCategory(stdErr.Code),
		"details":       stdErr.Details,
		"retries":       retries,
	})

	vars := errorVariables(bpmnErr)

	var sendErr error
	if retries > 0 {
		cmd := client.NewFailJobCommand().JobKey(job.Key).Retries(int32(retries)).ErrorMessage(bpmnErr.Message)
		withVars, verr := cmd.VariablesFromString(vars)
		if vars != "" && verr == nil {
			_, sendErr = withVars.Send(ctx)
		} else {
			_, sendErr = cmd.Send(ctx)
		}
	} else {
		cmd := client.NewThrowErrorCommand().JobKey(job.Key).ErrorCode(bpmnErr.Code).ErrorMessage(bpmnErr.Message)
		withVars, verr := cmd.VariablesFromString(vars)
		if vars != "" && verr == nil {
			_, sendErr = withVars.Send(ctx)
		} else {
			_, sendErr = cmd.Send(ctx)
		}
	}
	h.logSendFailure(job, sendErr)
}

func (h *ErrorHandler) logSendFailure(job entities.Job, err error) {
	if err == nil {
		return
	}
	h.logger.Error("failed to report job error", map[string]interface{}{
		"jobKey": job.Key,
		"error":  err.Error(),
	})
}

// remainingRetries is the retry count to report after this failure: one less
// than the job has left, capped by the code's budget. Zero means the error is
// thrown instead of retried.
func remainingRetries(budget int, jobRetries int32) int {
	left := int(jobRetries) - 1
	if budget <= 0 || left <= 0 {
		return 0
	}
	if left < budget {
		return left
	}
	return budget
}

// errorVariables encodes the BPMN error variables, or "" when there are none.
func errorVariables(bpmnErr *BPMNError) string {
	vars := bpmnErr.ToErrorVariables()
	if len(vars) == 0 {
		return ""
	}
	b, err := json.Marshal(vars)
	if err != nil {
		return ""
	}
	return string(b)
}

func asStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}
