// internal/workers/ai-conversation/answer-question/models.go
package answerquestion

type Input struct {
	Message string `json:"message"`
}

type Output struct {
	Response string            `json:"response"`
	Intent   string            `json:"intent"`
	Params   map[string]string `json:"params,omitempty"`
	Outcome  string            `json:"outcome"`
}
