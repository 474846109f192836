// internal/models/chat.go
package models

// AskRequest is the body of POST /api/chat/ask.
type AskRequest struct {
	Message string `json:"message"`
}

// AskResponse carries the generated answer.
type AskResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is returned with 4xx/5xx statuses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// IntentSummary describes one lexicon entry for GET /api/chat/intents.
type IntentSummary struct {
	Intent      string            `json:"intent"`
	Endpoint    string            `json:"endpoint"`
	Method      string            `json:"method"`
	Description string            `json:"description,omitempty"`
	Defaults    map[string]string `json:"defaults,omitempty"`
	Keywords    int               `json:"keywords"`
}
