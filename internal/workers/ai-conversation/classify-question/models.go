// internal/workers/ai-conversation/classify-question/models.go
package classifyquestion

type Input struct {
	Question string `json:"question"`
}

type Output struct {
	IntentAnalysis IntentAnalysis    `json:"intentAnalysis"`
	Params         map[string]string `json:"params"`
	Expressions    []string          `json:"expressions"`
	DataSource     DataSource        `json:"dataSource"`
}

type IntentAnalysis struct {
	PrimaryIntent string `json:"primaryIntent"`
	Score         int    `json:"score"`
	Corrected     string `json:"corrected"`
}

// DataSource is the Data API operation the intent maps to. Empty for unknown.
type DataSource struct {
	Endpoint string `json:"endpoint,omitempty"`
	Method   string `json:"method,omitempty"`
	Route    string `json:"route,omitempty"`
}
