// internal/workers/ai-conversation/classify-question/config.go
package classifyquestion

type Config struct {
	// MinScore below which the question is reported as unknown.
	MinScore int
}

func LoadConfig() *Config {
	return &Config{MinScore: 1}
}
