// internal/workers/ai-conversation/answer-question/config.go
package answerquestion

import "time"

type Config struct {
	Timeout          time.Duration
	MaxMessageLength int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:          45 * time.Second,
		MaxMessageLength: 2000,
	}
}
