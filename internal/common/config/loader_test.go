package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
data_api:
  base_url: http://django:8000/api/
genai:
  provider: http
  base_url: http://genai:8080
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, ":9999", cfg.Server.Address())
	assert.Equal(t, 60, cfg.Cache.ExpiryMinutes)
	assert.Equal(t, 30, cfg.Cache.RefreshIntervalMinutes)
	assert.Equal(t, 50, cfg.Cache.FetchPageSize)
	assert.Equal(t, 10000, cfg.DataAPI.Timeout)
	assert.Equal(t, 30000, cfg.GenAI.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromFile_ExpandsEnv(t *testing.T) {
	t.Setenv("CHAT_TEST_API_PASSWORD", "s3cret")
	path := writeConfig(t, `
data_api:
  base_url: http://django:8000/api/
  username: chatbot
  password: ${CHAT_TEST_API_PASSWORD}
genai:
  provider: ollama
  model: llama3
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.DataAPI.Password)
	assert.Equal(t, "llama3", cfg.GenAI.Model)
}

func TestLoadFromFile_UnsetPlaceholderFallsBackToWellKnownEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://from-env:8000/api/")
	path := writeConfig(t, `
data_api:
  base_url: ${CHAT_TEST_UNSET_BASE_URL}
genai:
  provider: ollama
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:8000/api/", cfg.DataAPI.BaseURL)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{
			DataAPI: DataAPIConfig{BaseURL: "http://django/api/"},
			GenAI:   GenAIConfig{Provider: "http", BaseURL: "http://genai"},
		}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown provider", func(c *Config) { c.GenAI.Provider = "bard" }, "not supported"},
		{"googleai without key", func(c *Config) { c.GenAI.Provider = "googleai" }, "genai.api_key"},
		{"http without base url", func(c *Config) { c.GenAI.BaseURL = "" }, "genai.base_url"},
		{"snapshot without redis", func(c *Config) { c.Cache.RedisSnapshot = true }, "database.redis.address"},
		{"transcript without postgres", func(c *Config) { c.Transcript.Enabled = true }, "database.postgres.host"},
		{"camunda without broker", func(c *Config) { c.Camunda.Enabled = true }, "camunda.broker_address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetWorkerConfig(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"answer-chat-question": {Enabled: false, MaxJobsActive: 2},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "answer-chat-question"))
	assert.True(t, IsWorkerEnabled(cfg, "unknown"))
	assert.Equal(t, 2, GetWorkerConfig(cfg, "answer-chat-question").MaxJobsActive)
	assert.Equal(t, 5, GetWorkerConfig(cfg, "unknown").MaxJobsActive)
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "chat", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=chat sslmode=disable", p.GetDSN())
}
