package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 0.5, cfg.Orchestrator.MinConfidence)
	assert.Equal(t, 4, cfg.Retrieval.TopK)
	assert.Equal(t, "general_query", cfg.LLM.PromptTemplate)
	assert.Equal(t, 45*time.Second, cfg.Orchestrator.GenerationTimeout)
	assert.False(t, cfg.Moderation.FailClosed)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
server:
  port: "9090"
orchestrator:
  min_confidence: 0.7
  request_timeout: 5s
llm:
  model: "gpt-test"
`)
	t.Setenv("CHATBOT_LLM_MODEL", "gpt-from-env")
	t.Setenv("CHATBOT_LLM_API_KEY", "sk-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 0.7, cfg.Orchestrator.MinConfidence)
	assert.Equal(t, 5*time.Second, cfg.Orchestrator.RequestTimeout)
	assert.Equal(t, "gpt-from-env", cfg.LLM.Model)
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
}

func TestLoad_SecretsFileMerged(t *testing.T) {
	dir := t.TempDir()
	secrets := writeFile(t, dir, "secrets.json", `{"llm": {"api_key": "sk-secret"}, "jwt": {"secret": "s3cr3t"}}`)
	path := writeFile(t, dir, "config.yaml", "secrets:\n  file: \""+secrets+"\"\nllm:\n  model: \"m\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-secret", cfg.LLM.APIKey)
	assert.Equal(t, "s3cr3t", cfg.JWT.Secret)
	assert.Equal(t, "m", cfg.LLM.Model)
}

func TestLoad_InvalidThreshold(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "orchestrator:\n  min_confidence: 1.5\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_confidence")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
