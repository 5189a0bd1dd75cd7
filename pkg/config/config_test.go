package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("EMAIL_ADDRESS", "bot@example.com")
	t.Setenv("EMAIL_PASSWORD", "app-password")
	t.Setenv("SMTP_SERVER", "smtp.example.com")
	t.Setenv("SMTP_PORT", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	model, ok := cfg.GetChatModel("")
	require.True(t, ok)
	assert.Equal(t, "gpt-4o", model.ModelName)
	assert.Equal(t, "sk-test", model.APIKey)

	assert.Equal(t, "bot@example.com", cfg.Mail.Address)
	assert.Equal(t, "smtp.example.com", cfg.Mail.Server)
	assert.Equal(t, 0, cfg.Mail.Port, "empty SMTP_PORT stays zero until defaults")
	assert.Equal(t, 587, cfg.Mail.GetDefaults().Port)
}

func TestLoad_ExpandsEnvInFile(t *testing.T) {
	t.Setenv("TEST_SMTP_PORT", "2525")
	t.Setenv("TEST_KEY", "k-123")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
models:
  default_chat: local
  definitions:
    local:
      model_name: llama
      api_key: ${TEST_KEY}
      base_url: http://localhost:11434/v1
mail:
  server: relay.local
  port: ${TEST_SMTP_PORT}
agent:
  tool_timeout: 5s
tools:
  pdf_generator:
    enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2525, cfg.Mail.Port)
	assert.Equal(t, "k-123", cfg.Models.Definitions["local"].APIKey)
	assert.Equal(t, 5*time.Second, cfg.Agent.ToolTimeout)
	assert.False(t, cfg.IsToolEnabled("pdf_generator"))
	assert.True(t, cfg.IsToolEnabled("email_sender"), "tools without an entry stay enabled")
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "no default model",
			yaml:    "models: {}",
			wantErr: "models.default_chat is required",
		},
		{
			name: "undefined default model",
			yaml: `
models:
  default_chat: ghost
`,
			wantErr: "is not defined in definitions",
		},
		{
			name: "s3 without endpoint",
			yaml: `
models:
  default_chat: m
  definitions:
    m: {model_name: m}
s3:
  bucket: reports
`,
			wantErr: "s3.endpoint is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.yaml)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSectionDefaults(t *testing.T) {
	search := (&SearchConfig{}).GetDefaults()
	assert.Equal(t, "https://lite.duckduckgo.com/lite/", search.Endpoint)
	assert.Equal(t, 5, search.MaxResults)

	report := (&ReportConfig{WrapWidth: 60}).GetDefaults()
	assert.Equal(t, 60, report.WrapWidth, "explicit values are kept")
	assert.Equal(t, "Document", report.DefaultTitle)
	assert.Equal(t, "market_trends_report.pdf", report.FileName)

	agent := (&AgentConfig{}).GetDefaults()
	assert.Equal(t, 10, agent.MaxIterations)
}

// TestParse_SecretsWithYAMLSyntax - значения переменных подставляются после
// разбора YAML и не ломают его.
func TestParse_SecretsWithYAMLSyntax(t *testing.T) {
	passwords := []string{"#s3cret", "ab #cd", "p@ss: word", "[abc", "{x}", "'q\"", "true", "123456", "null"}

	for _, pw := range passwords {
		t.Run(pw, func(t *testing.T) {
			t.Setenv("OPENAI_API_KEY", "sk-test")
			t.Setenv("EMAIL_ADDRESS", "bot@example.com")
			t.Setenv("EMAIL_PASSWORD", pw)
			t.Setenv("SMTP_SERVER", "smtp.example.com")
			t.Setenv("SMTP_PORT", "2525")

			cfg, err := Parse(defaultConfigYAML)
			require.NoError(t, err)
			assert.Equal(t, pw, cfg.Mail.Password)
			assert.Equal(t, "bot@example.com", cfg.Mail.Address)
			assert.Equal(t, 2525, cfg.Mail.Port)
		})
	}
}

func TestParse_QuotedValueStaysString(t *testing.T) {
	t.Setenv("TEST_MODEL", "42")

	cfg, err := Parse(`
models:
  default_chat: m
  definitions:
    m:
      model_name: "${TEST_MODEL}"
search:
  timeout: 3s
`)
	require.NoError(t, err)
	assert.Equal(t, "42", cfg.Models.Definitions["m"].ModelName)
	assert.Equal(t, 3*time.Second, cfg.Search.Timeout)
}
