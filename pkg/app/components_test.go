package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-trends/pkg/chain"
	"github.com/ilkoid/poncho-trends/pkg/config"
	"github.com/ilkoid/poncho-trends/pkg/factory"
	"github.com/ilkoid/poncho-trends/pkg/llm"
	"github.com/ilkoid/poncho-trends/pkg/search"
)

const testConfig = `
models:
  default_chat: gpt
  definitions:
    gpt:
      provider: openai
      model_name: gpt-4o
      api_key: %s
tools:
  email_sender:
    enabled: true
    timeout: 90s
agent:
  max_iterations: 4
`

func parse(t *testing.T, apiKey string, extra string) *config.AppConfig {
	t.Helper()
	cfg, err := config.Parse(sprintf(testConfig, apiKey) + extra)
	require.NoError(t, err)
	return cfg
}

func sprintf(format, key string) string {
	if key == "" {
		key = `""`
	}
	return fmt.Sprintf(format, key)
}

func chainInput(system, user string) chain.ChainInput {
	return chain.ChainInput{SystemPrompt: system, UserQuery: user}
}

type nopProvider struct{}

func (nopProvider) Generate(ctx context.Context, messages []llm.Message, opts ...any) (llm.Message, error) {
	return llm.Message{Role: llm.RoleAssistant, Content: "done"}, nil
}

type stubSearcher struct{}

func (stubSearcher) Search(ctx context.Context, query string) ([]search.Result, error) {
	return nil, nil
}

func TestInitialize_MissingAPIKey(t *testing.T) {
	cfg := parse(t, "", "")
	_, err := Initialize(cfg)
	assert.ErrorIs(t, err, factory.ErrMissingAPIKey)
}

func TestInitialize_WithKey(t *testing.T) {
	cfg := parse(t, "sk-test", "")
	c, err := Initialize(cfg)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, []string{"duckduckgo_search", "email_sender", "pdf_generator"}, c.Registry.Names())
	assert.Nil(t, c.Archive)
	assert.Nil(t, c.Journal)
}

func TestAssemble_DisabledToolAndJournal(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	cfg := parse(t, "sk-test", "journal:\n  path: "+dbPath+"\n")
	cfg.Tools["duckduckgo_search"] = config.ToolConfig{Enabled: false}

	c, err := Assemble(cfg, nopProvider{}, ToolDeps{Searcher: stubSearcher{}})
	require.NoError(t, err)

	assert.Equal(t, []string{"email_sender", "pdf_generator"}, c.Registry.Names())
	require.NotNil(t, c.Journal)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestAssemble_PromptAndReportDefaults(t *testing.T) {
	cfg := parse(t, "sk-test", "")
	c, err := Assemble(cfg, nopProvider{}, ToolDeps{Searcher: stubSearcher{}})
	require.NoError(t, err)
	defer c.Close()

	data := c.ReportData("EV batteries", "a@b.co")
	assert.Equal(t, "market_trends_report.pdf", data.ReportFile)
	assert.Equal(t, "Market Trends Report", data.ReportTitle)

	system, user, err := c.Prompt.Split(data)
	require.NoError(t, err)
	assert.Contains(t, system, "Market Trends Report for: EV batteries")
	assert.Contains(t, user, "Recipient Email: a@b.co")

	out, err := c.Cycle.Execute(context.Background(), chainInput(system, user))
	require.NoError(t, err)
	assert.Equal(t, "done", out.Result)
}

func TestAssemble_MissingPrompt(t *testing.T) {
	cfg := parse(t, "sk-test", "")
	cfg.Agent.Prompt = "nope.yaml"
	_, err := Assemble(cfg, nopProvider{}, ToolDeps{Searcher: stubSearcher{}})
	assert.Error(t, err)
}

func TestDefaultConfigPathFinder_Flag(t *testing.T) {
	f := &DefaultConfigPathFinder{ConfigFlag: "custom.yaml"}
	assert.True(t, filepath.IsAbs(f.FindConfigPath()))
	assert.Equal(t, "custom.yaml", filepath.Base(f.FindConfigPath()))
}
