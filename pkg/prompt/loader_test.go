package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-trends/pkg/llm"
)

func TestResolve_BuiltinMarketTrends(t *testing.T) {
	pf, err := Resolve("", "")
	require.NoError(t, err)

	system, user, err := pf.Split(ReportData{
		Topic:       "AI in healthcare",
		Recipient:   "x@y.z",
		ReportFile:  "market_trends_report.pdf",
		ReportTitle: "Market Trends Report",
	})
	require.NoError(t, err)

	assert.Contains(t, system, "`duckduckgo_search`")
	assert.Contains(t, system, "The `filename` MUST be `market_trends_report.pdf`")
	assert.Contains(t, system, "The `title` MUST be `Market Trends Report`")
	assert.Contains(t, system, "'Market Trends Report for: AI in healthcare'")
	assert.Contains(t, system, "'Please find the attached market trends report.'")
	assert.Contains(t, system, "['market_trends_report.pdf']")
	assert.Contains(t, system, "The `recipient_email` MUST be 'x@y.z'")
	assert.Equal(t, "Topic: AI in healthcare\nRecipient Email: x@y.z\n", user)

	opts := llm.Apply(llm.GenerateOptions{Temperature: 0.7}, pf.Options()...)
	assert.Equal(t, 0.0, opts.Temperature)
}

func TestResolve_OverrideFromDir(t *testing.T) {
	dir := t.TempDir()
	custom := "config:\n  model: gpt-4o-mini\nmessages:\n  - role: system\n    content: short policy\n  - role: user\n    content: \"{{.Topic}}\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte(custom), 0o644))

	pf, err := Resolve(dir, "")
	require.NoError(t, err)

	system, user, err := pf.Split(ReportData{Topic: "edge AI"})
	require.NoError(t, err)
	assert.Equal(t, "short policy", system)
	assert.Equal(t, "edge AI", user)
	assert.Equal(t, "gpt-4o-mini", llm.Apply(llm.GenerateOptions{}, pf.Options()...).Model)
}

func TestResolve_Errors(t *testing.T) {
	_, err := Resolve("", "nope.yaml")
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "prompt file not found")

	_, err = Parse([]byte("messages: []"))
	assert.Error(t, err)

	pf := &PromptFile{Messages: []Message{{Role: "user", Content: "{{.Unknown}}"}}}
	_, err = pf.RenderMessages(ReportData{})
	assert.Error(t, err)

	pf = &PromptFile{Messages: []Message{{Role: "system", Content: "only system"}}}
	_, _, err = pf.Split(nil)
	assert.Error(t, err)
}
