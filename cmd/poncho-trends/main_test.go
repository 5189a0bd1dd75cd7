package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-trends/pkg/config"
	"github.com/ilkoid/poncho-trends/pkg/journal"
)

func historyConfig(t *testing.T, journalPath string) *config.AppConfig {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := config.Parse(`
models:
  default_chat: m
  definitions:
    m:
      model_name: gpt-4o
      api_key: ${OPENAI_API_KEY}
`)
	require.NoError(t, err)
	cfg.Journal.Path = journalPath
	return cfg
}

// TestPrintHistory_NoModelKey - журнал читается без ключа модели.
func TestPrintHistory_NoModelKey(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	j, err := journal.Open(path)
	require.NoError(t, err)
	run, err := j.Start(ctx, "EV batteries", "a@b.co")
	require.NoError(t, err)
	require.NoError(t, j.Finish(ctx, run.ID, "sent", nil))
	require.NoError(t, j.Close())

	var out bytes.Buffer
	require.NoError(t, printHistory(ctx, &out, historyConfig(t, path), 10))

	assert.Contains(t, out.String(), "STATUS")
	assert.Contains(t, out.String(), "EV batteries")
	assert.Contains(t, out.String(), "done")
}

func TestPrintHistory_JournalDisabled(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printHistory(context.Background(), &out, historyConfig(t, ""), 10))

	assert.Contains(t, out.String(), "Run journal is disabled")
}
