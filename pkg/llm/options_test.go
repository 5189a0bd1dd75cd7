package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyOverridesDefaults(t *testing.T) {
	base := GenerateOptions{Model: "gpt-4o", Temperature: 0, MaxTokens: 2000}

	got := Apply(base, WithModel("gpt-4o-mini"), WithTemperature(0.3), nil, WithFormat("json_object"))

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 0.3, got.Temperature)
	assert.Equal(t, 2000, got.MaxTokens)
	assert.Equal(t, "json_object", got.Format)
	assert.Equal(t, "gpt-4o", base.Model, "base must not change")
}

func TestMessageHasToolCalls(t *testing.T) {
	assert.False(t, Message{Role: RoleAssistant, Content: "done"}.HasToolCalls())
	assert.True(t, Message{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "1", Name: "pdf_generator"}}}.HasToolCalls())
}
