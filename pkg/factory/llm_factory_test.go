package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-trends/pkg/config"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider(config.ModelDef{Provider: "openai", ModelName: "gpt-4o", APIKey: "sk-test"})
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestNewLLMProvider_MissingKey(t *testing.T) {
	_, err := NewLLMProvider(config.ModelDef{Provider: "openai", ModelName: "gpt-4o"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestNewLLMProvider_UnknownProvider(t *testing.T) {
	_, err := NewLLMProvider(config.ModelDef{Provider: "bard", APIKey: "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider type")
}
