// Package factory создаёт LLM провайдеров по описанию модели из config.yaml.
package factory

import (
	"errors"
	"fmt"

	"github.com/ilkoid/poncho-trends/pkg/config"
	"github.com/ilkoid/poncho-trends/pkg/llm"
	"github.com/ilkoid/poncho-trends/pkg/llm/openai"
)

// ErrMissingAPIKey - у модели не задан api_key (обычно не выставлен OPENAI_API_KEY).
var ErrMissingAPIKey = errors.New("model api key is not set")

// NewLLMProvider создает провайдера на основе конфигурации модели.
//
// Все поддерживаемые провайдеры говорят на OpenAI-совместимом API,
// отличаются только base_url.
func NewLLMProvider(modelDef config.ModelDef) (llm.Provider, error) {
	if modelDef.APIKey == "" {
		return nil, fmt.Errorf("%w (provider %q, model %q)", ErrMissingAPIKey, modelDef.Provider, modelDef.ModelName)
	}

	switch modelDef.Provider {
	case "openai", "zai", "deepseek", "openrouter":
		return openai.NewClient(modelDef), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s", modelDef.Provider)
	}
}
