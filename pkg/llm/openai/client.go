// Package openai реализует адаптер LLM провайдера для OpenAI-совместимых API.
//
// Поддерживает Function Calling (tools) для интеграции с агентом.
// Соблюдает правило 4: работает только через интерфейс llm.Provider.
package openai

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/ilkoid/poncho-trends/pkg/config"
	"github.com/ilkoid/poncho-trends/pkg/llm"
	"github.com/ilkoid/poncho-trends/pkg/tools"
	"github.com/ilkoid/poncho-trends/pkg/utils"
	openai "github.com/sashabaranov/go-openai"
)

// Client реализует интерфейс llm.Provider для OpenAI-совместимых API.
type Client struct {
	api      *openai.Client
	defaults llm.GenerateOptions
}

// NewClient создает OpenAI клиент на основе конфигурации модели.
//
// Правило 2: все настройки из конфигурации, никакого хардкода.
func NewClient(modelDef config.ModelDef) *Client {
	cfg := openai.DefaultConfig(modelDef.APIKey)
	// Поддержка custom BaseURL для OpenAI-совместимых провайдеров
	if modelDef.BaseURL != "" {
		cfg.BaseURL = modelDef.BaseURL
	}
	if modelDef.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: modelDef.Timeout}
	}

	return &Client{
		api: openai.NewClientWithConfig(cfg),
		defaults: llm.GenerateOptions{
			Model:       modelDef.ModelName,
			Temperature: modelDef.Temperature,
			MaxTokens:   modelDef.MaxTokens,
		},
	}
}

// requestTemperature переводит температуру в поле запроса.
//
// Temperature в go-openai помечено omitempty: 0 не уходит в API, и сервер
// подставляет свой дефолт 1. Ноль отправляем как наименьшее ненулевое число.
func requestTemperature(t float64) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

// Model возвращает имя модели по умолчанию.
func (c *Client) Model() string {
	return c.defaults.Model
}

// Generate выполняет запрос к API и возвращает ответ модели.
//
// opts принимает []tools.ToolDefinition и llm.GenerateOption в любом порядке.
//
// Алгоритм:
//  1. Конвертирует сообщения в формат OpenAI SDK
//  2. Разбирает opts: описания tools и переопределения параметров
//  3. Вызывает API
//  4. Конвертирует ответ обратно, извлекая ToolCalls
//
// Правило 7: все ошибки возвращаются, никаких panic.
func (c *Client) Generate(ctx context.Context, messages []llm.Message, opts ...any) (llm.Message, error) {
	startTime := time.Now()

	var (
		toolDefs  []tools.ToolDefinition
		overrides []llm.GenerateOption
	)
	for _, opt := range opts {
		switch v := opt.(type) {
		case []tools.ToolDefinition:
			toolDefs = append(toolDefs, v...)
		case llm.GenerateOption:
			overrides = append(overrides, v)
		case nil:
		default:
			return llm.Message{}, fmt.Errorf("invalid tools type: expected []tools.ToolDefinition or llm.GenerateOption, got %T", opt)
		}
	}
	params := llm.Apply(c.defaults, overrides...)

	utils.Debug("LLM request started",
		"model", params.Model,
		"messages_count", len(messages),
		"tools_count", len(toolDefs))

	openaiMsgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		openaiMsgs[i] = mapToOpenAI(m)
	}

	req := openai.ChatCompletionRequest{
		Model:       params.Model,
		Messages:    openaiMsgs,
		Temperature: requestTemperature(params.Temperature),
		MaxTokens:   params.MaxTokens,
	}
	if params.Format == "json_object" {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	if len(toolDefs) > 0 {
		req.Tools = convertToolsToOpenAI(toolDefs)
		// LLM сама решает, когда вызывать tools
		req.ToolChoice = "auto"
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		utils.Error("LLM API request failed",
			"error", err,
			"model", params.Model,
			"duration_ms", time.Since(startTime).Milliseconds())
		return llm.Message{}, fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return llm.Message{}, fmt.Errorf("no choices in response")
	}

	result := mapFromOpenAI(resp.Choices[0].Message)

	utils.Info("LLM response received",
		"model", params.Model,
		"tool_calls_count", len(result.ToolCalls),
		"content_length", len(result.Content),
		"duration_ms", time.Since(startTime).Milliseconds())

	return result, nil
}

// mapToOpenAI конвертирует внутреннее сообщение в формат SDK.
func mapToOpenAI(m llm.Message) openai.ChatCompletionMessage {
	msg := openai.ChatCompletionMessage{
		Role:       string(m.Role),
		Content:    m.Content,
		ToolCallID: m.ToolCallID,
	}

	for _, tc := range m.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
			ID:   tc.ID,
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      tc.Name,
				Arguments: tc.Args,
			},
		})
	}

	return msg
}

// mapFromOpenAI конвертирует ответ SDK во внутреннее сообщение.
func mapFromOpenAI(choice openai.ChatCompletionMessage) llm.Message {
	role := llm.Role(choice.Role)
	if role == "" {
		role = llm.RoleAssistant
	}

	result := llm.Message{
		Role:    role,
		Content: choice.Content,
	}

	if len(choice.ToolCalls) > 0 {
		result.ToolCalls = make([]llm.ToolCall, len(choice.ToolCalls))
		for i, tc := range choice.ToolCalls {
			result.ToolCalls[i] = llm.ToolCall{
				ID:   tc.ID,
				Name: tc.Function.Name,
				Args: tc.Function.Arguments,
			}
		}
	}

	return result
}

// convertToolsToOpenAI конвертирует определения инструментов
// в формат OpenAI Function Calling.
//
// ToolDefinition.Parameters уже является JSON Schema объектом,
// поэтому передаётся в SDK напрямую.
func convertToolsToOpenAI(defs []tools.ToolDefinition) []openai.Tool {
	result := make([]openai.Tool, len(defs))

	for i, def := range defs {
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		}
	}

	return result
}
