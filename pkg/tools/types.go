// Интерфейс Tool и структуры определений.

package tools

import "context"

// JSONSchema - JSON Schema параметров инструмента в формате Function Calling API.
type JSONSchema map[string]any

// ToolDefinition описывает инструмент для LLM.
type ToolDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  JSONSchema `json:"parameters"`
}

// Tool - контракт, который реализует любой инструмент агента.
type Tool interface {
	// Definition возвращает описание инструмента для LLM.
	Definition() ToolDefinition

	// Execute выполняет инструмент.
	// argsJSON - сырой JSON аргументов, который прислала модель.
	// Результат - текст, который вернётся модели как tool message.
	Execute(ctx context.Context, argsJSON string) (string, error)
}
