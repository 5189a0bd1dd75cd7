// Интерфейс Провайдера, через который работает всё приложение.

package llm

import "context"

// Provider - контракт для любого AI-сервиса.
//
// opts может содержать []tools.ToolDefinition (описания инструментов для
// Function Calling) и значения GenerateOption. Неизвестный тип аргумента
// приводит к ошибке.
//
// Правило 4: агент и цепочка видят модель только через этот интерфейс.
type Provider interface {
	Generate(ctx context.Context, messages []Message, opts ...any) (Message, error)
}
