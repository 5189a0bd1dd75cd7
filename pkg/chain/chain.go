// Package chain предоставляет ReAct цикл для AI агента.
//
// Цикл компонуется из двух шагов (Step): вызов LLM и выполнение
// инструментов. Каждый шаг изолирован и тестируется отдельно.
//
// Правила:
//   - Rule 1: Работает с Tool interface ("Raw In, String Out")
//   - Rule 3: Tools вызываются через Registry
//   - Rule 4: LLM вызывается через llm.Provider
//   - Rule 5: Thread-safe через ChainContext
//   - Rule 7: Все ошибки возвращаются, нет panic
package chain

import (
	"context"
	"time"

	"github.com/ilkoid/poncho-trends/pkg/llm"
)

// Chain - последовательность шагов для выполнения запроса.
type Chain interface {
	Execute(ctx context.Context, input ChainInput) (ChainOutput, error)
}

// ChainInput - входные данные одного запуска.
type ChainInput struct {
	// SystemPrompt переопределяет промпт из конфигурации (если не пуст).
	SystemPrompt string

	// UserQuery - запрос пользователя, первое сообщение истории.
	UserQuery string
}

// ChainOutput - результат выполнения цепочки.
type ChainOutput struct {
	// Result - текст финального ответа агента
	Result string

	Iterations int
	Duration   time.Duration

	// FinalState - полная история сообщений (без системного промпта)
	FinalState []llm.Message
}
