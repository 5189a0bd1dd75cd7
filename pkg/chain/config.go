package chain

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilkoid/poncho-trends/pkg/llm"
)

// ErrMaxIterations - модель так и не дала финальный ответ.
var ErrMaxIterations = errors.New("max iterations exceeded")

const (
	// DefaultMaxIterations - стандартный лимит итераций ReAct цикла.
	DefaultMaxIterations = 10

	// DefaultToolTimeout - защитный timeout одного вызова инструмента.
	DefaultToolTimeout = 60 * time.Second
)

// ReActCycleConfig - конфигурация ReAct цикла.
type ReActCycleConfig struct {
	// SystemPrompt - системный промпт по умолчанию.
	SystemPrompt string

	// MaxIterations - сколько раз можно вызвать LLM за один запуск.
	MaxIterations int

	// Timeout - таймаут всего запуска. 0 - без ограничения.
	Timeout time.Duration

	// ToolTimeout - timeout инструмента по умолчанию.
	ToolTimeout time.Duration

	// ToolTimeouts - индивидуальные timeout по имени инструмента.
	ToolTimeouts map[string]time.Duration

	// Options - переопределения параметров модели (из config промпта).
	Options []llm.GenerateOption
}

// NewReActCycleConfig создаёт конфигурацию с дефолтными значениями.
func NewReActCycleConfig() ReActCycleConfig {
	return ReActCycleConfig{
		MaxIterations: DefaultMaxIterations,
		ToolTimeout:   DefaultToolTimeout,
	}
}

// Validate проверяет конфигурацию.
//
// Rule 7: возвращает ошибку вместо panic.
func (c *ReActCycleConfig) Validate() error {
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive, got %d", c.MaxIterations)
	}
	if c.ToolTimeout <= 0 {
		return fmt.Errorf("tool_timeout must be positive, got %v", c.ToolTimeout)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %v", c.Timeout)
	}
	return nil
}

// timeoutFor возвращает timeout для инструмента.
func (c *ReActCycleConfig) timeoutFor(tool string) time.Duration {
	if t, ok := c.ToolTimeouts[tool]; ok && t > 0 {
		return t
	}
	return c.ToolTimeout
}
