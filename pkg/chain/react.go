package chain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ilkoid/poncho-trends/pkg/events"
	"github.com/ilkoid/poncho-trends/pkg/llm"
	"github.com/ilkoid/poncho-trends/pkg/tools"
	"github.com/ilkoid/poncho-trends/pkg/utils"
)

// ReActCycle - реализация ReAct (Reasoning + Acting) паттерна.
//
// Цикл:
//  1. LLM анализирует историю и решает, что делать (Reasoning)
//  2. Если нужны инструменты - выполняет их (Acting)
//  3. Повторяет, пока не получен ответ без tool calls
//     или не исчерпан MaxIterations (ErrMaxIterations)
//
// ReActCycle неизменяем после создания, кроме emitter.
// Каждый Execute работает со своим ChainContext, поэтому параллельные
// запуски не разделяют состояние.
type ReActCycle struct {
	provider llm.Provider
	registry *tools.Registry
	config   ReActCycleConfig

	mu      sync.RWMutex
	emitter events.Emitter
}

// NewReActCycle создаёт цикл. Невалидная конфигурация - ошибка.
func NewReActCycle(config ReActCycleConfig, provider llm.Provider, registry *tools.Registry) (*ReActCycle, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid react config: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("llm provider is not set")
	}
	if registry == nil {
		return nil, fmt.Errorf("tools registry is not set")
	}
	return &ReActCycle{
		provider: provider,
		registry: registry,
		config:   config,
	}, nil
}

// SetEmitter устанавливает emitter для событий UI.
//
// Port & Adapter: цикл зависит только от events.Emitter.
func (c *ReActCycle) SetEmitter(emitter events.Emitter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emitter = emitter
}

// Execute выполняет ReAct цикл.
//
// Rule 7: возвращает ошибку вместо panic.
func (c *ReActCycle) Execute(ctx context.Context, input ChainInput) (ChainOutput, error) {
	start := time.Now()

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	c.mu.RLock()
	emitter := c.emitter
	c.mu.RUnlock()

	systemPrompt := c.config.SystemPrompt
	if input.SystemPrompt != "" {
		systemPrompt = input.SystemPrompt
	}
	chainCtx := NewChainContext(systemPrompt, input.UserQuery)

	llmStep := &LLMInvocationStep{provider: c.provider, registry: c.registry, emitter: emitter, options: c.config.Options}
	toolStep := &ToolExecutionStep{registry: c.registry, emitter: emitter, config: &c.config}

	for chainCtx.GetCurrentIteration() < c.config.MaxIterations {
		iteration := chainCtx.IncrementIteration()
		if emitter != nil {
			emitter.Emit(ctx, events.New(events.EventThinking, events.ThinkingData{Iteration: iteration, Query: input.UserQuery}))
		}

		res := llmStep.Execute(ctx, chainCtx)
		switch res.Action {
		case ActionError:
			return ChainOutput{}, res.Error
		case ActionBreak:
			last := chainCtx.GetLastMessage()
			utils.Info("ReAct cycle finished",
				"iterations", iteration,
				"duration_ms", time.Since(start).Milliseconds())
			return ChainOutput{
				Result:     last.Content,
				Iterations: iteration,
				Duration:   time.Since(start),
				FinalState: chainCtx.GetMessages(),
			}, nil
		}

		if res := toolStep.Execute(ctx, chainCtx); res.Action == ActionError {
			return ChainOutput{}, res.Error
		}
	}

	utils.Error("ReAct cycle exhausted", "max_iterations", c.config.MaxIterations)
	return ChainOutput{}, fmt.Errorf("%w (%d)", ErrMaxIterations, c.config.MaxIterations)
}

// Run выполняет цикл для запроса и возвращает текст финального ответа.
func (c *ReActCycle) Run(ctx context.Context, query string) (string, error) {
	out, err := c.Execute(ctx, ChainInput{UserQuery: query})
	if err != nil {
		return "", err
	}
	return out.Result, nil
}

var _ Chain = (*ReActCycle)(nil)
