package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/ilkoid/poncho-trends/pkg/events"
	"github.com/ilkoid/poncho-trends/pkg/llm"
	"github.com/ilkoid/poncho-trends/pkg/tools"
	"github.com/ilkoid/poncho-trends/pkg/utils"
)

// LLMInvocationStep - Step для вызова LLM.
//
// Отправляет системный промпт, историю и описания всех инструментов.
// Ответ без tool calls считается финальным.
//
// Rule 4: работает через llm.Provider интерфейс.
type LLMInvocationStep struct {
	provider llm.Provider
	registry *tools.Registry
	emitter  events.Emitter
	options  []llm.GenerateOption
}

// Name возвращает имя Step (для логирования).
func (s *LLMInvocationStep) Name() string {
	return "llm_invocation"
}

// Execute выполняет LLM вызов и добавляет ответ в историю.
//
// Возвращает:
//   - ActionContinue - модель просит вызвать инструменты;
//   - ActionBreak - финальный ответ;
//   - ActionError - ошибка провайдера.
func (s *LLMInvocationStep) Execute(ctx context.Context, chainCtx *ChainContext) StepResult {
	start := time.Now()
	messages := chainCtx.BuildContextMessages()

	var opts []any
	if defs := s.registry.GetDefinitions(); len(defs) > 0 {
		opts = append(opts, defs)
	}
	for _, o := range s.options {
		opts = append(opts, o)
	}

	resp, err := s.provider.Generate(ctx, messages, opts...)
	if err != nil {
		return StepResult{}.WithError(fmt.Errorf("llm generation failed: %w", err))
	}
	if resp.Role == "" {
		resp.Role = llm.RoleAssistant
	}
	chainCtx.AppendMessage(resp)

	utils.Debug("LLM step finished",
		"iteration", chainCtx.GetCurrentIteration(),
		"tool_calls", len(resp.ToolCalls),
		"duration_ms", time.Since(start).Milliseconds())

	if !resp.HasToolCalls() {
		return StepResult{Action: ActionBreak}
	}

	// Текст рядом с tool calls - рассуждение модели, показываем его в UI
	if resp.Content != "" && s.emitter != nil {
		s.emitter.Emit(ctx, events.New(events.EventMessage, events.MessageData{Content: resp.Content}))
	}
	return StepResult{Action: ActionContinue}
}
