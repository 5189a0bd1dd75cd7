package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ilkoid/poncho-trends/pkg/events"
	"github.com/ilkoid/poncho-trends/pkg/llm"
	"github.com/ilkoid/poncho-trends/pkg/tools"
	"github.com/ilkoid/poncho-trends/pkg/utils"
)

// ToolExecutionStep - Step для выполнения инструментов из последнего ответа LLM.
//
// Ошибки инструментов (включая timeout и неизвестное имя) не прерывают цикл:
// они возвращаются модели как tool message "Error: ...". Прерывает только
// отмена родительского контекста.
//
// Rule 1: "Raw In, String Out".
// Rule 3: Tools вызываются через Registry.
type ToolExecutionStep struct {
	registry *tools.Registry
	emitter  events.Emitter
	config   *ReActCycleConfig
}

// ToolResult - результат выполнения одного инструмента.
type ToolResult struct {
	Name     string
	Args     string
	Result   string
	Duration time.Duration
	Success  bool
	Error    error
}

// Name возвращает имя Step (для логирования).
func (s *ToolExecutionStep) Name() string {
	return "tool_execution"
}

// Execute выполняет tool calls последнего assistant сообщения по порядку.
func (s *ToolExecutionStep) Execute(ctx context.Context, chainCtx *ChainContext) StepResult {
	lastMsg := chainCtx.GetLastMessage()
	if lastMsg == nil || lastMsg.Role != llm.RoleAssistant {
		return StepResult{}.WithError(fmt.Errorf("no assistant message found"))
	}

	for _, tc := range lastMsg.ToolCalls {
		if err := ctx.Err(); err != nil {
			return StepResult{}.WithError(err)
		}

		s.emit(ctx, events.New(events.EventToolCall, events.ToolCallData{ToolName: tc.Name, Args: tc.Args}))

		result := s.executeToolCall(ctx, tc)

		// Родительский контекст отменён: дальше идти некуда
		if ctx.Err() != nil {
			return StepResult{}.WithError(ctx.Err())
		}

		s.emit(ctx, events.New(events.EventToolResult, events.ToolResultData{
			ToolName: tc.Name,
			Result:   result.Result,
			Duration: result.Duration,
			Failed:   !result.Success,
		}))

		chainCtx.AppendMessage(llm.Message{
			Role:       llm.RoleTool,
			ToolCallID: tc.ID,
			Content:    result.Result,
		})
	}

	return StepResult{Action: ActionContinue}
}

// executeToolCall выполняет один tool call с защитным timeout.
//
// Tool запускается в отдельной goroutine: даже инструмент, игнорирующий ctx,
// не подвесит агента дольше timeout.
func (s *ToolExecutionStep) executeToolCall(ctx context.Context, tc llm.ToolCall) ToolResult {
	start := time.Now()
	result := ToolResult{Name: tc.Name, Args: tc.Args}

	tool, err := s.registry.Get(tc.Name)
	if err != nil {
		result.Error = err
		result.Result = fmt.Sprintf("Error: %v", err)
		utils.Warn("Unknown tool requested", "tool", tc.Name)
		return result
	}

	timeout := s.config.timeoutFor(tc.Name)
	toolCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type execResult struct {
		output string
		err    error
	}
	resultChan := make(chan execResult, 1)

	utils.Info("Tool started", "tool", tc.Name, "args", utils.Truncate(utils.OneLine(tc.Args), 200))
	go func() {
		out, execErr := tool.Execute(toolCtx, utils.CleanJsonBlock(tc.Args))
		resultChan <- execResult{out, execErr}
	}()

	select {
	case <-toolCtx.Done():
		result.Duration = time.Since(start)
		if errors.Is(toolCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			result.Error = fmt.Errorf("tool execution timeout after %v", timeout)
			result.Result = fmt.Sprintf("Error: tool %q exceeded timeout of %v", tc.Name, timeout)
		} else {
			result.Error = fmt.Errorf("tool execution cancelled: %w", toolCtx.Err())
			result.Result = "Error: tool execution was cancelled"
		}
		utils.Warn("Tool execution interrupted", "tool", tc.Name, "timeout", timeout, "error", result.Error)
		return result

	case res := <-resultChan:
		result.Duration = time.Since(start)
		if res.err != nil {
			result.Error = res.err
			result.Result = fmt.Sprintf("Error: %v", res.err)
			utils.Error("Tool failed", "tool", tc.Name, "error", res.err, "duration_ms", result.Duration.Milliseconds())
		} else {
			result.Success = true
			result.Result = res.output
			utils.Info("Tool finished",
				"tool", tc.Name,
				"result", utils.Truncate(utils.OneLine(res.output), 200),
				"duration_ms", result.Duration.Milliseconds())
		}
		return result
	}
}

func (s *ToolExecutionStep) emit(ctx context.Context, ev events.Event) {
	if s.emitter != nil {
		s.emitter.Emit(ctx, ev)
	}
}
