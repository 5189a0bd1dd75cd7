package chain

import (
	"context"
	"fmt"
)

// NextAction определяет поведение цикла после выполнения Step.
type NextAction int

const (
	// ActionContinue - продолжить (следующий шаг или следующая итерация).
	ActionContinue NextAction = iota

	// ActionBreak - финальный ответ получен, цикл завершается.
	ActionBreak

	// ActionError - прервать выполнение с ошибкой.
	ActionError
)

// String возвращает строковое представление NextAction (для логов).
func (a NextAction) String() string {
	switch a {
	case ActionContinue:
		return "Continue"
	case ActionBreak:
		return "Break"
	case ActionError:
		return "Error"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// StepResult - результат выполнения Step.
type StepResult struct {
	Action NextAction
	Error  error
}

// WithError возвращает результат с ActionError.
func (r StepResult) WithError(err error) StepResult {
	return StepResult{Action: ActionError, Error: err}
}

// Step - атомарный шаг цикла.
//
// Step меняет состояние только через методы ChainContext.
type Step interface {
	Name() string
	Execute(ctx context.Context, chainCtx *ChainContext) StepResult
}
