// Package events - Port для подписки UI на события агента.
//
// Библиотека (pkg/agent, pkg/chain) зависит только от интерфейса Emitter,
// UI (internal/ui, internal/web, headless CLI) читает события через Subscriber.
//
//	sub := client.Subscribe()
//	for event := range sub.Events() {
//	    switch event.Type {
//	    case events.EventToolCall:
//	        ui.showTool(event.Data.(events.ToolCallData).ToolName)
//	    case events.EventDone:
//	        ui.showResult(event.Data.(events.MessageData).Content)
//	    }
//	}
//
// Rule 11: Emitter.Emit() принимает context.Context для отмены операции.
package events

import (
	"context"
	"time"
)

// EventType представляет тип события от агента.
type EventType string

const (
	// EventInfo - прогресс запуска ("Initiating report generation...").
	EventInfo EventType = "info"

	// EventThinking - начата итерация, модель думает.
	EventThinking EventType = "thinking"

	// EventToolCall - модель вызвала инструмент.
	EventToolCall EventType = "tool_call"

	// EventToolResult - инструмент вернул результат.
	EventToolResult EventType = "tool_result"

	// EventMessage - промежуточный текст модели рядом с tool calls.
	EventMessage EventType = "message"

	// EventError - запуск завершился ошибкой.
	EventError EventType = "error"

	// EventDone - финальный ответ агента.
	EventDone EventType = "done"
)

// EventData - sealed interface для данных события.
//
// Только типы из пакета events могут реализовать этот интерфейс.
type EventData interface {
	eventData()
}

// InfoData содержит данные для EventInfo.
type InfoData struct {
	Text string
}

func (InfoData) eventData() {}

// ThinkingData содержит данные для EventThinking.
type ThinkingData struct {
	Iteration int
	Query     string
}

func (ThinkingData) eventData() {}

// ToolCallData содержит данные о вызове инструмента.
type ToolCallData struct {
	ToolName string
	Args     string
}

func (ToolCallData) eventData() {}

// ToolResultData содержит результат выполнения инструмента.
type ToolResultData struct {
	ToolName string
	Result   string
	Duration time.Duration
	Failed   bool
}

func (ToolResultData) eventData() {}

// MessageData содержит данные для EventMessage и EventDone.
type MessageData struct {
	Content string
}

func (MessageData) eventData() {}

// ErrorData содержит данные для EventError.
type ErrorData struct {
	Err error
}

func (ErrorData) eventData() {}

// Event - событие от агента.
type Event struct {
	Type      EventType
	Data      EventData
	Timestamp time.Time
}

// New создаёт событие с текущим временем.
func New(t EventType, data EventData) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now()}
}

// Emitter - Port для отправки событий.
//
// Rule 11: реализация не должна блокироваться дольше, чем живёт ctx.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

// Subscriber позволяет читать события из канала.
type Subscriber interface {
	// Events возвращает read-only канал событий.
	// Канал закрывается при закрытии источника.
	Events() <-chan Event

	Close()
}
