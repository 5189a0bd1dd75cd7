// Базовые типы - универсальный язык общения агента с моделями.
package llm

// Role - роль автора сообщения в истории диалога.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall - запрос модели на вызов инструмента.
//
// Args содержит сырой JSON аргументов в том виде, в каком его прислала модель.
type ToolCall struct {
	ID   string
	Name string
	Args string
}

// Message - одно сообщение в истории диалога.
//
// Для RoleTool поле ToolCallID связывает результат с вызовом,
// который его породил.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// HasToolCalls сообщает, просит ли модель вызвать инструменты.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}
