package chain

import (
	"fmt"
	"sync"

	"github.com/ilkoid/poncho-trends/pkg/llm"
)

// ChainContext содержит состояние одного запуска цепочки.
//
// Thread-safe через sync.RWMutex (Rule 5).
type ChainContext struct {
	mu sync.RWMutex

	systemPrompt     string
	currentIteration int
	messages         []llm.Message
}

// NewChainContext создаёт контекст с системным промптом и запросом пользователя.
func NewChainContext(systemPrompt, userQuery string) *ChainContext {
	c := &ChainContext{
		systemPrompt: systemPrompt,
		messages:     make([]llm.Message, 0, 10),
	}
	if userQuery != "" {
		c.messages = append(c.messages, llm.Message{Role: llm.RoleUser, Content: userQuery})
	}
	return c
}

// GetCurrentIteration возвращает номер текущей итерации.
func (c *ChainContext) GetCurrentIteration() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentIteration
}

// IncrementIteration увеличивает счётчик итераций.
func (c *ChainContext) IncrementIteration() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentIteration++
	return c.currentIteration
}

// GetMessages возвращает копию истории.
func (c *ChainContext) GetMessages() []llm.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]llm.Message, len(c.messages))
	copy(result, c.messages)
	return result
}

// GetLastMessage возвращает копию последнего сообщения или nil.
func (c *ChainContext) GetLastMessage() *llm.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.messages) == 0 {
		return nil
	}
	msg := c.messages[len(c.messages)-1]
	return &msg
}

// AppendMessage добавляет сообщение в историю.
func (c *ChainContext) AppendMessage(msg llm.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

// BuildContextMessages формирует сообщения для LLM: системный промпт + история.
func (c *ChainContext) BuildContextMessages() []llm.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	messages := make([]llm.Message, 0, len(c.messages)+1)
	if c.systemPrompt != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: c.systemPrompt})
	}
	return append(messages, c.messages...)
}

// String возвращает строковое представление контекста (для дебага).
func (c *ChainContext) String() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fmt.Sprintf("ChainContext{Iteration: %d, Messages: %d}", c.currentIteration, len(c.messages))
}
