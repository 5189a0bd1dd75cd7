package events

import (
	"context"
	"sync"
)

// ChanEmitter - стандартная реализация Emitter через канал.
//
// Thread-safe. Используется как дефолтная реализация в pkg/agent.
type ChanEmitter struct {
	mu     sync.RWMutex
	ch     chan Event
	closed bool
}

// NewChanEmitter создаёт ChanEmitter с буфером buffer.
// buffer = 0 даёт небуферизованный (блокирующий) канал.
func NewChanEmitter(buffer int) *ChanEmitter {
	return &ChanEmitter{
		ch: make(chan Event, buffer),
	}
}

// Emit отправляет событие в канал.
//
// Блокируется, пока событие не прочитают или не отменят ctx.
// После Close события молча отбрасываются.
func (e *ChanEmitter) Emit(ctx context.Context, event Event) {
	// RLock держится на время отправки, чтобы Close не закрыл канал под нами
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return
	}

	select {
	case e.ch <- event:
	case <-ctx.Done():
	}
}

// Subscribe возвращает Subscriber для чтения событий.
//
// Все подписчики читают один общий канал.
func (e *ChanEmitter) Subscribe() Subscriber {
	return &chanSubscriber{ch: e.ch}
}

// Close закрывает канал. Повторный вызов безопасен.
func (e *ChanEmitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	close(e.ch)
}

// chanSubscriber реализует Subscriber.
type chanSubscriber struct {
	ch <-chan Event
}

func (s *chanSubscriber) Events() <-chan Event {
	return s.ch
}

// Close - no-op: канал общий, закрывается через ChanEmitter.Close().
func (s *chanSubscriber) Close() {}

// NopEmitter отбрасывает все события. Используется, когда никто не подписан.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, Event) {}

var (
	_ Emitter    = (*ChanEmitter)(nil)
	_ Emitter    = NopEmitter{}
	_ Subscriber = (*chanSubscriber)(nil)
)
