package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChanEmitter_DeliversInOrder(t *testing.T) {
	e := NewChanEmitter(4)
	sub := e.Subscribe()

	e.Emit(context.Background(), New(EventInfo, InfoData{Text: "start"}))
	e.Emit(context.Background(), New(EventDone, MessageData{Content: "ok"}))
	e.Close()

	var got []EventType
	for ev := range sub.Events() {
		got = append(got, ev.Type)
		assert.False(t, ev.Timestamp.IsZero())
	}
	assert.Equal(t, []EventType{EventInfo, EventDone}, got)
}

func TestChanEmitter_RespectsContext(t *testing.T) {
	e := NewChanEmitter(0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		e.Emit(ctx, New(EventError, ErrorData{Err: errors.New("x")}))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "Emit must return after ctx is done")
	}
}

func TestChanEmitter_EmitAfterClose(t *testing.T) {
	e := NewChanEmitter(1)
	e.Close()
	e.Close()
	// не паникует
	e.Emit(context.Background(), New(EventInfo, InfoData{}))
	NopEmitter{}.Emit(context.Background(), New(EventInfo, InfoData{}))
}
