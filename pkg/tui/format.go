package tui

import (
	"fmt"
	"time"

	"github.com/ilkoid/poncho-trends/pkg/events"
	"github.com/ilkoid/poncho-trends/pkg/utils"
)

// Kind - визуальная категория строки лога.
type Kind int

const (
	KindSystem Kind = iota
	KindTool
	KindMessage
	KindError
)

// Line - событие агента, переведённое в одну строку лога.
type Line struct {
	Kind Kind
	Text string
}

// maxResultPreview - сколько символов аргументов и результатов показывать в логе.
const (
	maxResultPreview = 160
	msRound          = time.Millisecond
)

// FormatEvent переводит событие в строку лога.
//
// ok=false для событий, которые не нужно показывать (EventDone: финальный
// ответ UI показывает отдельно).
// Используется TUI и headless режимом, поэтому без стилей.
func FormatEvent(event events.Event) (Line, bool) {
	switch data := event.Data.(type) {
	case events.InfoData:
		return Line{Kind: KindSystem, Text: data.Text}, true

	case events.ThinkingData:
		return Line{Kind: KindSystem, Text: fmt.Sprintf("Thinking (step %d)...", data.Iteration)}, true

	case events.ToolCallData:
		return Line{Kind: KindTool, Text: fmt.Sprintf("→ %s %s", data.ToolName, utils.Truncate(utils.OneLine(data.Args), maxResultPreview))}, true

	case events.ToolResultData:
		mark := "✓"
		if data.Failed {
			mark = "✗"
		}
		return Line{
			Kind: KindTool,
			Text: fmt.Sprintf("%s %s (%s): %s", mark, data.ToolName, data.Duration.Round(msRound), utils.Truncate(utils.OneLine(data.Result), maxResultPreview)),
		}, true

	case events.MessageData:
		if event.Type == events.EventDone {
			return Line{}, false
		}
		return Line{Kind: KindMessage, Text: data.Content}, true

	case events.ErrorData:
		return Line{Kind: KindError, Text: fmt.Sprintf("An error occurred during agent execution: %v", data.Err)}, true
	}
	return Line{}, false
}
