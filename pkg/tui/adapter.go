// Package tui предоставляет reusable helpers для подключения Bubble Tea TUI к агенту.
//
// Это НЕ готовый TUI (он остаётся в internal/ui/), а адаптеры событий,
// клавиши, цвета и форматирование событий в строки лога.
//
// Port & Adapter паттерн:
//   - pkg/events.* - Port (интерфейсы)
//   - pkg/tui.* - Adapter helpers (переиспользуемые утилиты)
//   - internal/ui.* - Конкретная реализация TUI (app-specific)
//
// Rule 6: только reusable код, без app-specific логики.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/poncho-trends/pkg/events"
)

// EventMsg конвертирует events.Event в Bubble Tea сообщение.
type EventMsg events.Event

// EventsClosedMsg приходит, когда канал событий закрыт.
type EventsClosedMsg struct{}

// ReceiveEventCmd возвращает Bubble Tea Cmd, который ждёт одно событие.
//
// После обработки EventMsg в Update() команду нужно вернуть снова,
// иначе чтение остановится:
//
//	case tui.EventMsg:
//	    // ... обработка события
//	    return m, tui.ReceiveEventCmd(m.sub)
func ReceiveEventCmd(sub events.Subscriber) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-sub.Events()
		if !ok {
			return EventsClosedMsg{}
		}
		return EventMsg(event)
	}
}
