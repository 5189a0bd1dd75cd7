// Логика - обрабатывает клавиши, события агента и результат запуска.

package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/poncho-trends/pkg/agent"
	"github.com/ilkoid/poncho-trends/pkg/events"
	"github.com/ilkoid/poncho-trends/pkg/tui"
	"github.com/ilkoid/poncho-trends/pkg/utils"
)

// Высоты частей экрана вокруг лога.
const (
	headerHeight = 2 // заголовок + пустая строка
	formHeight   = 5 // две подписи, два поля, разделитель
	footerHeight = 2 // статус-бар + подсказка
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// 1. Изменение размера окна терминала
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		for i := range m.inputs {
			m.inputs[i].Width = max(msg.Width-4, 10)
		}
		m.log.HandleResize(msg, headerHeight+formHeight, footerHeight)
		m.ready = true
		return m, nil

	// 2. Клавиши
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.ToggleHelp):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.NextField):
			return m, m.setFocus((m.focus + 1) % fieldCount)
		case key.Matches(msg, m.keys.PrevField):
			return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
			return m, m.log.Update(msg)
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		}

	// 3. События агента (Port & Adapter)
	case tui.EventMsg:
		m.appendEvent(events.Event(msg))
		return m, tui.ReceiveEventCmd(m.sub)

	case tui.EventsClosedMsg:
		return m, nil

	// 4. Результат запуска
	case runResultMsg:
		m.finish(msg)
		return m, nil

	case tea.MouseMsg:
		return m, m.log.Update(msg)

	default:
		// spinner.TickMsg и прочее
		if cmd := m.status.Update(msg); cmd != nil {
			return m, cmd
		}
	}

	// Остальное уходит в поле с фокусом
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.focus = i
	var cmd tea.Cmd
	for j := range m.inputs {
		if j == i {
			cmd = m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	return cmd
}

// submit проверяет поля и запускает агента.
//
// Ошибки валидации показываются предупреждением, агент не вызывается.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.running {
		m.log.Append(m.styles.warning.Render("A report is already being generated, please wait."))
		return m, nil
	}

	req := m.Request()
	if err := req.Validate(); err != nil {
		m.log.Append(m.styles.warning.Render(err.Error()))
		return m, nil
	}

	m.running = true
	m.log.Reset()
	m.log.Append(m.styles.warning.Render("Check the log file for verbose output from the agent while it's working."))
	m.status.SetProcessing(true, workingLabel)
	utils.Info("TUI run started", "topic", req.Topic, "recipient", req.Recipient)

	return m, tea.Batch(m.status.Tick(), runCmd(m.ctx, m.runner, req))
}

// runCmd выполняет запуск вне UI горутины.
func runCmd(ctx context.Context, runner Runner, req agent.Request) tea.Cmd {
	return func() tea.Msg {
		out, err := runner.Run(ctx, req)
		return runResultMsg{Recipient: req.Recipient, Output: out, Err: err}
	}
}

func (m *Model) appendEvent(ev events.Event) {
	line, ok := tui.FormatEvent(ev)
	// Ошибку запуска показывает finish, иначе она задвоится
	if !ok || line.Kind == tui.KindError {
		return
	}
	m.log.Append(m.styles.forLine(line.Kind).Render(line.Text))
}

func (m *Model) finish(res runResultMsg) {
	m.running = false
	m.status.SetProcessing(false, "")

	if res.Err != nil {
		utils.Error("TUI run failed", "error", res.Err)
		m.log.Append(m.styles.errorS.Render(fmt.Sprintf("An error occurred during agent execution: %v", res.Err)))
		m.log.Append(m.styles.warning.Render("Check the log file for detailed verbose output from the agent for debugging."))
		return
	}

	m.log.Append(m.styles.success.Render("Agent execution complete!"))
	m.log.Append(m.styles.label.Render("Final Agent Message:"))
	m.log.Append(m.styles.message.Render(res.Output))
	m.log.Append(m.styles.system.Render(fmt.Sprintf("Please check the inbox for %s for the attached report PDF.", res.Recipient)))
}
