// Package ui реализует терминальную форму отчёта на Bubble Tea.
//
// Экран: два поля (тема и получатель), лог событий агента, статус-бар
// со спиннером и подсказка по клавишам. Один запуск за раз.
package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/poncho-trends/pkg/agent"
	"github.com/ilkoid/poncho-trends/pkg/events"
	"github.com/ilkoid/poncho-trends/pkg/tui"
	"github.com/ilkoid/poncho-trends/pkg/tui/primitives"
)

// Runner - то, что форме нужно от агента (agent.Client).
type Runner interface {
	Run(ctx context.Context, req agent.Request) (string, error)
}

// Options - начальные значения формы.
type Options struct {
	Topic     string
	Recipient string
	ModelName string // показывается в статус-баре
	Debug     bool
	Colors    string // имя схемы из tui.ColorSchemes
}

const (
	fieldTopic = iota
	fieldRecipient
	fieldCount
)

const (
	defaultRecipient = "your.test.email@example.com"
	workingLabel     = "Agent is working... Researching, generating documents, and sending email..."
)

// runResultMsg - результат запуска агента (приходит из tea.Cmd).
type runResultMsg struct {
	Recipient string
	Output    string
	Err       error
}

// Model - главная модель UI (Bubble Tea Model).
//
// Value receiver в Update(): всё изменяемое между копиями состояние
// (лог, статус) хранится за указателями, мьютексы внутри них не копируются.
type Model struct {
	ctx    context.Context
	runner Runner
	sub    events.Subscriber

	inputs [fieldCount]textinput.Model
	focus  int

	log    *primitives.ViewportManager
	status *primitives.StatusBarManager
	help   help.Model
	keys   tui.KeyMap
	styles styles

	running bool
	width   int
	ready   bool
}

// New создаёт модель. sub может быть nil (тогда лог показывает только итог).
func New(ctx context.Context, runner Runner, sub events.Subscriber, opts Options) Model {
	scheme := tui.GetColorScheme(opts.Colors)

	topic := textinput.New()
	topic.Placeholder = "e.g. AI in e-commerce"
	topic.CharLimit = 200
	topic.SetValue(opts.Topic)
	topic.Focus()

	recipient := textinput.New()
	recipient.Placeholder = defaultRecipient
	recipient.CharLimit = 254
	recipient.SetValue(opts.Recipient)

	status := primitives.NewStatusBarManager(primitives.StatusBarConfig{
		SpinnerColor:    scheme.AIMessage,
		IdleColor:       scheme.SystemMessage,
		BackgroundColor: scheme.StatusBackground,
		DebugColor:      scheme.ErrorMessage,
		DebugText:       scheme.StatusForeground,
		ExtraText:       scheme.StatusForeground,
	})
	status.SetDebugMode(opts.Debug)
	status.SetExtra(opts.ModelName)

	m := Model{
		ctx:    ctx,
		runner: runner,
		sub:    sub,
		inputs: [fieldCount]textinput.Model{topic, recipient},
		log:    primitives.NewViewportManager(),
		status: status,
		help:   help.New(),
		keys:   tui.DefaultKeyMap(),
		styles: newStyles(scheme),
	}
	m.log.Append(m.styles.system.Render("Enter a topic and a recipient, then press Enter to generate the report."))
	return m
}

// Init запускает мигание курсора и чтение событий агента.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.sub != nil {
		cmds = append(cmds, tui.ReceiveEventCmd(m.sub))
	}
	return tea.Batch(cmds...)
}

// Request возвращает запрос из текущих значений полей.
func (m Model) Request() agent.Request {
	return agent.Request{
		Topic:     m.inputs[fieldTopic].Value(),
		Recipient: m.inputs[fieldRecipient].Value(),
	}
}

// Running возвращает true, пока идёт запуск.
func (m Model) Running() bool {
	return m.running
}

// Run показывает форму до выхода пользователя или отмены ctx.
func Run(ctx context.Context, client *agent.Client, opts Options) error {
	m := New(ctx, client, client.Subscribe(), opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		// Ctrl+C через SIGINT - штатный выход
		return nil
	}
	return err
}
