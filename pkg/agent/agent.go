// Package agent - фасад агента отчётов о рыночных трендах.
//
// Client скрывает инициализацию компонентов (конфиг, провайдер, инструменты,
// промпт, ReAct цикл) и предоставляет один метод Run.
//
// Basic usage:
//
//	client, err := agent.New(agent.Config{ConfigPath: "config.yaml"})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	result, err := client.Run(ctx, agent.Request{Topic: "EV batteries", Recipient: "me@example.com"})
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ilkoid/poncho-trends/pkg/app"
	"github.com/ilkoid/poncho-trends/pkg/chain"
	"github.com/ilkoid/poncho-trends/pkg/config"
	"github.com/ilkoid/poncho-trends/pkg/events"
	"github.com/ilkoid/poncho-trends/pkg/journal"
	"github.com/ilkoid/poncho-trends/pkg/utils"
)

// ErrJournalDisabled - журнал запусков не настроен (journal.path пуст).
var ErrJournalDisabled = errors.New("run journal is disabled")

// Client представляет агента отчётов.
//
// Thread-safe: Run можно вызывать параллельно, каждый запуск работает
// со своим ChainContext. Но запуски пишут в один и тот же файл отчёта,
// поэтому web форма сериализует их сама.
type Client struct {
	components *app.Components

	// emitterMu protects emitter field for concurrent access
	emitterMu sync.RWMutex
	emitter   events.Emitter
}

// Config определяет конфигурацию для создания агента.
type Config struct {
	// ConfigPath - путь к config.yaml. Если пустой - используется auto-discovery.
	ConfigPath string
}

// New загружает config.yaml и создаёт агента.
//
// Возвращает ошибку если:
//   - config.yaml невалиден
//   - не задан API ключ модели
//   - обязательные зависимости не могут быть созданы
//
// Rule 2: конфигурация через YAML с ENV поддержкой.
func New(cfg Config) (*Client, error) {
	appCfg, cfgPath, err := app.InitializeConfig(&app.DefaultConfigPathFinder{ConfigFlag: cfg.ConfigPath})
	if err != nil {
		return nil, err
	}
	utils.Info("Config loaded", "path", cfgPath)

	return NewFromConfig(appCfg)
}

// NewFromConfig создаёт агента из уже загруженной конфигурации.
func NewFromConfig(appCfg *config.AppConfig) (*Client, error) {
	components, err := app.Initialize(appCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize components: %w", err)
	}
	return NewWithComponents(components), nil
}

// NewWithComponents оборачивает готовые компоненты (тесты, кастомная сборка).
func NewWithComponents(components *app.Components) *Client {
	c := &Client{components: components}
	c.SetEmitter(events.NopEmitter{})
	return c
}

// SetEmitter устанавливает emitter для отправки событий.
//
// Port & Adapter паттерн: Client зависит от абстракции (events.Emitter),
// а не от конкретной реализации UI.
func (c *Client) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	c.emitterMu.Lock()
	defer c.emitterMu.Unlock()
	c.emitter = emitter
	c.components.Cycle.SetEmitter(emitter)
}

// Subscribe возвращает Subscriber для чтения событий.
//
// До первого вызова события отбрасываются. Первый вызов заменяет их
// на ChanEmitter с буфером 100; подписчик обязан читать канал, иначе
// запуск встанет на отправке события.
func (c *Client) Subscribe() events.Subscriber {
	c.emitterMu.Lock()
	defer c.emitterMu.Unlock()

	ce, ok := c.emitter.(*events.ChanEmitter)
	if !ok {
		ce = events.NewChanEmitter(100)
		c.emitter = ce
		c.components.Cycle.SetEmitter(ce)
	}
	return ce.Subscribe()
}

// Run выполняет один запуск: валидация, промпт, ReAct цикл, журнал.
//
// Возвращает финальный текст агента. События:
// EventInfo (старт) -> события цикла -> EventDone или EventError.
//
// Rule 11: принимает context.Context для отмены операции.
func (c *Client) Run(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		c.emit(ctx, events.New(events.EventError, events.ErrorData{Err: err}))
		return "", err
	}

	c.emit(ctx, events.New(events.EventInfo, events.InfoData{
		Text: fmt.Sprintf("Initiating report generation for topic: %s", req.Topic),
	}))
	c.emit(ctx, events.New(events.EventInfo, events.InfoData{
		Text: fmt.Sprintf("Report will be emailed to: %s", req.Recipient),
	}))
	utils.Info("Running agent", "topic", req.Topic, "recipient", req.Recipient)

	runID := c.journalStart(ctx, req)
	start := time.Now()

	result, err := c.run(ctx, req)

	c.journalFinish(runID, result, err)
	if err != nil {
		utils.Error("Agent run failed", "topic", req.Topic, "error", err)
		c.emit(ctx, events.New(events.EventError, events.ErrorData{Err: err}))
		return "", err
	}

	utils.Info("Agent run completed",
		"topic", req.Topic,
		"duration_ms", time.Since(start).Milliseconds(),
		"result", utils.Truncate(utils.OneLine(result), 200))
	c.emit(ctx, events.New(events.EventDone, events.MessageData{Content: result}))
	return result, nil
}

func (c *Client) run(ctx context.Context, req Request) (string, error) {
	system, user, err := c.components.Prompt.Split(c.components.ReportData(req.Topic, req.Recipient))
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}

	out, err := c.components.Cycle.Execute(ctx, chain.ChainInput{
		SystemPrompt: system,
		UserQuery:    user,
	})
	if err != nil {
		return "", err
	}
	return out.Result, nil
}

// History возвращает последние limit запусков из журнала.
func (c *Client) History(ctx context.Context, limit int) ([]journal.Run, error) {
	if c.components.Journal == nil {
		return nil, ErrJournalDisabled
	}
	return c.components.Journal.List(ctx, limit)
}

// ReportFile - имя файла отчёта, которое агент передаёт в pdf_generator.
func (c *Client) ReportFile() string {
	return c.components.Report.FileName
}

// Close освобождает ресурсы агента и закрывает канал событий.
func (c *Client) Close() error {
	c.emitterMu.Lock()
	if ce, ok := c.emitter.(*events.ChanEmitter); ok {
		ce.Close()
	}
	c.emitterMu.Unlock()
	return c.components.Close()
}

// journalStart пишет запуск в журнал. Сбой журнала не мешает запуску.
func (c *Client) journalStart(ctx context.Context, req Request) string {
	if c.components.Journal == nil {
		return ""
	}
	run, err := c.components.Journal.Start(ctx, req.Topic, req.Recipient)
	if err != nil {
		utils.Warn("Journal start failed", "error", err)
		return ""
	}
	return run.ID
}

func (c *Client) journalFinish(id, result string, runErr error) {
	if id == "" {
		return
	}
	// ctx запуска мог быть отменён, а запись об отмене всё равно нужна
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.components.Journal.Finish(ctx, id, result, runErr); err != nil {
		utils.Warn("Journal finish failed", "run_id", id, "error", err)
	}
}

// emit отправляет событие через текущий emitter.
//
// Rule 11: уважает context.Context.
func (c *Client) emit(ctx context.Context, event events.Event) {
	c.emitterMu.RLock()
	emitter := c.emitter
	c.emitterMu.RUnlock()
	emitter.Emit(ctx, event)
}
