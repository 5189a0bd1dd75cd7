// Package app собирает компоненты приложения из config.yaml.
//
// Один код инициализации используется TUI, web формой и headless CLI.
//
// Пакет следует правилам из dev_manifest.md:
//   - Работает через llm.Provider интерфейс (Правило 4)
//   - Использует tools.Registry (Правило 3)
//   - Все ошибки возвращаются, никаких panic (Правило 7)
package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilkoid/poncho-trends/pkg/chain"
	"github.com/ilkoid/poncho-trends/pkg/config"
	"github.com/ilkoid/poncho-trends/pkg/factory"
	"github.com/ilkoid/poncho-trends/pkg/journal"
	"github.com/ilkoid/poncho-trends/pkg/llm"
	"github.com/ilkoid/poncho-trends/pkg/prompt"
	"github.com/ilkoid/poncho-trends/pkg/s3storage"
	"github.com/ilkoid/poncho-trends/pkg/tools"
	"github.com/ilkoid/poncho-trends/pkg/utils"
)

// Components содержит все компоненты приложения.
//
// Archive и Journal равны nil, если они не настроены.
type Components struct {
	Config   *config.AppConfig
	LLM      llm.Provider
	Registry *tools.Registry
	Cycle    *chain.ReActCycle
	Prompt   *prompt.PromptFile
	Report   config.ReportConfig // с применёнными дефолтами
	Archive  *s3storage.Client
	Journal  *journal.Journal
}

// ConfigPathFinder определяет стратегию поиска пути к config.yaml.
type ConfigPathFinder interface {
	FindConfigPath() string
}

// DefaultConfigPathFinder реализует стандартную стратегию поиска config.yaml.
//
// Порядок поиска:
// 1. Флаг -config (если указан)
// 2. Текущая директория (./config.yaml)
// 3. Директория бинарника
// 4. Родительская директория (для запуска из cmd/)
//
// Если файл не найден нигде, возвращается ./config.yaml: config.Load
// в этом случае берёт встроенные дефолты.
type DefaultConfigPathFinder struct {
	// ConfigFlag - значение флага -config, если указан
	ConfigFlag string
}

// FindConfigPath находит путь к config.yaml.
func (f *DefaultConfigPathFinder) FindConfigPath() string {
	// 1. Флаг имеет приоритет
	if f.ConfigFlag != "" {
		return resolveAbsPath(f.ConfigFlag)
	}

	candidates := []string{"config.yaml"}
	if execPath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(execPath), "config.yaml"))
	}
	candidates = append(candidates,
		filepath.Join("..", "config.yaml"),
		filepath.Join("..", "..", "config.yaml"),
	)

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return resolveAbsPath(p)
		}
	}

	return resolveAbsPath("config.yaml")
}

// InitializeConfig инициализирует и загружает конфигурацию.
//
// Правило 2: все настройки в YAML с поддержкой ENV-переменных.
func InitializeConfig(finder ConfigPathFinder) (*config.AppConfig, string, error) {
	cfgPath := finder.FindConfigPath()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config from %s: %w", cfgPath, err)
	}

	return cfg, cfgPath, nil
}

// Initialize создаёт LLM провайдера по models.default_chat и собирает
// остальные компоненты через Assemble.
//
// Без api_key модели агент не создаётся (factory.ErrMissingAPIKey).
func Initialize(cfg *config.AppConfig) (*Components, error) {
	modelDef, ok := cfg.GetChatModel("")
	if !ok {
		utils.Error("Default chat model not found", "model", cfg.Models.DefaultChat)
		return nil, fmt.Errorf("default_chat model '%s' not found in definitions", cfg.Models.DefaultChat)
	}

	llmProvider, err := factory.NewLLMProvider(modelDef)
	if err != nil {
		utils.Error("LLM provider creation failed", "error", err)
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}
	utils.Info("LLM provider created", "provider", modelDef.Provider, "model", modelDef.ModelName)

	return Assemble(cfg, llmProvider, ToolDeps{})
}

// Assemble собирает компоненты вокруг готового провайдера.
//
// Непустые поля deps имеют приоритет над клиентами из конфига.
//
// Порядок:
//  1. S3 архив отчётов (если s3.bucket задан)
//  2. Журнал запусков (если journal.path задан)
//  3. Инструменты (search, pdf, email)
//  4. Промпт (app.prompts_dir или встроенный)
//  5. ReAct цикл
func Assemble(cfg *config.AppConfig, llmProvider llm.Provider, deps ToolDeps) (_ *Components, err error) {
	c := &Components{
		Config: cfg,
		LLM:    llmProvider,
		Report: cfg.Report.GetDefaults(),
	}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	// 1. S3
	if cfg.S3.Enabled() {
		c.Archive, err = s3storage.New(cfg.S3)
		if err != nil {
			utils.Error("S3 client creation failed", "error", err)
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		utils.Info("S3 archive initialized", "bucket", cfg.S3.Bucket)
	}

	// 2. Журнал
	if cfg.Journal.Path != "" {
		c.Journal, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			utils.Error("Journal open failed", "path", cfg.Journal.Path, "error", err)
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		utils.Info("Run journal opened", "path", cfg.Journal.Path)
	}

	// 3. Инструменты
	c.Registry = tools.NewRegistry()
	if deps.Archive == nil && c.Archive != nil {
		// nil *s3storage.Client в интерфейсе не равен nil
		deps.Archive = c.Archive
	}
	if err = SetupTools(c.Registry, cfg, deps); err != nil {
		utils.Error("Tools registration failed", "error", err)
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	// 4. Промпт
	c.Prompt, err = prompt.Resolve(cfg.App.PromptsDir, cfg.Agent.Prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to load agent prompt: %w", err)
	}

	// 5. ReAct цикл
	agentCfg := cfg.Agent.GetDefaults()
	cycleCfg := chain.NewReActCycleConfig()
	cycleCfg.MaxIterations = agentCfg.MaxIterations
	cycleCfg.ToolTimeout = agentCfg.ToolTimeout
	cycleCfg.ToolTimeouts = make(map[string]time.Duration)
	for _, name := range c.Registry.Names() {
		if d := cfg.ToolTimeout(name); d > 0 {
			cycleCfg.ToolTimeouts[name] = d
		}
	}
	cycleCfg.Options = c.Prompt.Options()

	c.Cycle, err = chain.NewReActCycle(cycleCfg, llmProvider, c.Registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create react cycle: %w", err)
	}

	utils.Info("Components initialized",
		"tools", len(c.Registry.Names()),
		"max_iterations", cycleCfg.MaxIterations,
		"archive", c.Archive != nil,
		"journal", c.Journal != nil)
	return c, nil
}

// ReportData возвращает переменные промпта для запуска.
func (c *Components) ReportData(topic, recipient string) prompt.ReportData {
	return prompt.ReportData{
		Topic:       topic,
		Recipient:   recipient,
		ReportFile:  c.Report.FileName,
		ReportTitle: c.Report.Title,
	}
}

// Close освобождает ресурсы (журнал). Повторный вызов безопасен.
func (c *Components) Close() error {
	var errs []error
	if c.Journal != nil {
		errs = append(errs, c.Journal.Close())
		c.Journal = nil
	}
	return errors.Join(errs...)
}

func resolveAbsPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
