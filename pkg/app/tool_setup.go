package app

import (
	"fmt"

	"github.com/ilkoid/poncho-trends/pkg/config"
	"github.com/ilkoid/poncho-trends/pkg/mailer"
	"github.com/ilkoid/poncho-trends/pkg/report"
	"github.com/ilkoid/poncho-trends/pkg/search"
	"github.com/ilkoid/poncho-trends/pkg/tools"
	"github.com/ilkoid/poncho-trends/pkg/tools/std"
	"github.com/ilkoid/poncho-trends/pkg/utils"
)

// ToolNames - все инструменты агента в порядке, в котором их требует промпт.
var ToolNames = []string{"duckduckgo_search", "pdf_generator", "email_sender"}

// ToolDeps - внешние зависимости инструментов, которые не создаются из конфига.
// Любое поле может быть nil.
type ToolDeps struct {
	// Archive получает копию каждого сгенерированного PDF.
	Archive std.Archiver
	// Searcher, Sender подменяют клиентов из конфига (тесты).
	Searcher std.Searcher
	Sender   std.Sender
}

// SetupTools регистрирует инструменты, включённые в секции tools.
//
// Rule 3: Все инструменты регистрируются через Registry.Register().
func SetupTools(registry *tools.Registry, cfg *config.AppConfig, deps ToolDeps) error {
	renderer := report.NewRenderer(cfg.Report)

	for _, name := range ToolNames {
		if !cfg.IsToolEnabled(name) {
			utils.Debug("Tool disabled, skipping", "name", name)
			continue
		}
		tool, err := buildTool(name, cfg, renderer, deps)
		if err != nil {
			return fmt.Errorf("tool %s: %w", name, err)
		}
		if err := registry.Register(tool); err != nil {
			return err
		}
		utils.Info("Tool registered", "name", name)
	}
	return nil
}

// buildTool создаёт инструмент по имени.
//
// Factory switch: для нового инструмента добавьте case сюда и имя в ToolNames.
func buildTool(name string, cfg *config.AppConfig, renderer *report.Renderer, deps ToolDeps) (tools.Tool, error) {
	switch name {
	case "duckduckgo_search":
		searcher := deps.Searcher
		if searcher == nil {
			searcher = search.New(cfg.Search)
		}
		return std.NewSearchTool(searcher), nil

	case "pdf_generator":
		tool := std.NewPDFTool(renderer)
		if deps.Archive != nil {
			tool.WithArchiver(deps.Archive)
		}
		return tool, nil

	case "email_sender":
		sender := deps.Sender
		if sender == nil {
			sender = mailer.New(mailer.ConfigFrom(cfg.Mail))
		}
		// Модель передаёт имена файлов так же, как в pdf_generator
		return std.NewEmailTool(sender, renderer.Path), nil

	default:
		return nil, fmt.Errorf("unknown tool")
	}
}
