// Package std - инструменты агента отчётов: поиск, PDF, почта.
//
// Каждый инструмент - тонкая обёртка для function calling: разбирает JSON
// аргументы модели и вызывает соответствующий пакет (search, report, mailer).
package std

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ilkoid/poncho-trends/pkg/search"
	"github.com/ilkoid/poncho-trends/pkg/tools"
	"github.com/ilkoid/poncho-trends/pkg/utils"
)

// Searcher - то, что нужно инструменту от поискового клиента.
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// --- Tool: duckduckgo_search ---

type SearchTool struct {
	searcher Searcher
}

func NewSearchTool(s Searcher) *SearchTool {
	return &SearchTool{searcher: s}
}

func (t *SearchTool) Definition() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        "duckduckgo_search",
		Description: "Search the web with DuckDuckGo. Use it to find recent information, news and trends. Input is a search query.",
		Parameters: tools.JSONSchema{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query.",
				},
			},
			"required": []string{"query"},
		},
	}
}

func (t *SearchTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(utils.CleanJsonBlock(argsJSON)), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(args.Query) == "" {
		return "", fmt.Errorf("query is required")
	}

	results, err := t.searcher.Search(ctx, args.Query)
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}
	return search.Format(results), nil
}
