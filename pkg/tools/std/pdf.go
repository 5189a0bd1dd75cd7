package std

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ilkoid/poncho-trends/pkg/report"
	"github.com/ilkoid/poncho-trends/pkg/tools"
	"github.com/ilkoid/poncho-trends/pkg/utils"
)

// Renderer - рендер PDF (report.Renderer).
type Renderer interface {
	Render(req report.Request) (string, error)
	Path(filename string) string
}

// Archiver копирует готовый файл во внешнее хранилище.
type Archiver interface {
	Archive(ctx context.Context, path string) (string, error)
}

// --- Tool: pdf_generator ---

type PDFTool struct {
	renderer Renderer
	archiver Archiver
}

func NewPDFTool(r Renderer) *PDFTool {
	return &PDFTool{renderer: r}
}

// WithArchiver включает копирование отчётов в архив после рендера.
// Ошибка архива не ломает инструмент: файл на диске уже есть.
func (t *PDFTool) WithArchiver(a Archiver) *PDFTool {
	t.archiver = a
	return t
}

func (t *PDFTool) Definition() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        "pdf_generator",
		Description: "Generate a PDF document from text content. Saves the file locally and returns a status message.",
		Parameters: tools.JSONSchema{
			"type": "object",
			"properties": map[string]any{
				"content": map[string]any{
					"type":        "string",
					"description": "The body text of the document. Blank lines separate paragraphs.",
				},
				"filename": map[string]any{
					"type":        "string",
					"description": "Name of the PDF file to create, e.g. report.pdf.",
				},
				"title": map[string]any{
					"type":        "string",
					"description": "Title printed at the top of the first page.",
				},
			},
			"required": []string{"content", "filename"},
		},
	}
}

func (t *PDFTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	var args struct {
		Content  string `json:"content"`
		Filename string `json:"filename"`
		Title    string `json:"title"`
	}
	if err := json.Unmarshal([]byte(utils.CleanJsonBlock(argsJSON)), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	msg, err := t.renderer.Render(report.Request{
		Content:  args.Content,
		Filename: args.Filename,
		Title:    args.Title,
	})
	if err != nil {
		return "", err
	}

	if t.archiver != nil {
		if key, err := t.archiver.Archive(ctx, t.renderer.Path(args.Filename)); err != nil {
			utils.Warn("Report archive failed", "file", args.Filename, "error", err)
		} else {
			utils.Info("Report archived", "file", args.Filename, "key", key)
		}
	}

	return msg, nil
}
