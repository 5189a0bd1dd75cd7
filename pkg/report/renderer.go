package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"github.com/ilkoid/poncho-trends/pkg/config"
	"github.com/ilkoid/poncho-trends/pkg/utils"
)

// Геометрия страницы в миллиметрах.
const (
	titleFontSize = 16
	bodyFontSize  = 12
	cellHeight    = 10
	gapHeight     = 5
	fontFamily    = "Arial"
)

// Request - данные для одного документа.
type Request struct {
	Content  string
	Filename string
	Title    string
}

// Renderer пишет PDF файлы в outputDir. Не хранит состояния между вызовами.
type Renderer struct {
	outputDir    string
	wrapWidth    int
	defaultTitle string
}

// NewRenderer создаёт рендерер из секции report конфигурации.
func NewRenderer(cfg config.ReportConfig) *Renderer {
	cfg = cfg.GetDefaults()
	return &Renderer{
		outputDir:    cfg.OutputDir,
		wrapWidth:    cfg.WrapWidth,
		defaultTitle: cfg.DefaultTitle,
	}
}

// Path возвращает путь, по которому будет записан (или найден) файл.
// Относительные имена разрешаются от output_dir.
func (r *Renderer) Path(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(r.outputDir, filename)
}

// Render создаёт PDF и возвращает сообщение для LLM.
//
// Существующий файл перезаписывается. Ошибки записи возвращаются,
// а не превращаются в текст.
func (r *Renderer) Render(req Request) (string, error) {
	if req.Filename == "" {
		return "", fmt.Errorf("filename is required")
	}
	title := req.Title
	if title == "" {
		title = r.defaultTitle
	}

	lines := Layout(req.Content, r.wrapWidth)
	doc := build(title, lines)

	path := r.Path(req.Filename)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	if err := doc.OutputFileAndClose(path); err != nil {
		utils.Error("PDF write failed", "file", path, "error", err)
		return "", fmt.Errorf("failed to write pdf %s: %w", path, err)
	}

	utils.Info("PDF generated", "file", path, "title", title, "lines", len(lines))
	return fmt.Sprintf("Successfully generated %s", req.Filename), nil
}

// build собирает документ: заголовок по центру, затем строки тела.
func build(title string, lines []Line) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	// Core шрифты работают в cp1252, переводим UTF-8 типографику LLM
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", titleFontSize)
	pdf.CellFormat(0, cellHeight, tr(title), "", 1, "C", false, 0, "")

	pdf.SetFont(fontFamily, "", bodyFontSize)
	for _, line := range lines {
		if line.Gap {
			pdf.Ln(gapHeight)
			continue
		}
		pdf.CellFormat(0, cellHeight, tr(line.Text), "", 1, "", false, 0, "")
	}

	return pdf
}
