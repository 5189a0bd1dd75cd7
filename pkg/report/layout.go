// Package report рендерит текстовый отчёт в PDF.
//
// Разбивка текста на строки (Layout) отделена от записи PDF,
// чтобы правила переноса можно было тестировать без файлов.
package report

import (
	"strings"
	"unicode"

	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// Line - одна строка тела документа.
//
// Gap == true означает пустую строку исходника: вместо текста
// рендерер делает вертикальный отступ.
type Line struct {
	Text string
	Gap  bool
}

// Layout разбивает content на строки шириной не более width символов.
//
// Правила:
//   - исходный текст делится по '\n';
//   - управляющие символы (ESC последовательности, \r) удаляются, таб
//     становится пробелом: reflow считает ANSI коды нулевой ширины;
//   - пустая строка (или только пробелы) превращается в Gap;
//   - перенос идёт по пробелам, слово длиннее width режется жёстко.
//
// width <= 0 отключает перенос.
func Layout(content string, width int) []Line {
	var lines []Line

	for _, raw := range strings.Split(content, "\n") {
		raw = strings.TrimRight(stripControl(raw), " ")
		if strings.TrimSpace(raw) == "" {
			lines = append(lines, Line{Gap: true})
			continue
		}
		if width <= 0 {
			lines = append(lines, Line{Text: raw})
			continue
		}

		wrapped := wrap.String(wordwrap.String(raw, width), width)
		for _, part := range strings.Split(wrapped, "\n") {
			part = strings.TrimRight(part, " ")
			if part == "" {
				continue
			}
			lines = append(lines, Line{Text: part})
		}
	}

	return lines
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}
