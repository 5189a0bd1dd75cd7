// Package utils предоставляет вспомогательные функции для обработки данных.
//
// Включает очистку аргументов tool calls от markdown-обёртки и
// укорачивание длинных строк для логов.
package utils

import (
	"strings"
	"unicode/utf8"
)

// CleanJsonBlock удаляет markdown-обёртку вокруг JSON.
//
// Некоторые модели присылают аргументы tool call обёрнутыми в код-блок:
//
//	```json
//	{"content": "..."}
//	```
//
// Примеры:
//
//	```json {"a": 1} ``` → {"a": 1}
//	``` {"a": 1} ``` → {"a": 1}
func CleanJsonBlock(s string) string {
	s = strings.TrimSpace(s)

	for _, prefix := range []string{"```json", "```JSON", "```Json", "```"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimPrefix(s, prefix)
			break
		}
	}
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}

// Truncate обрезает строку до max рун и добавляет "..." если что-то отрезано.
//
// Используется для логов и UI: результаты поиска и тексты отчётов бывают длинными.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}

// OneLine заменяет переводы строк пробелами (для однострочных логов).
func OneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
