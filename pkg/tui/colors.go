package tui

import "github.com/charmbracelet/lipgloss"

// ColorScheme определяет цвета для элементов TUI.
//
// Каждое поле - это lipgloss.Color (может быть hex, ANSI, или named color).
type ColorScheme struct {
	// Status Bar
	StatusBackground lipgloss.Color
	StatusForeground lipgloss.Color

	// Messages
	SystemMessage lipgloss.Color // Прогресс и события инструментов
	AIMessage     lipgloss.Color // Финальный ответ агента
	ErrorMessage  lipgloss.Color
	Warning       lipgloss.Color
	Success       lipgloss.Color

	// Form
	Label       lipgloss.Color
	FocusedEdge lipgloss.Color
	Border      lipgloss.Color
}

// ColorSchemes предоставляет предустановленные цветовые схемы.
var ColorSchemes = map[string]ColorScheme{
	"default": {
		StatusBackground: lipgloss.Color("235"),
		StatusForeground: lipgloss.Color("252"),
		SystemMessage:    lipgloss.Color("242"),
		AIMessage:        lipgloss.Color("86"),
		ErrorMessage:     lipgloss.Color("196"),
		Warning:          lipgloss.Color("214"),
		Success:          lipgloss.Color("#04B575"),
		Label:            lipgloss.Color("252"),
		FocusedEdge:      lipgloss.Color("62"),
		Border:           lipgloss.Color("240"),
	},
	"dracula": {
		StatusBackground: lipgloss.Color("#282a36"),
		StatusForeground: lipgloss.Color("#f8f8f2"),
		SystemMessage:    lipgloss.Color("#6272a4"),
		AIMessage:        lipgloss.Color("#8be9fd"),
		ErrorMessage:     lipgloss.Color("#ff5555"),
		Warning:          lipgloss.Color("#ffb86c"),
		Success:          lipgloss.Color("#50fa7b"),
		Label:            lipgloss.Color("#f8f8f2"),
		FocusedEdge:      lipgloss.Color("#bd93f9"),
		Border:           lipgloss.Color("#44475a"),
	},
}

// DefaultColorScheme возвращает схему по умолчанию.
func DefaultColorScheme() ColorScheme {
	return ColorSchemes["default"]
}

// GetColorScheme возвращает цветовую схему по имени.
//
// Если схема не найдена, возвращает default.
func GetColorScheme(name string) ColorScheme {
	if scheme, ok := ColorSchemes[name]; ok {
		return scheme
	}
	return DefaultColorScheme()
}
