// Красота

package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ilkoid/poncho-trends/pkg/tui"
)

type styles struct {
	header  lipgloss.Style
	label   lipgloss.Style
	focused lipgloss.Style
	blurred lipgloss.Style

	system  lipgloss.Style
	tool    lipgloss.Style
	message lipgloss.Style
	warning lipgloss.Style
	success lipgloss.Style
	errorS  lipgloss.Style
	border  lipgloss.Style
}

func newStyles(c tui.ColorScheme) styles {
	return styles{
		header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(c.FocusedEdge).
			Padding(0, 1).
			Bold(true),
		label:   lipgloss.NewStyle().Foreground(c.Label).Bold(true),
		focused: lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(c.FocusedEdge).PaddingLeft(1),
		blurred: lipgloss.NewStyle().Border(lipgloss.HiddenBorder(), false, false, false, true).PaddingLeft(1),

		system:  lipgloss.NewStyle().Foreground(c.SystemMessage),
		tool:    lipgloss.NewStyle().Foreground(c.Label),
		message: lipgloss.NewStyle().Foreground(c.AIMessage),
		warning: lipgloss.NewStyle().Foreground(c.Warning),
		success: lipgloss.NewStyle().Foreground(c.Success).Bold(true),
		errorS:  lipgloss.NewStyle().Foreground(c.ErrorMessage).Bold(true),
		border:  lipgloss.NewStyle().Foreground(c.Border),
	}
}

// forLine выбирает стиль для строки лога.
func (s styles) forLine(kind tui.Kind) lipgloss.Style {
	switch kind {
	case tui.KindTool:
		return s.tool
	case tui.KindMessage:
		return s.message
	case tui.KindError:
		return s.errorS
	}
	return s.system
}
