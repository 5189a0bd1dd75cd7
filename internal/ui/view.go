// Рендер

package ui

import (
	"strings"
)

func (m Model) View() string {
	if !m.ready {
		return "Initializing UI..."
	}

	var b strings.Builder

	b.WriteString(m.styles.header.Width(m.width).Render("Market Trends Report Generator"))
	b.WriteString("\n\n")

	labels := [fieldCount]string{"Topic for Market Trends Report:", "Recipient Email for Report:"}
	for i := range m.inputs {
		b.WriteString(m.styles.label.Render(labels[i]))
		b.WriteString("\n")
		style := m.styles.blurred
		if i == m.focus {
			style = m.styles.focused
		}
		b.WriteString(style.Render(m.inputs[i].View()))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.border.Render(strings.Repeat("─", max(m.width, 1))))
	b.WriteString("\n")

	b.WriteString(m.log.View())
	b.WriteString("\n")
	b.WriteString(m.status.Render())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}
