package primitives

import (
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// StatusBarManager - статус-бар со спиннером, индикатором DEBUG и
// дополнительной информацией (например, имя модели).
//
// Thread-safe.
type StatusBarManager struct {
	spinner      spinner.Model
	isProcessing bool
	label        string
	debugMode    bool
	extra        string
	mu           sync.RWMutex

	cfg StatusBarConfig
}

// StatusBarConfig - цвета статус-бара.
type StatusBarConfig struct {
	SpinnerColor    lipgloss.Color // когда агент работает
	IdleColor       lipgloss.Color // когда готов
	BackgroundColor lipgloss.Color
	DebugColor      lipgloss.Color
	DebugText       lipgloss.Color
	ExtraText       lipgloss.Color
}

// DefaultStatusBarConfig возвращает цвета по умолчанию.
func DefaultStatusBarConfig() StatusBarConfig {
	return StatusBarConfig{
		SpinnerColor:    lipgloss.Color("86"),
		IdleColor:       lipgloss.Color("242"),
		BackgroundColor: lipgloss.Color("235"),
		DebugColor:      lipgloss.Color("196"),
		DebugText:       lipgloss.Color("15"),
		ExtraText:       lipgloss.Color("252"),
	}
}

// NewStatusBarManager создаёт статус-бар.
func NewStatusBarManager(cfg StatusBarConfig) *StatusBarManager {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(cfg.SpinnerColor)

	return &StatusBarManager{
		spinner: s,
		cfg:     cfg,
	}
}

// Tick запускает анимацию спиннера.
func (sm *StatusBarManager) Tick() tea.Cmd {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.spinner.Tick
}

// Update обрабатывает spinner.TickMsg. Пока агент не работает, тики
// не продлеваются, и анимация останавливается.
func (sm *StatusBarManager) Update(msg tea.Msg) tea.Cmd {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if !sm.isProcessing {
		return nil
	}
	var cmd tea.Cmd
	sm.spinner, cmd = sm.spinner.Update(msg)
	return cmd
}

// Render возвращает статус-бар строкой.
func (sm *StatusBarManager) Render() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	text := "✓ Ready"
	color := sm.cfg.IdleColor
	if sm.isProcessing {
		text = sm.spinner.View() + " " + sm.label
		color = sm.cfg.SpinnerColor
	}

	out := lipgloss.NewStyle().
		Background(sm.cfg.BackgroundColor).
		Foreground(color).
		Padding(0, 1).
		Render(text)

	if sm.debugMode {
		out += lipgloss.NewStyle().
			Background(sm.cfg.DebugColor).
			Foreground(sm.cfg.DebugText).
			Bold(true).
			Padding(0, 1).
			Render("DEBUG")
	}

	if sm.extra != "" {
		out += lipgloss.NewStyle().
			Background(sm.cfg.BackgroundColor).
			Foreground(sm.cfg.ExtraText).
			Padding(0, 1).
			Render(sm.extra)
	}

	return out
}

// SetProcessing включает спиннер с подписью label.
func (sm *StatusBarManager) SetProcessing(processing bool, label string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.isProcessing = processing
	sm.label = label
}

// IsProcessing возвращает true, пока агент работает.
func (sm *StatusBarManager) IsProcessing() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.isProcessing
}

// SetDebugMode включает индикатор DEBUG.
func (sm *StatusBarManager) SetDebugMode(enabled bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.debugMode = enabled
}

// SetExtra задаёт дополнительную информацию справа (имя модели).
func (sm *StatusBarManager) SetExtra(extra string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.extra = extra
}
