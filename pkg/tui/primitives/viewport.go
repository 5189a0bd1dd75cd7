// Package primitives предоставляет reusable low-level UI компоненты:
// ViewportManager (лог с переносом строк и smart scroll) и
// StatusBarManager (статус-бар со спиннером).
package primitives

import (
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

const (
	minWidth  = 20
	minHeight = 1
)

// ViewportManager управляет viewport лога.
//
// Хранит исходные строки без переноса и переносит их заново при каждом
// изменении ширины: сначала по словам (wordwrap), затем жёстко (wrap)
// для слов длиннее ширины (URL в результатах поиска).
//
// Thread-safe.
type ViewportManager struct {
	viewport viewport.Model
	logLines []string // Исходные строки без переноса
	mu       sync.RWMutex
}

// NewViewportManager создаёт пустой ViewportManager.
func NewViewportManager() *ViewportManager {
	return &ViewportManager{
		viewport: viewport.New(0, 0),
	}
}

// HandleResize пересчитывает размеры по окну терминала.
//
// Высота не бывает меньше 1: viewport с нулевой высотой перестаёт скроллиться.
// wasAtBottom считается ДО изменения высоты.
func (vm *ViewportManager) HandleResize(msg tea.WindowSizeMsg, headerHeight, footerHeight int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vpHeight := max(msg.Height-headerHeight-footerHeight, minHeight)
	vpWidth := max(msg.Width, minWidth)

	wasAtBottom := vm.atBottom()

	vm.viewport.Height = vpHeight
	vm.viewport.Width = vpWidth
	vm.viewport.SetContent(vm.reflow())

	if wasAtBottom {
		vm.viewport.GotoBottom()
		return
	}
	maxOffset := max(vm.viewport.TotalLineCount()-vm.viewport.Height, 0)
	if vm.viewport.YOffset > maxOffset {
		vm.viewport.SetYOffset(maxOffset)
	}
}

// Append добавляет строку. Если пользователь был внизу, лог прокручивается
// к новой строке, иначе позиция сохраняется.
func (vm *ViewportManager) Append(content string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	wasAtBottom := vm.atBottom()
	vm.logLines = append(vm.logLines, content)
	vm.viewport.SetContent(vm.reflow())
	if wasAtBottom {
		vm.viewport.GotoBottom()
	}
}

// Reset очищает лог (новый запуск).
func (vm *ViewportManager) Reset() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.logLines = nil
	vm.viewport.SetContent("")
	vm.viewport.GotoTop()
}

// Update пробрасывает сообщения (колесо мыши, PgUp/PgDn) во viewport.
func (vm *ViewportManager) Update(msg tea.Msg) tea.Cmd {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	var cmd tea.Cmd
	vm.viewport, cmd = vm.viewport.Update(msg)
	return cmd
}

// View рендерит viewport.
func (vm *ViewportManager) View() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.viewport.View()
}

// GetViewport возвращает копию viewport.Model.
func (vm *ViewportManager) GetViewport() viewport.Model {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.viewport
}

// Content возвращает исходные строки лога.
func (vm *ViewportManager) Content() []string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	out := make([]string, len(vm.logLines))
	copy(out, vm.logLines)
	return out
}

// ScrollUp прокручивает вверх на n строк.
func (vm *ViewportManager) ScrollUp(n int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.viewport.LineUp(n)
}

// ScrollDown прокручивает вниз на n строк.
func (vm *ViewportManager) ScrollDown(n int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.viewport.LineDown(n)
}

// GotoBottom прокручивает в конец.
func (vm *ViewportManager) GotoBottom() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.viewport.GotoBottom()
}

// GetDimensions возвращает текущие размеры.
func (vm *ViewportManager) GetDimensions() (width, height int) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.viewport.Width, vm.viewport.Height
}

// atBottom вызывается под mu.
func (vm *ViewportManager) atBottom() bool {
	return vm.viewport.YOffset+vm.viewport.Height >= vm.viewport.TotalLineCount()
}

// reflow переносит строки по текущей ширине. Вызывается под mu.
func (vm *ViewportManager) reflow() string {
	width := vm.viewport.Width
	if width <= 0 {
		return strings.Join(vm.logLines, "\n")
	}
	wrapped := make([]string, 0, len(vm.logLines))
	for _, line := range vm.logLines {
		wrapped = append(wrapped, wrap.String(wordwrap.String(line, width), width))
	}
	return strings.Join(wrapped, "\n")
}
