package primitives

import (
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewportManager_AppendAndContent(t *testing.T) {
	vm := NewViewportManager()
	vm.Append("Line 1")
	vm.Append("Line 2")

	assert.Equal(t, []string{"Line 1", "Line 2"}, vm.Content())
	assert.Equal(t, 2, vm.GetViewport().TotalLineCount())

	vm.Reset()
	assert.Empty(t, vm.Content())
}

func TestViewportManager_MinDimensions(t *testing.T) {
	vm := NewViewportManager()
	vm.Append("Test content")

	vm.HandleResize(tea.WindowSizeMsg{Width: 10, Height: 5}, 3, 3)

	width, height := vm.GetDimensions()
	assert.Equal(t, 20, width, "Width should be minimum 20")
	assert.Equal(t, 1, height, "Height should be minimum 1")
}

func TestViewportManager_WrapsLongLines(t *testing.T) {
	vm := NewViewportManager()
	vm.HandleResize(tea.WindowSizeMsg{Width: 20, Height: 10}, 0, 0)

	vm.Append("one two three four five six seven")
	vm.Append("https://example.com/" + strings.Repeat("x", 30))

	vp := vm.GetViewport()
	assert.Greater(t, vp.TotalLineCount(), 2)
	for _, line := range strings.Split(vm.reflow(), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 20, "line %q exceeds width", line)
	}
	// Исходные строки не меняются
	assert.Len(t, vm.Content(), 2)
}

func TestViewportManager_FollowsBottom(t *testing.T) {
	vm := NewViewportManager()
	vm.HandleResize(tea.WindowSizeMsg{Width: 80, Height: 5}, 0, 0)

	for i := 0; i < 30; i++ {
		vm.Append("line")
	}
	vp := vm.GetViewport()
	assert.Equal(t, vp.TotalLineCount()-vp.Height, vp.YOffset)

	// Пользователь прокрутил вверх - новая строка не дёргает позицию
	vm.ScrollUp(10)
	before := vm.GetViewport().YOffset
	vm.Append("new line")
	assert.Equal(t, before, vm.GetViewport().YOffset)
}

func TestViewportManager_ResizeClamp(t *testing.T) {
	vm := NewViewportManager()
	vm.HandleResize(tea.WindowSizeMsg{Width: 80, Height: 10}, 0, 0)
	for i := 0; i < 20; i++ {
		vm.Append("line")
	}
	vm.ScrollUp(5)

	vm.HandleResize(tea.WindowSizeMsg{Width: 80, Height: 18}, 0, 0)

	vp := vm.GetViewport()
	maxOffset := max(vp.TotalLineCount()-vp.Height, 0)
	assert.LessOrEqual(t, vp.YOffset, maxOffset)
	assert.GreaterOrEqual(t, vp.YOffset, 0)
}

func TestViewportManager_ThreadSafety(t *testing.T) {
	vm := NewViewportManager()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			vm.HandleResize(tea.WindowSizeMsg{Width: 80, Height: 20 + i%10}, 3, 2)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			vm.Append("Append line")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = vm.View()
			_ = vm.Content()
		}
	}()
	wg.Wait()

	require.Len(t, vm.Content(), 100)
}
