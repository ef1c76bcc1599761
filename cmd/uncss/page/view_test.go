package page

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"uncss/internal/reduction"
)

func TestView_InitialPage(t *testing.T) {
	p := NewTestModel(t)
	view := p.View()

	for _, want := range []string{titleText, htmlLabel, cssLabel, submitLabel, outputLabel, copyLabel} {
		assert.Contains(t, view, want)
	}
	// Usage is shown in the output pane until the first result.
	assert.Contains(t, view, "用法")
	assert.NotContains(t, view, "ValidationError")
	assert.NotContains(t, view, "已复制到剪贴板")
}

func TestView_ErrorPanel(t *testing.T) {
	p := NewTestModel(t)

	p.key(tea.KeyCtrlS)
	p.nextState(t)

	view := p.View()
	assert.Contains(t, view, "ValidationError")
	assert.Contains(t, view, "无法处理空HTML")
}

func TestView_ErrorPanelClearedBySuccess(t *testing.T) {
	p := NewTestModel(t)
	p.fill("<b></b>", "b{}")

	p.key(tea.KeyCtrlS)
	p.nextState(t)
	p.resolve(t, "", reduction.Transportf("request failed with status code %d", 502))
	p.nextState(t)
	assert.Contains(t, p.View(), "TransportError")

	p.key(tea.KeyCtrlS)
	p.nextState(t)
	assert.NotContains(t, p.View(), "TransportError", "error panel hides while loading")

	p.resolve(t, "b {}", nil)
	p.nextState(t)
	view := p.View()
	assert.NotContains(t, view, "TransportError")
	assert.Contains(t, view, "b {}")
	assert.NotContains(t, view, "用法")
}

func TestView_LoadingShowsSpinner(t *testing.T) {
	p := NewTestModel(t)
	p.fill("<b></b>", "b{}")

	idle := p.renderSubmit()
	p.key(tea.KeyCtrlS)
	p.nextState(t)
	loading := p.renderSubmit()

	assert.NotEqual(t, idle, loading)
	assert.Contains(t, loading, submitLabel)
	assert.Contains(t, loading, strings.TrimSpace(p.spinner.View()))

	p.resolve(t, "", nil)
	p.nextState(t)
}

func TestView_CopyFeedback(t *testing.T) {
	p := NewTestModel(t)

	p.send(p.key(tea.KeyCtrlY)())
	assert.Contains(t, p.View(), "已复制到剪贴板")

	p.clip.err = errNoClipboard
	p.send(p.key(tea.KeyCtrlY)())
	view := p.View()
	assert.Contains(t, view, "按Command+C复制")
	assert.NotContains(t, view, "已复制到剪贴板")
}

func TestView_CompactLayoutStacksColumns(t *testing.T) {
	p := NewTestModel(t)
	p.send(tea.WindowSizeMsg{Width: 70, Height: 40})

	view := p.View()
	htmlAt := strings.Index(view, htmlLabel)
	outAt := strings.Index(view, outputLabel)
	submitAt := strings.Index(view, submitLabel)

	assert.True(t, htmlAt >= 0 && outAt > submitAt, "output should follow the inputs in compact mode")
}

func TestRenderUsage(t *testing.T) {
	out := renderUsage(60, false)
	assert.Contains(t, out, "用法")
	assert.Contains(t, out, "PostCSS")
	assert.NotEqual(t, usageMarkdown, out)
}
