package page

import (
	"github.com/charmbracelet/bubbles/key"

	"uncss/internal/clipboard"
	"uncss/internal/submission"
)

// Page text
const (
	titleText       = "UnCSS Online!"
	subtitleText    = "在线清除多余的CSS样式！"
	htmlLabel       = "你的HTML代码"
	cssLabel        = "你的CSS代码"
	htmlPlaceholder = "在此处插入HTML代码"
	cssPlaceholder  = "在此处插入CSS代码"
	submitLabel     = "清除多余代码"
	outputLabel     = "缩短后的CSS"
	copyLabel       = "复制到剪贴板"
)

// copyTrigger is the clipboard binding owned by the copy button.
const copyTrigger = "copy-output"

// focusArea is one stop of the tab ring.
type focusArea int

const (
	focusHTML focusArea = iota
	focusCSS
	focusSubmit
	focusOutput
	focusCopy
	focusCount
)

func (f focusArea) String() string {
	switch f {
	case focusHTML:
		return "html"
	case focusCSS:
		return "css"
	case focusSubmit:
		return "submit"
	case focusOutput:
		return "output"
	case focusCopy:
		return "copy"
	default:
		return "unknown"
	}
}

// stateMsg carries a controller state snapshot into the event loop.
type stateMsg submission.State

// copiedMsg reports a finished copy attempt.
type copiedMsg struct {
	feedback clipboard.Feedback
}

// keyMap holds the page-wide bindings. Enter is handled per focus area.
type keyMap struct {
	Submit key.Binding
	Copy   key.Binding
	Next   key.Binding
	Prev   key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", submitLabel)),
		Copy:   key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", copyLabel)),
		Next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Copy, k.Next, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Submit, k.Copy}, {k.Next, k.Prev, k.Quit}}
}
