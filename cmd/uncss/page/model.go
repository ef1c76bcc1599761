// Package page is the single-page terminal UI: two input panes, a submit
// button, the reduced output and a copy button.
package page

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"uncss/cmd/uncss/ui"
	"uncss/internal/clipboard"
	"uncss/internal/logging"
	"uncss/internal/submission"
)

// Default size used until the first tea.WindowSizeMsg.
const (
	defaultWidth  = 120
	defaultHeight = 36
)

// Config holds what the page needs from its owner.
type Config struct {
	Controller *submission.Controller
	// Clipboard defaults to the system clipboard.
	Clipboard *clipboard.Adapter
	Styles    ui.Styles
	Logger    *zap.Logger
}

// Model is the bubbletea model of the page.
type Model struct {
	// Shared with the controller and adapter; survive model copies.
	controller   *submission.Controller
	binding      *clipboard.Binding
	states       <-chan submission.State
	unsubscribe  func()
	shutdownOnce *sync.Once

	html    textarea.Model
	css     textarea.Model
	output  viewport.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	// Last snapshot received from the controller
	state     submission.State
	hasResult bool

	focus  focusArea
	usage  string
	styles ui.Styles
	layout ui.LayoutConfig
	logger *zap.Logger
}

// New attaches the copy button, subscribes to the controller and builds the
// widgets.
func New(cfg Config) (Model, error) {
	if cfg.Controller == nil {
		return Model{}, errors.New("page: controller is required")
	}
	logger := logging.For(cfg.Logger, logging.CategoryUI)

	adapter := cfg.Clipboard
	if adapter == nil {
		adapter = clipboard.NewAdapter(clipboard.WithLogger(logging.For(cfg.Logger, logging.CategoryClipboard)))
	}

	ctrl := cfg.Controller
	binding, err := adapter.Attach(copyTrigger, clipboard.Options{
		Action: clipboard.ActionCopy,
		Target: func() string { return ctrl.State().Output },
	})
	if err != nil {
		return Model{}, fmt.Errorf("failed to attach copy button: %w", err)
	}
	binding.On(clipboard.EventSuccess, func(ev clipboard.Event) {
		logger.Debug("output copied", zap.Int("bytes", len(ev.Text)))
	})
	binding.On(clipboard.EventError, func(ev clipboard.Event) {
		logger.Info("copy failed", zap.Error(ev.Err))
	})

	states, unsubscribe := ctrl.Subscribe()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = cfg.Styles.Spinner

	m := Model{
		controller:   ctrl,
		binding:      binding,
		states:       states,
		unsubscribe:  unsubscribe,
		shutdownOnce: &sync.Once{},
		html:         newTextarea(htmlPlaceholder),
		css:          newTextarea(cssPlaceholder),
		output:       viewport.New(0, 0),
		spinner:      sp,
		help:         help.New(),
		keys:         defaultKeyMap(),
		state:        ctrl.State(),
		focus:        focusHTML,
		styles:       cfg.Styles,
		logger:       logger,
	}
	m.html.Focus()
	m.resize(defaultWidth, defaultHeight)
	return m, nil
}

func newTextarea(placeholder string) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	return ta
}

// Init starts the cursor blink and the state listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.waitForState())
}

// waitForState blocks for the next controller state. It yields nil once the
// subscription is closed, which ends the listener.
func (m Model) waitForState() tea.Cmd {
	states := m.states
	return func() tea.Msg {
		s, ok := <-states
		if !ok {
			return nil
		}
		return stateMsg(s)
	}
}

// Shutdown releases the subscription, the copy binding and the controller.
// It is safe to call more than once.
func (m Model) Shutdown() {
	m.shutdownOnce.Do(func() {
		m.unsubscribe()
		m.binding.Close()
		m.controller.Close()
		m.logger.Debug("page shut down")
	})
}

// resize lays the widgets out for a terminal of w x h cells.
func (m *Model) resize(w, h int) {
	m.layout = ui.NewLayoutConfig(w, h)
	inW, outW := m.layout.ColumnWidths()

	taH := m.layout.TextareaHeight()
	m.html.SetWidth(ui.PanelContentWidth(inW))
	m.html.SetHeight(taH)
	m.css.SetWidth(ui.PanelContentWidth(inW))
	m.css.SetHeight(taH)

	m.output.Width = ui.PanelContentWidth(outW)
	m.output.Height = m.layout.OutputHeight()
	m.help.Width = m.layout.TerminalWidth

	m.usage = renderUsage(m.output.Width, m.styles.Theme.IsDark)
	m.refreshOutput()
}

// refreshOutput puts the current output, or the usage section before the
// first result, into the output viewport.
func (m *Model) refreshOutput() {
	switch {
	case m.hasResult && m.state.Output != "":
		m.output.SetContent(m.state.Output)
	case m.hasResult:
		m.output.SetContent(m.styles.Muted.Render(outputLabel))
	default:
		m.output.SetContent(m.usage)
	}
}
