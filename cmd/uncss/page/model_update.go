package page

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"uncss/internal/submission"
)

// Update is the single event loop of the page.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case stateMsg:
		return m.applyState(submission.State(msg))

	case copiedMsg:
		m.logger.Debug("copy finished", zap.Stringer("feedback", msg.feedback))
		return m, nil

	case spinner.TickMsg:
		// Ticking stops once the request settles.
		if !m.state.IsLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Cursor blink and other widget messages
	var htmlCmd, cssCmd tea.Cmd
	m.html, htmlCmd = m.html.Update(msg)
	m.css, cssCmd = m.css.Update(msg)
	return m, tea.Batch(htmlCmd, cssCmd)
}

// applyState records a new controller snapshot and re-arms the listener.
func (m Model) applyState(s submission.State) (tea.Model, tea.Cmd) {
	prev := m.state
	m.state = s
	if s.Phase == submission.Succeeded {
		m.hasResult = true
	}
	if s.Output != prev.Output || s.Phase == submission.Succeeded {
		m.refreshOutput()
		m.output.GotoTop()
	}

	cmds := []tea.Cmd{m.waitForState()}
	if s.IsLoading() && !prev.IsLoading() {
		cmds = append(cmds, m.spinner.Tick)
	}
	m.logger.Debug("state applied", zap.Stringer("phase", s.Phase))
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Shutdown()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Next):
		return m.setFocus((m.focus + 1) % focusCount)

	case key.Matches(msg, m.keys.Prev):
		return m.setFocus((m.focus + focusCount - 1) % focusCount)

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyOutput()
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusSubmit:
		if msg.Type == tea.KeyEnter || msg.String() == " " {
			return m.submit()
		}
	case focusCopy:
		if msg.Type == tea.KeyEnter || msg.String() == " " {
			return m, m.copyOutput()
		}
	case focusOutput:
		m.output, cmd = m.output.Update(msg)
	case focusHTML:
		// Input is frozen while a request is in flight.
		if !m.state.IsLoading() {
			m.html, cmd = m.html.Update(msg)
		}
	case focusCSS:
		if !m.state.IsLoading() {
			m.css, cmd = m.css.Update(msg)
		}
	}
	return m, cmd
}

func (m Model) setFocus(f focusArea) (tea.Model, tea.Cmd) {
	m.focus = f
	m.html.Blur()
	m.css.Blur()

	var cmd tea.Cmd
	switch f {
	case focusHTML:
		cmd = m.html.Focus()
	case focusCSS:
		cmd = m.css.Focus()
	}
	return m, cmd
}

// submit hands the current input to the controller. The result arrives as
// stateMsg values.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.state.IsLoading() {
		return m, nil
	}
	m.controller.Submit(submission.Input{HTML: m.html.Value(), CSS: m.css.Value()})
	return m, nil
}

// copyOutput triggers the copy binding off the event loop.
func (m Model) copyOutput() tea.Cmd {
	b := m.binding
	return func() tea.Msg {
		return copiedMsg{feedback: b.Trigger()}
	}
}
