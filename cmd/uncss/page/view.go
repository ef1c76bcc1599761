package page

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"uncss/internal/clipboard"
	"uncss/internal/submission"
)

// View renders the page from the last state snapshot and the copy feedback.
func (m Model) View() string {
	var sections []string

	sections = append(sections, m.renderHeader())
	if panel := m.renderError(); panel != "" {
		sections = append(sections, panel)
	}

	inputs, outputs := m.renderInputColumn(), m.renderOutputColumn()
	if m.layout.IsCompact {
		sections = append(sections, inputs, outputs)
	} else {
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, inputs, " ", outputs))
	}

	sections = append(sections, m.styles.Footer.Render(m.help.View(m.keys)))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	return m.styles.Header.Render(titleText) + " " + m.styles.Muted.Render(subtitleText)
}

// renderError shows the failure category and message, only when Failed.
func (m Model) renderError() string {
	if m.state.Phase != submission.Failed || m.state.Err == nil {
		return ""
	}
	body := m.styles.Error.Render(m.state.Err.Kind.String()) + "\n" + m.state.Err.Message
	return m.styles.ErrorPanel.Width(m.layout.TerminalWidth - 2).Render(body)
}

func (m Model) renderInputColumn() string {
	inW, _ := m.layout.ColumnWidths()

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Label.Render(htmlLabel),
		m.panel(focusHTML, inW).Render(m.html.View()),
		m.styles.Label.Render(cssLabel),
		m.panel(focusCSS, inW).Render(m.css.View()),
		m.renderSubmit(),
	)
}

func (m Model) renderOutputColumn() string {
	_, outW := m.layout.ColumnWidths()

	parts := []string{
		m.styles.Label.Render(outputLabel),
		m.panel(focusOutput, outW).Render(m.output.View()),
		m.button(focusCopy, copyLabel, false),
	}
	if fb := m.renderFeedback(); fb != "" {
		parts = append(parts, fb)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderSubmit draws the submit button, disabled with a spinner while Loading.
func (m Model) renderSubmit() string {
	if m.state.IsLoading() {
		return m.button(focusSubmit, m.spinner.View()+" "+submitLabel, true)
	}
	return m.button(focusSubmit, submitLabel, false)
}

func (m Model) renderFeedback() string {
	fb := m.binding.Feedback()
	switch fb {
	case clipboard.CopySucceeded:
		return m.styles.Success.Render(fb.Message())
	case clipboard.CopyFailed:
		return m.styles.Error.Render(fb.Message())
	default:
		return ""
	}
}

func (m Model) panel(area focusArea, width int) lipgloss.Style {
	style := m.styles.Panel
	if m.focus == area {
		style = m.styles.FocusedPanel
	}
	return style.Width(width - 2)
}

func (m Model) button(area focusArea, label string, disabled bool) string {
	style := m.styles.Button
	switch {
	case disabled:
		style = m.styles.DisabledButton
	case m.focus == area:
		style = m.styles.FocusedButton
	}
	return style.Render(strings.TrimSpace(label))
}
