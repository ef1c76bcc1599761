// Package ui layout constants for consistent spacing and dimensions
package ui

// Layout constants for panel sizing
const (
	// Split pane dimensions (inputs left, output right)
	SplitPaneLeftRatio = 0.5
	SplitPaneDivider   = 1

	// Panel borders and spacing
	PanelBorderWidth = 1
	PanelPaddingH    = 1

	// Fixed rows
	HeaderHeight   = 1
	FooterHeight   = 1
	ButtonHeight   = 3
	LabelHeight    = 1
	FeedbackHeight = 1

	// Responsive breakpoints
	MinimumTerminalWidth  = 60
	MinimumTerminalHeight = 20
	CompactModeWidth      = 100

	MinTextareaHeight = 3
)

// LayoutConfig provides computed layout dimensions based on terminal size
type LayoutConfig struct {
	TerminalWidth  int
	TerminalHeight int
	// IsCompact stacks the output under the inputs instead of beside them.
	IsCompact bool
}

// NewLayoutConfig creates a layout configuration for the given terminal size
func NewLayoutConfig(width, height int) LayoutConfig {
	if width < MinimumTerminalWidth {
		width = MinimumTerminalWidth
	}
	if height < MinimumTerminalHeight {
		height = MinimumTerminalHeight
	}
	return LayoutConfig{
		TerminalWidth:  width,
		TerminalHeight: height,
		IsCompact:      width < CompactModeWidth,
	}
}

// ColumnWidths returns the outer widths of the input and output columns.
// In compact mode both span the terminal.
func (l LayoutConfig) ColumnWidths() (input, output int) {
	if l.IsCompact {
		return l.TerminalWidth, l.TerminalWidth
	}
	return SplitPaneWidths(l.TerminalWidth)
}

// BodyHeight is the height left for panels after header and footer.
func (l LayoutConfig) BodyHeight() int {
	return l.TerminalHeight - HeaderHeight - FooterHeight
}

// TextareaHeight is the height of each of the two input textareas.
func (l LayoutConfig) TextareaHeight() int {
	// Two labelled panels and the submit button share the input column.
	avail := l.BodyHeight() - ButtonHeight - 2*(LabelHeight+2*PanelBorderWidth)
	if l.IsCompact {
		avail -= l.OutputHeight() + ButtonHeight + FeedbackHeight + LabelHeight + 2*PanelBorderWidth
	}
	h := avail / 2
	if h < MinTextareaHeight {
		h = MinTextareaHeight
	}
	return h
}

// OutputHeight is the height of the output viewport.
func (l LayoutConfig) OutputHeight() int {
	if l.IsCompact {
		h := l.BodyHeight() / 4
		if h < MinTextareaHeight {
			h = MinTextareaHeight
		}
		return h
	}
	h := l.BodyHeight() - LabelHeight - 2*PanelBorderWidth - ButtonHeight - FeedbackHeight
	if h < MinTextareaHeight {
		h = MinTextareaHeight
	}
	return h
}

// SplitPaneWidths calculates left and right pane widths for a split view
func SplitPaneWidths(totalWidth int) (leftWidth, rightWidth int) {
	leftWidth = int(float64(totalWidth) * SplitPaneLeftRatio)
	rightWidth = totalWidth - leftWidth - SplitPaneDivider
	return
}

// PanelContentWidth returns the content width inside a bordered panel
func PanelContentWidth(panelWidth int) int {
	w := panelWidth - (PanelBorderWidth * 2) - (PanelPaddingH * 2)
	if w < 1 {
		return 1
	}
	return w
}
