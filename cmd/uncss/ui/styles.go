// Package ui provides the visual styling for the uncss terminal page.
// Light and dark palettes share the same semantic colors.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	// Light Mode Colors (Default)
	LightForeground = lipgloss.Color("#1f2933")
	LightPrimary    = lipgloss.Color("#264de4") // CSS blue
	LightAccent     = lipgloss.Color("#2965f1")
	LightMuted      = lipgloss.Color("#7b8794")
	LightBorder     = lipgloss.Color("#cbd2d9")

	// Dark Mode Colors
	DarkForeground = lipgloss.Color("#e4e7eb")
	DarkPrimary    = lipgloss.Color("#7aa2ff")
	DarkAccent     = lipgloss.Color("#a5c0ff")
	DarkMuted      = lipgloss.Color("#616e7c")
	DarkBorder     = lipgloss.Color("#3e4c59")

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#43a047")
)

// Theme holds the current color scheme
type Theme struct {
	Name       string
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Name:       "light",
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Name:       "dark",
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// ThemeFor resolves the ui.theme setting. "auto" and unknown values detect.
func ThemeFor(name string) Theme {
	switch name {
	case "light":
		return LightTheme()
	case "dark":
		return DarkTheme()
	default:
		return DetectTheme()
	}
}

// DetectTheme auto-detects based on terminal or returns light mode
func DetectTheme() Theme {
	// Check for explicit dark mode preference
	if os.Getenv("UNCSS_DARK_MODE") == "1" {
		return DarkTheme()
	}

	// Format is usually "foreground;background"; 0-6 and 8 are dark backgrounds
	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		parts := strings.Split(colorTerm, ";")
		if bgIdx, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
				return DarkTheme()
			}
		}
	}

	return LightTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Layout
	Header lipgloss.Style
	Footer lipgloss.Style

	// Text
	Label lipgloss.Style
	Muted lipgloss.Style

	// Panels
	Panel        lipgloss.Style
	FocusedPanel lipgloss.Style
	ErrorPanel   lipgloss.Style

	// Buttons
	Button         lipgloss.Style
	FocusedButton  lipgloss.Style
	DisabledButton lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style

	// Components
	Spinner lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	button := lipgloss.NewStyle().
		Padding(0, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Foreground(theme.Foreground)

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Label: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Panel: panel,

		FocusedPanel: panel.
			BorderForeground(theme.Accent),

		ErrorPanel: panel.
			BorderForeground(Destructive).
			Foreground(Destructive),

		Button: button,

		FocusedButton: button.
			BorderForeground(theme.Accent).
			Foreground(theme.Accent).
			Bold(true),

		DisabledButton: button.
			Foreground(theme.Muted).
			Faint(true),

		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),
	}
}
