// Package styles provides the colour theme for the batch progress view.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette of the progress view.
type Theme struct {
	// Accent colours the title, spinner and progress bar start.
	Accent lipgloss.Color

	// AccentEnd is the progress bar gradient end.
	AccentEnd lipgloss.Color

	// Text is the default text colour.
	Text lipgloss.Color

	// Muted is for help and status text.
	Muted lipgloss.Color

	// Success marks converted letters and a completed batch.
	Success lipgloss.Color

	// Warning marks a cancelled batch.
	Warning lipgloss.Color

	// Error marks participant and critical errors.
	Error lipgloss.Color

	// Border frames the event log.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#7C3AED"), // Purple
		AccentEnd: lipgloss.Color("#06B6D4"), // Cyan
		Text:      lipgloss.Color("#CDD6F4"), // Light gray
		Muted:     lipgloss.Color("#6C7086"), // Medium gray
		Success:   lipgloss.Color("#A6E3A1"), // Green
		Warning:   lipgloss.Color("#F9E2AF"), // Yellow
		Error:     lipgloss.Color("#F38BA8"), // Red
		Border:    lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains the lipgloss styles of the progress view.
type Styles struct {
	theme *Theme

	Title   lipgloss.Style
	Message lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Log     lipgloss.Style
	Help    lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme selects the default.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme:   theme,
		Title:   lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		Message: lipgloss.NewStyle().Foreground(theme.Text),
		Muted:   lipgloss.NewStyle().Foreground(theme.Muted),
		Success: lipgloss.NewStyle().Foreground(theme.Success),
		Warning: lipgloss.NewStyle().Foreground(theme.Warning),
		Error:   lipgloss.NewStyle().Foreground(theme.Error),
		Log: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		Help: lipgloss.NewStyle().Foreground(theme.Muted).MarginTop(1),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
