package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile, computed once at init.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme holds the pager's colors and pre-built styles.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary lipgloss.AdaptiveColor
	Subtext lipgloss.AdaptiveColor
	Border  lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor

	Header lipgloss.Style
	Footer lipgloss.Style
	Status lipgloss.Style
	Alert  lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,
		Primary:  lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Subtext:  lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},
		Border:   lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Error:    lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
	}

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)
	t.Footer = r.NewStyle().
		Foreground(t.Subtext).
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(t.Border)
	t.Status = r.NewStyle().Foreground(ThemeFg("#50FA7B"))
	t.Alert = r.NewStyle().Foreground(t.Error).Bold(true)
	return t
}

// TestTheme returns a theme for tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
