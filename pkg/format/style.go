package format

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorMuted = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C7086"}
	colorKey   = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"}
	colorLink  = lipgloss.AdaptiveColor{Light: "#8839EF", Dark: "#CBA6F7"}
	colorOpen  = lipgloss.AdaptiveColor{Light: "#40A02B", Dark: "#A6E3A1"}
	colorDone  = lipgloss.AdaptiveColor{Light: "#7C7F93", Dark: "#9399B2"}
	colorOther = lipgloss.AdaptiveColor{Light: "#DF8E1D", Dark: "#F9E2AF"}
)

// StatusColor picks a color for a status name. Unknown names share one color.
func StatusColor(status string) lipgloss.AdaptiveColor {
	switch strings.ToLower(status) {
	case "open", "to do", "todo", "new", "reopened":
		return colorOpen
	case "done", "closed", "resolved":
		return colorDone
	default:
		return colorOther
	}
}

// ConsoleStyler colors placeholders for terminal output.
func ConsoleStyler() Styler {
	prefix := lipgloss.NewStyle().Foreground(colorMuted)
	key := lipgloss.NewStyle().Bold(true).Foreground(colorKey)
	link := lipgloss.NewStyle().Italic(true).Foreground(colorLink)

	return func(variable, value string) string {
		switch variable {
		case "prefix":
			return prefix.Render(value)
		case "key":
			return key.Render(value)
		case "link_name":
			return link.Render(value)
		case "status_name":
			return lipgloss.NewStyle().Foreground(StatusColor(value)).Render(value)
		default:
			return value
		}
	}
}
