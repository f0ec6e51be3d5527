package color

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette colors adapt to the terminal background.
var (
	Primary = lipgloss.AdaptiveColor{Light: "#5A4FCF", Dark: "#9F97FF"}
	Success = lipgloss.AdaptiveColor{Light: "#1B7F3B", Dark: "#5FD787"}
	Warning = lipgloss.AdaptiveColor{Light: "#A05A00", Dark: "#FFB454"}
	Error   = lipgloss.AdaptiveColor{Light: "#B3261E", Dark: "#FF6B6B"}
	Muted   = lipgloss.AdaptiveColor{Light: "#6B6B6B", Dark: "#8A8A8A"}
)

// Styles used by the command line output.
var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
	ErrorStyle   = lipgloss.NewStyle().Bold(true).Foreground(Error)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)
	KindStyle    = lipgloss.NewStyle().Foreground(Error)

	ErrorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Error).
			Padding(0, 1)
)

// Initialize sets the background mode used to pick adaptive colors.
func Initialize(isDarkMode bool) {
	lipgloss.SetHasDarkBackground(isDarkMode)
}

// InitializeFromEnv applies FLEWID_THEME (dark or light) when it is set.
// Otherwise lipgloss keeps its own background detection.
func InitializeFromEnv() {
	switch strings.ToLower(os.Getenv("FLEWID_THEME")) {
	case "dark":
		Initialize(true)
	case "light":
		Initialize(false)
	}
}

// Enabled reports whether styled output should be produced.
func Enabled() bool {
	_, noColor := os.LookupEnv("NO_COLOR")
	return !noColor
}

// Render applies style to s unless colors are disabled.
func Render(style lipgloss.Style, s string) string {
	if !Enabled() {
		return s
	}
	return style.Render(s)
}
