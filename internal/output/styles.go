package output

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/gitguardhq/gitguard/internal/verdict"
)

// Color palette.
var (
	colorRed    = lipgloss.Color("#ff5555")
	colorGreen  = lipgloss.Color("#50fa7b")
	colorYellow = lipgloss.Color("#f1fa8c")
	colorBlue   = lipgloss.Color("#8be9fd")
	colorDim    = lipgloss.Color("#6272a4")
)

// Style definitions.
var (
	passStyle  = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	blockStyle = lipgloss.NewStyle().Foreground(colorRed).Bold(true)

	issueBlockStyle = lipgloss.NewStyle().Foreground(colorRed)
	issueWarnStyle  = lipgloss.NewStyle().Foreground(colorYellow)
	issueInfoStyle  = lipgloss.NewStyle().Foreground(colorBlue)

	dimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

func statusLabel(s verdict.Status) string {
	switch s {
	case verdict.StatusPass:
		return passStyle.Render("PASS")
	case verdict.StatusWarn:
		return warnStyle.Render("WARN")
	case verdict.StatusBlock:
		return blockStyle.Render("BLOCK")
	default:
		return string(s)
	}
}

func severityIcon(s verdict.Severity) string {
	switch s {
	case verdict.SeverityBlock:
		return issueBlockStyle.Render("[!!]")
	case verdict.SeverityWarn:
		return issueWarnStyle.Render("[!]")
	case verdict.SeverityInfo:
		return issueInfoStyle.Render("[-]")
	default:
		return "[?]"
	}
}
