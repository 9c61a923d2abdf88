package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	PrimaryColor = lipgloss.Color("#C51A4A") // raspberry
	AccentColor  = lipgloss.Color("#75A928") // leaf
	textColor    = lipgloss.Color("#FFFFFF")
	subtextColor = lipgloss.Color("#B0B0B0")
	mutedColor   = lipgloss.Color("#6C6C6C")
)

var (
	PrimaryStyle = lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ECC71")).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F1C40F")).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C")).Bold(true)
	InfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B9BD5")).Bold(true)
	WhiteStyle   = lipgloss.NewStyle().Foreground(textColor)
	ValueStyle   = lipgloss.NewStyle().Foreground(subtextColor)
	MutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)

	titleStyle  = lipgloss.NewStyle().Foreground(textColor).Bold(true)
	bulletStyle = lipgloss.NewStyle().Foreground(AccentColor)
)

// Progress bar cells
const (
	ProgressFull  = "█"
	ProgressEmpty = "░"
)

// sectionWidth is the inner width of section rules
const sectionWidth = 60

type statusMark struct {
	icon  string
	style lipgloss.Style
}

var statusMarks = map[string]statusMark{
	"success": {"✓", SuccessStyle},
	"warning": {"⚠", WarningStyle},
	"error":   {"✗", ErrorStyle},
	"info":    {"ℹ", InfoStyle},
}

const banner = `██████╗ ██╗███╗   ███╗ ██████╗ ███╗   ██╗██╗████████╗ ██████╗ ██████╗
██╔══██╗██║████╗ ████║██╔═══██╗████╗  ██║██║╚══██╔══╝██╔═══██╗██╔══██╗
██████╔╝██║██╔████╔██║██║   ██║██╔██╗ ██║██║   ██║   ██║   ██║██████╔╝
██╔═══╝ ██║██║╚██╔╝██║██║   ██║██║╚██╗██║██║   ██║   ██║   ██║██╔══██╗
██║     ██║██║ ╚═╝ ██║╚██████╔╝██║ ╚████║██║   ██║   ╚██████╔╝██║  ██║
╚═╝     ╚═╝╚═╝     ╚═╝ ╚═════╝ ╚═╝  ╚═══╝╚═╝   ╚═╝    ╚═════╝ ╚═╝  ╚═╝`

// RenderBanner returns the styled ASCII banner
func RenderBanner() string {
	return PrimaryStyle.Render(banner)
}

// RenderSubtitle returns text centered under the banner
func RenderSubtitle(text string) string {
	return titleStyle.Render(strings.Repeat(" ", 24) + text)
}

// RenderSectionStart returns "┌─ title ───┐" padded to the section width
func RenderSectionStart(title string) string {
	dashes := sectionWidth - len(title) - 4
	if dashes < 0 {
		dashes = 0
	}
	return PrimaryStyle.Render("┌─ ") + titleStyle.Render(title) +
		PrimaryStyle.Render(" ─"+strings.Repeat("─", dashes)+"┐")
}

// RenderSectionEnd returns the closing rule of a section
func RenderSectionEnd() string {
	return PrimaryStyle.Render("└" + strings.Repeat("─", sectionWidth) + "┘")
}

// RenderStatus returns message behind the icon for status; unknown statuses render as info
func RenderStatus(status, message string) string {
	mark, ok := statusMarks[status]
	if !ok {
		mark = statusMarks["info"]
	}
	return "  " + mark.style.Render(mark.icon) + " " + WhiteStyle.Render(message)
}

// RenderKeyValue returns one bulleted "key : value" row
func RenderKeyValue(key, value string) string {
	return "  " + bulletStyle.Render("•") + " " + WhiteStyle.Render(key) + " " +
		MutedStyle.Render(":") + " " + ValueStyle.Render(value)
}

// RenderProgressBar returns a bar filled to percent, colored by pressure
func RenderProgressBar(percent float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := int(percent / 100 * float64(width))
	filled = max(0, min(filled, width))

	style := SuccessStyle
	switch {
	case percent >= 90:
		style = ErrorStyle
	case percent >= 70:
		style = WarningStyle
	}
	return style.Render(strings.Repeat(ProgressFull, filled)) +
		MutedStyle.Render(strings.Repeat(ProgressEmpty, width-filled))
}
