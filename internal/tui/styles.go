package tui

import "github.com/charmbracelet/lipgloss"

// Palette colors for the default theme.
var (
	primaryColor   = lipgloss.Color("#7D56F4")
	secondaryColor = lipgloss.Color("#04B575")
	warningColor   = lipgloss.Color("#FFB86C")
	errorColor     = lipgloss.Color("#FF5555")
	mutedColor     = lipgloss.Color("#6C6C6C")
	textColor      = lipgloss.Color("#FAFAFA")
	borderColor    = lipgloss.Color("#444444")
)

// Styles holds the resolved lipgloss styles for one theme.
type Styles struct {
	Header      lipgloss.Style
	HeaderMeta  lipgloss.Style
	UserLabel   lipgloss.Style
	PartyLabel  lipgloss.Style
	UserMsg     lipgloss.Style
	PartyMsg    lipgloss.Style
	Pending     lipgloss.Style
	Failed      lipgloss.Style
	Typing      lipgloss.Style
	InputBox    lipgloss.Style
	HelpBar     lipgloss.Style
	HelpKey     lipgloss.Style
	Banner      lipgloss.Style
	ErrorText   lipgloss.Style
	StepDone    lipgloss.Style
	StepCurrent lipgloss.Style
	StepWaiting lipgloss.Style
	SummaryHead lipgloss.Style
	Verdict     lipgloss.Style
}

// DefaultStyles returns the standard color theme.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1),
		HeaderMeta: lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1),
		UserLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(secondaryColor),
		PartyLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor),
		UserMsg:  lipgloss.NewStyle().Foreground(textColor),
		PartyMsg: lipgloss.NewStyle().Foreground(textColor),
		Pending: lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true),
		Failed: lipgloss.NewStyle().
			Foreground(errorColor),
		Typing: lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true),
		InputBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1),
		HelpBar: lipgloss.NewStyle().
			Foreground(mutedColor),
		HelpKey: lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true),
		Banner: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(warningColor).
			Foreground(warningColor).
			Padding(0, 2),
		ErrorText: lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true),
		StepDone: lipgloss.NewStyle().
			Foreground(secondaryColor),
		StepCurrent: lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true),
		StepWaiting: lipgloss.NewStyle().
			Foreground(mutedColor),
		SummaryHead: lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Underline(true),
		Verdict: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(secondaryColor).
			Padding(0, 2).
			Bold(true),
	}
}

// MonochromeStyles returns a theme safe for terminals without color.
func MonochromeStyles() Styles {
	s := DefaultStyles()
	plain := lipgloss.NewStyle()
	s.Header = plain.Bold(true).Padding(0, 1)
	s.HeaderMeta = plain.Faint(true).Padding(0, 1)
	s.UserLabel = plain.Bold(true)
	s.PartyLabel = plain.Bold(true)
	s.UserMsg = plain
	s.PartyMsg = plain
	s.Pending = plain.Faint(true).Italic(true)
	s.Failed = plain.Bold(true)
	s.Typing = plain.Faint(true).Italic(true)
	s.HelpBar = plain.Faint(true)
	s.HelpKey = plain.Bold(true)
	s.Banner = plain.Border(lipgloss.RoundedBorder()).Padding(0, 2)
	s.ErrorText = plain.Bold(true)
	s.StepDone = plain
	s.StepCurrent = plain.Bold(true)
	s.StepWaiting = plain.Faint(true)
	s.SummaryHead = plain.Bold(true).Underline(true)
	s.Verdict = plain.Border(lipgloss.DoubleBorder()).Padding(0, 2).Bold(true)
	return s
}

// StylesForTheme resolves a theme name from config to a style set.
func StylesForTheme(theme string) Styles {
	if theme == "monochrome" {
		return MonochromeStyles()
	}
	return DefaultStyles()
}
