package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/forumsearch/internal/config"
	"github.com/pders01/forumsearch/internal/search"
)

const AppName = "forumsearch"

// LogoLines is the canonical ASCII logo.
var LogoLines = []string{
	"█▀▀ █▀█ █▀█ █ █ █▀▄▀█   █▀ █▀▀ ▄▀█ █▀█ █▀▀ █ █",
	"█▀  █▄█ █▀▄ █▄█ █ ▀ █   ▄█ ██▄ █▀█ █▀▄ █▄▄ █▀█",
}

const CompactLogo = `forumsearch ›`

var (
	PrimaryColor   = lipgloss.Color("#FF6B6B")
	SecondaryColor = lipgloss.Color("#4ECDC4")
	AccentColor    = lipgloss.Color("#95E1D3")
	TextColor      = lipgloss.Color("#EAEAEA")
	MutedColor     = lipgloss.Color("#94A3B8")
	ErrorColor     = lipgloss.Color("#F87171")
	SuccessColor   = lipgloss.Color("#4ADE80")
	WarnColor      = lipgloss.Color("#FFE66D")
)

var (
	LogoStyle          lipgloss.Style
	HeaderStyle        lipgloss.Style
	HitTitleStyle      lipgloss.Style
	TimeStyle          lipgloss.Style
	IDStyle            lipgloss.Style
	HelpStyle          lipgloss.Style
	SeparatorStyle     lipgloss.Style
	StatusInfoStyle    lipgloss.Style
	StatusSuccessStyle lipgloss.Style
	StatusWarnStyle    lipgloss.Style
	StatusErrorStyle   lipgloss.Style
)

func init() {
	buildStyles()
}

func buildStyles() {
	LogoStyle = lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)
	HeaderStyle = lipgloss.NewStyle().Foreground(SecondaryColor).Bold(true)
	HitTitleStyle = lipgloss.NewStyle().Foreground(TextColor).Bold(true)
	TimeStyle = lipgloss.NewStyle().Foreground(MutedColor).Faint(true)
	IDStyle = lipgloss.NewStyle().Foreground(MutedColor)
	HelpStyle = lipgloss.NewStyle().Foreground(MutedColor).Italic(true)
	SeparatorStyle = lipgloss.NewStyle().Foreground(MutedColor)
	StatusInfoStyle = lipgloss.NewStyle().Foreground(MutedColor)
	StatusSuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	StatusWarnStyle = lipgloss.NewStyle().Foreground(WarnColor)
	StatusErrorStyle = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)
}

// ApplyTheme replaces the palette with configured colors. Empty entries keep
// the built-in color.
func ApplyTheme(c config.UIColors) {
	set := func(dst *lipgloss.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&PrimaryColor, c.Primary)
	set(&SecondaryColor, c.Secondary)
	set(&AccentColor, c.Accent)
	set(&TextColor, c.Text)
	set(&MutedColor, c.Muted)
	set(&ErrorColor, c.Error)
	set(&SuccessColor, c.Success)
	buildStyles()
}

func statusStyle(kind StatusKind) lipgloss.Style {
	switch kind {
	case StatusSuccess:
		return StatusSuccessStyle
	case StatusWarn:
		return StatusWarnStyle
	case StatusError:
		return StatusErrorStyle
	default:
		return StatusInfoStyle
	}
}

// GetCompactBanner renders the logo above a muted message.
func GetCompactBanner(message string) string {
	var coloredLines []string
	for _, line := range LogoLines {
		coloredLines = append(coloredLines, LogoStyle.Render(line))
	}

	return lipgloss.JoinVertical(
		lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, coloredLines...),
		"",
		HelpStyle.Render(message),
	)
}

// ShowBanner writes the startup banner, followed by one muted line per
// detail, to w.
func ShowBanner(w io.Writer, version string, details ...string) {
	tagline := "full-text forum search"
	if version != "" && version != "dev" {
		if version[0] != 'v' && version[0] != 'V' {
			version = "v" + version
		}
		tagline += " " + version
	}

	rows := make([]string, 0, len(LogoLines)+2+len(details))
	for _, line := range LogoLines {
		rows = append(rows, LogoStyle.Render(line))
	}
	rows = append(rows, "", HeaderStyle.Render(tagline))
	for _, d := range details {
		rows = append(rows, StatusInfoStyle.Render(d))
	}

	banner := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(SecondaryColor).
		Padding(1, 3).
		Render(lipgloss.JoinVertical(lipgloss.Center, rows...))

	fmt.Fprintln(w, banner)
}

// FormatHits renders hits as a numbered list for terminal output.
func FormatHits(query string, hits []search.Hit) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("› %s", query)))
	b.WriteString("  ")
	b.WriteString(StatusInfoStyle.Render(MsgResultsCapped(len(hits), search.MaxResults)))
	b.WriteString("\n")

	if len(hits) == 0 {
		b.WriteString(HelpStyle.Render(MsgNoResults))
		b.WriteString("\n")
		return b.String()
	}

	width := len(fmt.Sprint(len(hits)))
	for i, h := range hits {
		fmt.Fprintf(&b, "%*d. %s\n", width, i+1, HitTitleStyle.Render(h.Title))
		fmt.Fprintf(&b, "%*s  %s  %s\n", width, "",
			TimeStyle.Render(h.CreatedTime.Local().Format("Jan 2, 2006 15:04")),
			IDStyle.Render(h.ID.String()))
	}
	return b.String()
}
