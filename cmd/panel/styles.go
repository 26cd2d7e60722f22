package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/webchatbot/panel/internal/theme"
)

type chatStyles struct {
	title        lipgloss.Style
	user         lipgloss.Style
	bot          lipgloss.Style
	text         lipgloss.Style
	muted        lipgloss.Style
	chip         lipgloss.Style
	chipSelected lipgloss.Style
	err          lipgloss.Style
	// glamour standard style matching the theme background
	markdown string
}

// newChatStyles maps theme variables onto terminal styles.
func newChatStyles(t theme.Theme) chatStyles {
	vars := t.Vars
	accent := termColor(vars[theme.VarAccent])
	accentStrong := termColor(vars[theme.VarAccentStrong])
	primary := termColor(vars[theme.VarTextPrimary])
	secondary := termColor(vars[theme.VarTextSecondary])
	surface := termColor(vars[theme.VarSurfaceBright])

	markdown := "dark"
	if t.Name == theme.NameLight {
		markdown = "light"
	}

	return chatStyles{
		title:        lipgloss.NewStyle().Bold(true).Foreground(accent),
		user:         lipgloss.NewStyle().Bold(true).Foreground(accentStrong),
		bot:          lipgloss.NewStyle().Bold(true).Foreground(accent),
		text:         lipgloss.NewStyle().Foreground(primary),
		muted:        lipgloss.NewStyle().Foreground(secondary),
		chip:         lipgloss.NewStyle().Foreground(primary).Background(surface).Padding(0, 1),
		chipSelected: lipgloss.NewStyle().Bold(true).Foreground(surface).Background(accent).Padding(0, 1),
		err:          lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		markdown:     markdown,
	}
}

// termColor turns a theme color into a terminal color. Alpha suffixes are
// dropped; values that are not hex colors render with the terminal default.
func termColor(v string) lipgloss.TerminalColor {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "#") {
		return lipgloss.NoColor{}
	}
	switch len(v) {
	case 4:
		return lipgloss.Color(theme.NormalizeColor(v))
	case 7:
		return lipgloss.Color(v)
	case 9:
		return lipgloss.Color(v[:7])
	}
	return lipgloss.NoColor{}
}
