// Package theme stores named sets of UI color and font variables plus the
// active theme name. The presets default, dark and light are computed and
// never persisted.
package theme

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Variable names, in display order.
const (
	VarAccent        = "--accent"
	VarAccentStrong  = "--accent-strong"
	VarSurface       = "--surface"
	VarSurfaceBright = "--surface-bright"
	VarTextPrimary   = "--text-primary"
	VarTextSecondary = "--text-secondary"
	VarFontFamily    = "--font-family"
	VarFontSize      = "--font-size"
)

// Preset theme names.
const (
	NameDefault = "default"
	NameDark    = "dark"
	NameLight   = "light"
)

// Vars lists every theme variable.
var Vars = []string{
	VarAccent, VarAccentStrong, VarSurface, VarSurfaceBright,
	VarTextPrimary, VarTextSecondary, VarFontFamily, VarFontSize,
}

var (
	ErrNameRequired  = errors.New("theme name is required")
	ErrReservedName  = errors.New("theme name is reserved")
	ErrThemeNotFound = errors.New("theme not found")
)

// Theme is a named set of variable values.
type Theme struct {
	Name string            `toml:"name" json:"name"`
	Vars map[string]string `toml:"vars" json:"vars"`
}

// DefaultVars are the stylesheet values every theme starts from.
func DefaultVars() map[string]string {
	return map[string]string{
		VarAccent:        "#38bdf8",
		VarAccentStrong:  "#6366f1",
		VarSurface:       "#0f172acc",
		VarSurfaceBright: "#1e293b",
		VarTextPrimary:   "#e2e8f0",
		VarTextSecondary: "#94a3b8",
		VarFontFamily:    "Inter, system-ui, sans-serif",
		VarFontSize:      "16px",
	}
}

// Presets returns default, dark and light.
func Presets() []Theme {
	def := DefaultVars()
	light := DefaultVars()
	for k, v := range map[string]string{
		VarSurface:       "#ffffffcc",
		VarSurfaceBright: "#f8fafc",
		VarTextPrimary:   "#0f172a",
		VarTextSecondary: "#334155",
		VarAccent:        "#2563eb",
		VarAccentStrong:  "#7c3aed",
	} {
		light[k] = v
	}
	return []Theme{
		{Name: NameDefault, Vars: def},
		{Name: NameDark, Vars: DefaultVars()},
		{Name: NameLight, Vars: light},
	}
}

// IsReserved reports whether name is one of the presets (case-insensitive).
func IsReserved(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameDefault, NameDark, NameLight:
		return true
	}
	return false
}

func isColorVar(name string) bool {
	return strings.HasPrefix(name, "--accent") || strings.HasPrefix(name, "--surface") || strings.HasPrefix(name, "--text-")
}

var rgbPattern = regexp.MustCompile(`(?i)rgba?\((\d+)\s*,\s*(\d+)\s*,\s*(\d+)`)

// NormalizeColor converts #rgb and rgb()/rgba() values to #rrggbb. Other
// hex forms are kept, anything else becomes #000000.
func NormalizeColor(color string) string {
	c := strings.TrimSpace(color)
	if c == "" {
		return "#000000"
	}
	if strings.HasPrefix(c, "#") {
		if len(c) == 4 {
			return "#" + strings.Repeat(c[1:2], 2) + strings.Repeat(c[2:3], 2) + strings.Repeat(c[3:4], 2)
		}
		return c
	}
	if m := rgbPattern.FindStringSubmatch(c); m != nil {
		out := "#"
		for _, part := range m[1:] {
			n, _ := strconv.Atoi(part)
			if n > 255 {
				n = 255
			}
			out += fmt.Sprintf("%02x", n)
		}
		return out
	}
	return "#000000"
}

// NormalizeFontSize appends px to bare numbers.
func NormalizeFontSize(size string) string {
	s := strings.TrimSpace(size)
	if s != "" && s[len(s)-1] >= '0' && s[len(s)-1] <= '9' {
		return s + "px"
	}
	return s
}

// normalizeVars keeps known variables, normalizes colors and font size and
// fills what is missing from the defaults.
func normalizeVars(in map[string]string) map[string]string {
	out := DefaultVars()
	for _, k := range Vars {
		v, ok := in[k]
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		switch {
		case isColorVar(k):
			out[k] = NormalizeColor(v)
		case k == VarFontSize:
			out[k] = NormalizeFontSize(v)
		default:
			out[k] = strings.TrimSpace(v)
		}
	}
	return out
}
