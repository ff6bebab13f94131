// Package color names the ANSI colors used by the CLI.
package color

import "github.com/charmbracelet/lipgloss"

// New wraps an ANSI code or hex value.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

// Basic ANSI colors, used for states and config value types.
var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")
	Cyan   = New("6")
)

// Bright variants for headers.
var (
	HiBlue   = New("12")
	HiPurple = New("13")
)
