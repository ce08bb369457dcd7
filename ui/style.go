package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/zeebo/xxh3"
)

// Shared styles for tables, the TUI and command output.
var (
	TitleStyle   = lipgloss.NewStyle().Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	MutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // Gray
	SpinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

// Colorize applies the given 0xRRGGBB color to the text using lipgloss.
func Colorize(text string, color int) string {
	// Convert the color int to a hex string
	hexColor := fmt.Sprintf("#%06x", color&0xffffff)

	// Create a lipgloss style with the foreground color
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor))

	// Render the text with the style
	return style.Render(text)
}

// SectionColor returns a stable 0xRRGGBB color for a section or category
// name. Names hash to a hue; saturation and lightness are fixed so every
// color stays readable on dark and light terminals.
func SectionColor(name string) int {
	if name == "" {
		return 0x808080 // Neutral gray for records without a section
	}
	hue := float64(xxh3.HashString(name) % 360)
	// Fixed saturation and lightness, clamped to the sRGB gamut
	r, g, b := colorful.Hsl(hue, 0.55, 0.6).Clamped().RGB255()
	return int(r)<<16 | int(g)<<8 | int(b)
}
