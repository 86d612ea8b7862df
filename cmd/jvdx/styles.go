// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Report colors adapt to light and dark terminals. NO_COLOR and non-TTY
// output are handled by lipgloss.
var (
	colorAccent  = lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#A78BFA"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#9CA3AF"}
	colorOK      = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}
	colorFail    = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	colorWarn    = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	colorPath    = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	colorDetails = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
)

var (
	// TitleStyle renders banners such as "Building cjs".
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	// SubtitleStyle renders labels and secondary text.
	SubtitleStyle = lipgloss.NewStyle().Foreground(colorDim)
	SuccessStyle  = lipgloss.NewStyle().Foreground(colorOK)
	ErrorStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorFail)
	WarningStyle  = lipgloss.NewStyle().Foreground(colorWarn)
	// CmdStyle renders file paths, formats and command names.
	CmdStyle = lipgloss.NewStyle().Foreground(colorPath)
	// VerboseStyle renders compressed sizes and debug details.
	VerboseStyle = lipgloss.NewStyle().Foreground(colorDetails)
	// HeadingStyle underlines summary headings like "Bundle(s)".
	HeadingStyle = lipgloss.NewStyle().Underline(true)
	ElapsedStyle = lipgloss.NewStyle().Bold(true)
)
