// Package style holds the lipgloss styles of assetpipe's terminal output.
package style

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(HeadingColor).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	PathStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Italic(true)

	HashStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	ChunkStyle = lipgloss.NewStyle().
			Foreground(ChunkColor).
			Bold(true)

	AssetStyle = lipgloss.NewStyle().
			Foreground(AssetColor)
)

// KindStyle returns the style of an artifact kind
func KindStyle(kind string) lipgloss.Style {
	if kind == "chunk" {
		return ChunkStyle
	}
	return AssetStyle
}
