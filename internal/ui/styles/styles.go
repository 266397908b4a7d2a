// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#CCCCCC"} // Descriptions, primary text
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#BBBBBB"} // Change ids, authors
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"} // Timestamps, hints, help text

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Revision markers
	HighlightColor   = lipgloss.AdaptiveColor{Light: "#5A3EC8", Dark: "#7D56F4"} // Selected revision
	WorkingCopyColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"} // @ marker
	ImmutableColor   = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#BBBBBB"} // ◆ marker

	// Diff colors
	DiffAddedColor   = lipgloss.AdaptiveColor{Light: "#22863A", Dark: "#50FA7B"}
	DiffRemovedColor = lipgloss.AdaptiveColor{Light: "#B31D28", Dark: "#FF5555"}

	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}
)

var (
	SelectedRevisionStyle lipgloss.Style
	WorkingCopyStyle      lipgloss.Style
	ImmutableStyle        lipgloss.Style
	ChangeIDStyle         lipgloss.Style
	DescriptionStyle      lipgloss.Style
	EmptyDescriptionStyle lipgloss.Style
	TimestampStyle        lipgloss.Style
	BookmarkStyle         lipgloss.Style
	DiffAddedStyle        lipgloss.Style
	DiffRemovedStyle      lipgloss.Style
	DiffContextStyle      lipgloss.Style
	DiffHeaderStyle       lipgloss.Style
	StatusBarStyle        lipgloss.Style
	StatusBarKeyStyle     lipgloss.Style
	ErrorStyle            lipgloss.Style
	HelpStyle             lipgloss.Style
	RevsetPromptStyle     lipgloss.Style
)

func init() {
	rebuildStyles()
}

func rebuildStyles() {
	SelectedRevisionStyle = lipgloss.NewStyle().Bold(true).Foreground(HighlightColor)
	WorkingCopyStyle = lipgloss.NewStyle().Bold(true).Foreground(WorkingCopyColor)
	ImmutableStyle = lipgloss.NewStyle().Foreground(ImmutableColor)
	ChangeIDStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor)
	DescriptionStyle = lipgloss.NewStyle().Foreground(TextPrimaryColor)
	EmptyDescriptionStyle = lipgloss.NewStyle().Italic(true).Foreground(TextMutedColor)
	TimestampStyle = lipgloss.NewStyle().Foreground(TextMutedColor)
	BookmarkStyle = lipgloss.NewStyle().Foreground(StatusSuccessColor)
	DiffAddedStyle = lipgloss.NewStyle().Foreground(DiffAddedColor)
	DiffRemovedStyle = lipgloss.NewStyle().Foreground(DiffRemovedColor)
	DiffContextStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor)
	DiffHeaderStyle = lipgloss.NewStyle().Foreground(TextMutedColor)
	StatusBarStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor)
	StatusBarKeyStyle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)
	ErrorStyle = lipgloss.NewStyle().Foreground(StatusErrorColor)
	HelpStyle = lipgloss.NewStyle().Foreground(TextMutedColor)
	RevsetPromptStyle = lipgloss.NewStyle().Bold(true).Foreground(HighlightColor)
}

// ThemeConfig mirrors config.ThemeConfig to avoid circular imports.
type ThemeConfig struct {
	Highlight   string
	Subtle      string
	Error       string
	Success     string
	WorkingCopy string
	Immutable   string
}

// ApplyTheme overrides the default colors with configured ones and
// rebuilds the style objects. Empty fields keep the defaults.
func ApplyTheme(cfg ThemeConfig) {
	makeColor := func(hex string) lipgloss.AdaptiveColor {
		return lipgloss.AdaptiveColor{Light: hex, Dark: hex}
	}

	if cfg.Highlight != "" {
		HighlightColor = makeColor(cfg.Highlight)
	}
	if cfg.Subtle != "" {
		TextMutedColor = makeColor(cfg.Subtle)
		TextSecondaryColor = makeColor(cfg.Subtle)
	}
	if cfg.Error != "" {
		StatusErrorColor = makeColor(cfg.Error)
		DiffRemovedColor = makeColor(cfg.Error)
	}
	if cfg.Success != "" {
		StatusSuccessColor = makeColor(cfg.Success)
		DiffAddedColor = makeColor(cfg.Success)
	}
	if cfg.WorkingCopy != "" {
		WorkingCopyColor = makeColor(cfg.WorkingCopy)
	}
	if cfg.Immutable != "" {
		ImmutableColor = makeColor(cfg.Immutable)
	}

	rebuildStyles()
}
