// Package ui provides shared styles and key bindings for the terminal interface.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme colors (Catppuccin Mocha inspired).
var (
	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#1e66f5", Dark: "#89b4fa"} // Blue
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#7c3aed", Dark: "#cba6f7"} // Mauve
	ColorSuccess   = lipgloss.AdaptiveColor{Light: "#40a02b", Dark: "#a6e3a1"} // Green
	ColorWarning   = lipgloss.AdaptiveColor{Light: "#df8e1d", Dark: "#f9e2af"} // Yellow
	ColorError     = lipgloss.AdaptiveColor{Light: "#d20f39", Dark: "#f38ba8"} // Red
	ColorMuted     = lipgloss.AdaptiveColor{Light: "#6c6f85", Dark: "#6c7086"} // Overlay0
	ColorText      = lipgloss.AdaptiveColor{Light: "#4c4f69", Dark: "#cdd6f4"} // Text
)

// Styles contains the lipgloss styles for the menu and the reporter.
type Styles struct {
	App      lipgloss.Style
	Title    lipgloss.Style
	Subtitle lipgloss.Style

	// Report levels
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	// Menu entries
	MenuKey        lipgloss.Style
	MenuItem       lipgloss.Style
	MenuItemActive lipgloss.Style
	MenuDetail     lipgloss.Style

	Help    lipgloss.Style
	HelpKey lipgloss.Style

	DiffAdd    lipgloss.Style
	DiffRemove lipgloss.Style
	DiffModify lipgloss.Style
}

// DefaultStyles returns the default styles.
func DefaultStyles() Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(ColorSecondary),

		Success: lipgloss.NewStyle().
			Foreground(ColorSuccess),

		Warning: lipgloss.NewStyle().
			Foreground(ColorWarning),

		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(ColorPrimary),

		MenuKey: lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true),

		MenuItem: lipgloss.NewStyle().
			PaddingLeft(2).
			Foreground(ColorText),

		MenuItemActive: lipgloss.NewStyle().
			PaddingLeft(2).
			Foreground(ColorPrimary).
			Bold(true),

		MenuDetail: lipgloss.NewStyle().
			PaddingLeft(6).
			Foreground(ColorMuted),

		Help: lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginTop(1),

		HelpKey: lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true),

		DiffAdd: lipgloss.NewStyle().
			Foreground(ColorSuccess),

		DiffRemove: lipgloss.NewStyle().
			Foreground(ColorError),

		DiffModify: lipgloss.NewStyle().
			Foreground(ColorWarning),
	}
}

// Plain returns styles that render text unchanged, for logs and pipes.
func Plain() Styles {
	p := lipgloss.NewStyle()
	return Styles{
		App: p, Title: p, Subtitle: p,
		Success: p, Warning: p, Error: p, Info: p,
		MenuKey: p, MenuItem: p, MenuItemActive: p, MenuDetail: p,
		Help: p, HelpKey: p,
		DiffAdd: p, DiffRemove: p, DiffModify: p,
	}
}
