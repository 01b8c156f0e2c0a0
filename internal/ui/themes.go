package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme represents a color theme for the TUI
type Theme struct {
	Name string

	Primary lipgloss.AdaptiveColor
	Muted   lipgloss.AdaptiveColor
	Border  lipgloss.AdaptiveColor

	// Semantic colors
	Success lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor
	Loading lipgloss.AdaptiveColor

	// Activity badges
	BadgeText       lipgloss.AdaptiveColor
	BadgeBackground lipgloss.AdaptiveColor
}

func buildTheme(name string, primary, muted, border, success, errorColor, loading, badgeText, badgeBackground [2]string) Theme {
	adaptive := func(c [2]string) lipgloss.AdaptiveColor {
		return lipgloss.AdaptiveColor{Light: c[0], Dark: c[1]}
	}
	return Theme{
		Name:            name,
		Primary:         adaptive(primary),
		Muted:           adaptive(muted),
		Border:          adaptive(border),
		Success:         adaptive(success),
		Error:           adaptive(errorColor),
		Loading:         adaptive(loading),
		BadgeText:       adaptive(badgeText),
		BadgeBackground: adaptive(badgeBackground),
	}
}

// Available themes
var (
	DefaultTheme = buildTheme("default",
		[2]string{"#1E40AF", "#3B82F6"}, [2]string{"#6B7280", "#9CA3AF"}, [2]string{"#D1D5DB", "#374151"},
		[2]string{"#059669", "#10B981"}, [2]string{"#DC2626", "#EF4444"}, [2]string{"#D97706", "#F59E0B"},
		[2]string{"#111827", "#F9FAFB"}, [2]string{"#E5E7EB", "#374151"})

	HighContrastTheme = buildTheme("high-contrast",
		[2]string{"#000000", "#FFFFFF"}, [2]string{"#444444", "#BBBBBB"}, [2]string{"#000000", "#FFFFFF"},
		[2]string{"#006600", "#00FF00"}, [2]string{"#CC0000", "#FF4444"}, [2]string{"#CC6600", "#FFAA00"},
		[2]string{"#FFFFFF", "#000000"}, [2]string{"#000000", "#FFFFFF"})

	MinimalTheme = buildTheme("minimal",
		[2]string{"#2D3748", "#E2E8F0"}, [2]string{"#A0AEC0", "#718096"}, [2]string{"#E2E8F0", "#2D3748"},
		[2]string{"#2F855A", "#68D391"}, [2]string{"#C53030", "#FC8181"}, [2]string{"#C05621", "#F6AD55"},
		[2]string{"#2D3748", "#F7FAFC"}, [2]string{"#EDF2F7", "#2D3748"})
)

var (
	themeMu      sync.RWMutex
	currentTheme = DefaultTheme
)

// GetTheme returns the current active theme
func GetTheme() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

// SetThemeByName sets the theme by name
func SetThemeByName(name string) bool {
	var theme Theme
	switch name {
	case "default":
		theme = DefaultTheme
	case "high-contrast":
		theme = HighContrastTheme
	case "minimal":
		theme = MinimalTheme
	default:
		return false
	}
	themeMu.Lock()
	currentTheme = theme
	themeMu.Unlock()
	return true
}

// GetAvailableThemes returns list of available theme names
func GetAvailableThemes() []string {
	return []string{"default", "high-contrast", "minimal"}
}

// IsColorDisabled checks if colors should be disabled
func IsColorDisabled() bool {
	return os.Getenv("NO_COLOR") != ""
}

// Styles contains the styled regions of the detection screen
type Styles struct {
	Theme Theme

	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Summary lipgloss.Style
	Spinner lipgloss.Style
	Alert   lipgloss.Style
	Badge   lipgloss.Style
	Results lipgloss.Style
}

// NewStyles builds styles from theme. With color off every style is plain
// so the output stays readable on dumb terminals.
func NewStyles(theme Theme, color bool) *Styles {
	if !color {
		plain := lipgloss.NewStyle()
		return &Styles{
			Theme:   theme,
			Title:   plain.Bold(true),
			Label:   plain,
			Muted:   plain,
			Summary: plain,
			Spinner: plain,
			Alert:   plain.Border(lipgloss.NormalBorder()).Padding(0, 1),
			Badge:   plain.MarginRight(1),
			Results: plain,
		}
	}

	return &Styles{
		Theme: theme,

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),

		Label: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Summary: lipgloss.NewStyle().
			Foreground(theme.Success),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Loading).
			Bold(true),

		Alert: lipgloss.NewStyle().
			Foreground(theme.Error).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Error).
			Bold(true).
			Padding(0, 1),

		Badge: lipgloss.NewStyle().
			Foreground(theme.BadgeText).
			Background(theme.BadgeBackground).
			Padding(0, 1).
			MarginRight(1),

		Results: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
	}
}

// GetStyles returns styles for the current theme honoring NO_COLOR
func GetStyles() *Styles {
	return NewStyles(GetTheme(), !IsColorDisabled())
}
