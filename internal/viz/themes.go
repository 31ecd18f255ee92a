package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI
type Theme struct {
	Name     string
	Primary  lipgloss.Color
	Accent   lipgloss.Color
	Text     lipgloss.Color
	Muted    lipgloss.Color
	Body     lipgloss.Color
	Trail    lipgloss.Color
	Positive lipgloss.Color
	Negative lipgloss.Color
	Warning  lipgloss.Color
}

// Available themes
var (
	ThemeCyberpunk = Theme{
		Name:     "cyberpunk",
		Primary:  lipgloss.Color("#ff00ff"), // Magenta
		Accent:   lipgloss.Color("#ffff00"),
		Text:     lipgloss.Color("#ffffff"),
		Muted:    lipgloss.Color("#666666"),
		Body:     lipgloss.Color("#ffffff"),
		Trail:    lipgloss.Color("#00ffff"),
		Positive: lipgloss.Color("#ff3366"),
		Negative: lipgloss.Color("#33aaff"),
		Warning:  lipgloss.Color("#ff8800"),
	}

	ThemeRetroGreen = Theme{
		Name:     "retro",
		Primary:  lipgloss.Color("#00ff00"), // Green phosphor
		Accent:   lipgloss.Color("#88ff88"),
		Text:     lipgloss.Color("#00ff00"),
		Muted:    lipgloss.Color("#005500"),
		Body:     lipgloss.Color("#ccffcc"),
		Trail:    lipgloss.Color("#00cc00"),
		Positive: lipgloss.Color("#ffff00"),
		Negative: lipgloss.Color("#00aa88"),
		Warning:  lipgloss.Color("#ffff00"),
	}

	ThemeMinimal = Theme{
		Name:     "minimal",
		Primary:  lipgloss.Color("#ffffff"),
		Accent:   lipgloss.Color("#0088ff"),
		Text:     lipgloss.Color("#ffffff"),
		Muted:    lipgloss.Color("#888888"),
		Body:     lipgloss.Color("#ffffff"),
		Trail:    lipgloss.Color("#cccccc"),
		Positive: lipgloss.Color("#ff5555"),
		Negative: lipgloss.Color("#5599ff"),
		Warning:  lipgloss.Color("#ffaa00"),
	}

	ThemeOcean = Theme{
		Name:     "ocean",
		Primary:  lipgloss.Color("#0077be"), // Ocean blue
		Accent:   lipgloss.Color("#ffd700"),
		Text:     lipgloss.Color("#e0f0ff"),
		Muted:    lipgloss.Color("#4488aa"),
		Body:     lipgloss.Color("#ffd700"),
		Trail:    lipgloss.Color("#00a8cc"),
		Positive: lipgloss.Color("#ff7f50"),
		Negative: lipgloss.Color("#00ff88"),
		Warning:  lipgloss.Color("#ffcc00"),
	}

	ThemeSunset = Theme{
		Name:     "sunset",
		Primary:  lipgloss.Color("#ff6b6b"), // Coral
		Accent:   lipgloss.Color("#ff9ff3"),
		Text:     lipgloss.Color("#fff5f5"),
		Muted:    lipgloss.Color("#8b6b8c"),
		Body:     lipgloss.Color("#fff5f5"),
		Trail:    lipgloss.Color("#feca57"),
		Positive: lipgloss.Color("#ff4757"),
		Negative: lipgloss.Color("#70a1ff"),
		Warning:  lipgloss.Color("#ffc048"),
	}

	// Default theme
	CurrentTheme = ThemeCyberpunk

	// All available themes
	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeOcean,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCyberpunk
}

// SetTheme changes the current theme
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = Themes[0]
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
