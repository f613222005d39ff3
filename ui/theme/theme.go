package theme

// Centralized theming and styling initialization for the annotator UI.
// Provides palette constants and InitStyles to activate a base theme and
// configure semantic widget styles.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Palette defines core semantic colors used across widgets in light mode.
const (
	ColorBg        = "#f7f9fb" // app background
	ColorSurface   = "#ffffff" // panels, cards
	ColorBorder    = "#d0d7de"
	ColorPrimary   = "#2563eb" // navigation buttons, accents
	ColorDanger    = "#dc2626" // destructive actions: delete all, mark null
	ColorAccent    = "#10b981" // status line
	ColorText      = "#1e293b"
	ColorTextMuted = "#64748b"
)

// PaletteSnapshot represents resolved colors for the active mode.
type PaletteSnapshot struct {
	AppBg     string
	Surface   string
	Border    string
	Primary   string
	Danger    string
	Accent    string
	Text      string
	TextMuted string
	OnAccent  string
}

var (
	light = PaletteSnapshot{
		AppBg:     ColorBg,
		Surface:   ColorSurface,
		Border:    ColorBorder,
		Primary:   ColorPrimary,
		Danger:    ColorDanger,
		Accent:    ColorAccent,
		Text:      ColorText,
		TextMuted: ColorTextMuted,
		OnAccent:  "white",
	}
	dark = PaletteSnapshot{
		AppBg:     "#0f172a",
		Surface:   "#1e293b",
		Border:    "#334155",
		Primary:   "#3b82f6",
		Danger:    "#ef4444",
		Accent:    "#10b981",
		Text:      "#f1f5f9",
		TextMuted: "#94a3b8",
		OnAccent:  "#f0fdf4",
	}
)

// CurrentPalette returns colors for the current dark/light mode.
func CurrentPalette() PaletteSnapshot {
	if darkMode {
		return dark
	}
	return light
}

// style names used with Style("primary.TButton") etc.
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleAccentLabel   = "accent.TLabel"
	StyleStateLabel    = "state.TLabel"
)

// internal flag for current mode
var darkMode bool

// InitStyles (re)applies styles for the current darkMode value.
func InitStyles() { applyStyles(CurrentPalette()) }

// SetDark toggles dark mode and reapplies styles. Returns new mode value.
func SetDark(d bool) bool {
	darkMode = d
	applyStyles(CurrentPalette())
	return darkMode
}

// ToggleDark flips dark mode and reapplies styles. Returns new mode value.
func ToggleDark() bool { return SetDark(!darkMode) }

// IsDark reports current mode.
func IsDark() bool { return darkMode }

func applyStyles(p PaletteSnapshot) {
	_ = ActivateTheme("azure light") // baseline metrics
	App.Configure(Background(p.AppBg))

	for style, bg := range map[string]string{
		StylePrimaryButton: p.Primary,
		StyleDangerButton:  p.Danger,
	} {
		StyleConfigure(style,
			Background(bg),
			Foreground("white"),
			Padding("4p 3p"),
			Borderwidth(1),
			Relief("ridge"),
		)
	}
	StyleConfigure(StyleAccentLabel,
		Foreground(p.Primary),
		Background(p.Surface),
		Padding("2p 1p"),
	)
	// Status line; also flags locked images, so it stays high-contrast in both modes.
	StyleConfigure(StyleStateLabel,
		Foreground(p.OnAccent),
		Background(p.Accent),
		Padding("4p 2p"),
		Borderwidth(1),
		Relief("groove"),
	)
}
