package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// PhaseTheme provides the dark slate look of the application.
type PhaseTheme struct{}

var _ fyne.Theme = (*PhaseTheme)(nil)

func (t *PhaseTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return color.NRGBA{R: 0x2C, G: 0x3E, B: 0x50, A: 0xFF} // Dark slate
	case theme.ColorNameButton, theme.ColorNameInputBackground:
		return color.NRGBA{R: 0x34, G: 0x49, B: 0x5E, A: 0xFF} // Lighter slate
	case theme.ColorNamePrimary:
		return color.NRGBA{R: 0x34, G: 0x98, B: 0xDB, A: 0xFF} // Accent blue
	case theme.ColorNameForeground:
		return color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	default:
		return theme.DefaultTheme().Color(name, theme.VariantDark)
	}
}

func (t *PhaseTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *PhaseTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *PhaseTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameInputRadius:
		return 5
	default:
		return theme.DefaultTheme().Size(name)
	}
}
