package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	CheckOn  rune // [x] style mark
	CheckOff rune
	Cursor   rune // selection marker in lists
	Playing  rune // playback indicator
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			CheckOn:  '■',
			CheckOff: '□',
			Cursor:   '▶',
			Playing:  '●',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // window background
	RoleSurface = 0.15
	RoleMuted   = 0.3 // dim green
	RoleFG      = 0.55
	RoleAccent  = 0.6 // full green
	RoleBright  = 0.72
	RoleWarning = 0.85
	RoleError   = 1.0
)

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Bright() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBright))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Error() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleError))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
