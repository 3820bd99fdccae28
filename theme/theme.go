package theme

import (
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

type Theme struct {
	Palette  *Palette // UI gradient
	Channels *Palette // one color per channel group
}

func New(palette, channels *Palette) *Theme {
	return &Theme{Palette: palette, Channels: channels}
}

// Default is plasma chrome with category10 channels
func Default() *Theme {
	return New(MustBuiltin("plasma"), MustBuiltin("category10"))
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // deep purple
	RoleMuted   = 0.2 // purple-magenta
	RoleFG      = 0.9 // pale yellow (readable)
	RoleAccent  = 0.5 // vivid magenta
	RoleWarning = 0.75
)

// Style helpers

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

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

// Channel returns the color of channel group i
func (t *Theme) Channel(i int) lipgloss.Color {
	return rgbToLipgloss(t.Channels.Cycle(i))
}

// ChannelRGB returns the raw color of channel group i
func (t *Theme) ChannelRGB(i int) RGB {
	return t.Channels.Cycle(i)
}

// Shade fades channel group i toward the background; level 1 is the full color
func (t *Theme) Shade(i int, level float64) lipgloss.Color {
	return rgbToLipgloss(t.ShadeRGB(i, level))
}

func (t *Theme) ShadeRGB(i int, level float64) RGB {
	if level >= 1 {
		return t.Channels.Cycle(i)
	}
	if level <= 0 {
		return t.Palette.Lookup(RoleBG)
	}
	bg := toColorful(t.Palette.Lookup(RoleBG))
	fg := toColorful(t.Channels.Cycle(i))
	r, g, b := bg.BlendLab(fg, level).Clamped().RGB255()
	return RGB{r, g, b}
}

func toColorful(c RGB) colorful.Color {
	return colorful.Color{R: float64(c[0]) / 255, G: float64(c[1]) / 255, B: float64(c[2]) / 255}
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}
