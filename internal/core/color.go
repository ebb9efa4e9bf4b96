package core

import "image/color"

// Color represents a foreground color for a screen cell.
// Uses ANSI 256-color codes for terminal compatibility.
type Color uint8

// Palette colors available to the render target.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
	ColorBlack

	colorCount
)

// paletteRGB holds the approximate RGB value of each palette entry,
// used to map arbitrary colors onto the terminal palette.
var paletteRGB = [colorCount]color.RGBA{
	ColorDefault:       {0xc0, 0xc0, 0xc0, 0xff},
	ColorRed:           {0x80, 0x00, 0x00, 0xff},
	ColorGreen:         {0x00, 0x80, 0x00, 0xff},
	ColorYellow:        {0x80, 0x80, 0x00, 0xff},
	ColorBlue:          {0x00, 0x00, 0x80, 0xff},
	ColorMagenta:       {0x80, 0x00, 0x80, 0xff},
	ColorCyan:          {0x00, 0x80, 0x80, 0xff},
	ColorWhite:         {0xc0, 0xc0, 0xc0, 0xff},
	ColorBrightRed:     {0xff, 0x00, 0x00, 0xff},
	ColorBrightGreen:   {0x00, 0xff, 0x00, 0xff},
	ColorBrightYellow:  {0xff, 0xff, 0x00, 0xff},
	ColorBrightBlue:    {0x00, 0x00, 0xff, 0xff},
	ColorBrightMagenta: {0xff, 0x00, 0xff, 0xff},
	ColorBrightCyan:    {0x00, 0xff, 0xff, 0xff},
	ColorBrightWhite:   {0xff, 0xff, 0xff, 0xff},
	ColorOrange:        {0xff, 0x87, 0x00, 0xff},
	ColorGray:          {0x8a, 0x8a, 0x8a, 0xff},
	ColorBlack:         {0x00, 0x00, 0x00, 0xff},
}

// NearestColor maps an arbitrary color onto the closest palette entry.
// ColorDefault is never returned since it has no fixed RGB value.
func NearestColor(c color.Color) Color {
	r, g, b, _ := c.RGBA()
	best := ColorWhite
	bestDist := uint32(1<<32 - 1)
	for i := ColorRed; i < colorCount; i++ {
		p := paletteRGB[i]
		dr := sqDiff(r>>8, uint32(p.R))
		dg := sqDiff(g>>8, uint32(p.G))
		db := sqDiff(b>>8, uint32(p.B))
		if d := dr + dg + db; d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// ARGB converts a packed 0xAARRGGBB value, the form scripts use, into a palette color.
func ARGB(v uint32) Color {
	return NearestColor(color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	})
}

func sqDiff(a, b uint32) uint32 {
	if a > b {
		return (a - b) * (a - b)
	}
	return (b - a) * (b - a)
}
