package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
)

// thumbnail renders img as text, two pixel rows per line using the upper
// half block with foreground and background colours.
func thumbnail(img image.Image, width int) string {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || width <= 0 {
		return ""
	}

	height := b.Dy() * width / b.Dx()
	// two pixel rows per line
	height = max(height/2*2, 2)
	small := imaging.Resize(img, width, height, imaging.Box)

	var sb strings.Builder
	for y := 0; y < height; y += 2 {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < width; x++ {
			style := lipgloss.NewStyle().
				Foreground(hex(small.At(x, y))).
				Background(hex(small.At(x, y+1)))
			sb.WriteString(style.Render("▀"))
		}
	}
	return sb.String()
}

func hex(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
