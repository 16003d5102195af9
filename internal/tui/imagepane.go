package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderImage draws an RGBA viewport as terminal half blocks, two
// image rows per text row. Transparent pixels come out as plain
// spaces so the pane background shows through.
func renderImage(img *image.RGBA) string {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}

	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := img.RGBAAt(x, y)
			var bottom color.RGBA
			if y+1 < b.Max.Y {
				bottom = img.RGBAAt(x, y+1)
			}
			sb.WriteString(halfBlockCell(top, bottom))
		}
		if y+2 < b.Max.Y {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func halfBlockCell(top, bottom color.RGBA) string {
	topSet := top.A > 0
	bottomSet := bottom.A > 0
	switch {
	case !topSet && !bottomSet:
		return " "
	case topSet && !bottomSet:
		return lipgloss.NewStyle().Foreground(hexColor(top)).Render("▀")
	case !topSet && bottomSet:
		return lipgloss.NewStyle().Foreground(hexColor(bottom)).Render("▄")
	default:
		return lipgloss.NewStyle().
			Foreground(hexColor(top)).
			Background(hexColor(bottom)).
			Render("▀")
	}
}

func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
