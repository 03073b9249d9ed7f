package encoder

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Fit returns the size of a w×h image proportionally shrunk to fit inside the
// canvas. Images already inside the canvas keep their size.
func Fit(w, h int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	if w <= CanvasWidth && h <= CanvasHeight {
		return w, h
	}
	// Compare w/h against the canvas ratio with integers to pick the
	// limiting side.
	if w*CanvasHeight >= h*CanvasWidth {
		return CanvasWidth, clamp(roundDiv(h*CanvasWidth, w), CanvasHeight)
	}
	return clamp(roundDiv(w*CanvasHeight, h), CanvasWidth), CanvasHeight
}

func roundDiv(a, b int) int {
	return (2*a + b) / (2 * b)
}

func clamp(v, max int) int {
	if v < 1 {
		return 1
	}
	if v > max {
		return max
	}
	return v
}

// Compose returns a black canvas with img scaled by Fit and pasted at the
// top-left corner.
func Compose(img image.Image) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	b := img.Bounds()
	w, h := Fit(b.Dx(), b.Dy())
	if w == 0 || h == 0 {
		return canvas
	}
	dst := image.Rect(0, 0, w, h)
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(canvas, dst, img, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(canvas, dst, img, b, draw.Src, nil)
	}
	return canvas
}
