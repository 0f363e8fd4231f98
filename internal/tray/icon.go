package tray

import (
	"bytes"
	"image"
	"image/color"

	ico "github.com/sergeymakinen/go-ico"
)

// IconSize is the edge length of the generated tray icon.
const IconSize = 64

var (
	blurple = color.RGBA{R: 88, G: 101, B: 242, A: 255}
	white   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// IconImage draws a blurple rounded square with a white "D".
func IconImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, IconSize, IconSize))

	const margin, radius = 8, 12
	fillRoundedRect(img, image.Rect(margin, margin, IconSize-margin, IconSize-margin), radius, blurple)

	// Letter D
	fillRect(img, image.Rect(20, 20, 26, 45), white) // stem
	fillRect(img, image.Rect(20, 20, 36, 26), white) // top
	fillRect(img, image.Rect(20, 39, 36, 45), white) // bottom
	fillRect(img, image.Rect(35, 25, 41, 40), white) // bowl
	return img
}

// Icon returns the tray icon encoded as ICO.
func Icon() ([]byte, error) {
	var buf bytes.Buffer
	if err := ico.Encode(&buf, IconImage()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func fillRoundedRect(img *image.RGBA, r image.Rectangle, radius int, c color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if insideRounded(x, y, r, radius) {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

// insideRounded reports whether pixel (x, y) lies inside r with corners of the given radius.
func insideRounded(x, y int, r image.Rectangle, radius int) bool {
	cx, cy := x, y
	switch {
	case x < r.Min.X+radius:
		cx = r.Min.X + radius
	case x >= r.Max.X-radius:
		cx = r.Max.X - radius - 1
	}
	switch {
	case y < r.Min.Y+radius:
		cy = r.Min.Y + radius
	case y >= r.Max.Y-radius:
		cy = r.Max.Y - radius - 1
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= radius*radius
}
