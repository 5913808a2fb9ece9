// Package color derives stable display styling for books on the shelf.
package color

import "fmt"

// Spine is how a book is drawn on the shelf.
type Spine struct {
	Color string `json:"color"` // #RRGGBB
	Width int    `json:"width"` // pixels
}

// Spine width bounds in pixels.
const (
	MinSpineWidth = 24
	MaxSpineWidth = 56
)

// ForBook picks a spine color and width for a book. The same title and page
// count always give the same spine; thicker books get wider spines.
func ForBook(title string, pages int) Spine {
	h := hash(title, pages)

	// Muted, readable colors: fixed saturation and lightness, hue from the hash.
	r, g, b := hslToRGB(float64(h%360), 0.45, 0.42)

	return Spine{
		Color: fmt.Sprintf("#%02X%02X%02X", r, g, b),
		Width: spineWidth(pages, h),
	}
}

func hash(title string, pages int) int {
	h := 0
	for _, c := range title {
		h = 31*h + int(c)
	}
	h = 31*h + pages
	if h < 0 {
		h = -h
	}
	return h
}

// spineWidth grows 4px per 100 pages from the minimum, with up to 3px of
// per-title jitter so equal-length books don't line up exactly.
func spineWidth(pages, h int) int {
	w := MinSpineWidth + max(0, pages)/100*4 + h%4
	return min(MaxSpineWidth, w)
}

// hslToRGB converts h (0-360), s and l (0-1) to 8-bit RGB.
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	h /= 360.0

	var r1, g1, b1 float64
	if s == 0 {
		r1, g1, b1 = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q

		r1 = hueToRGB(p, q, h+1.0/3.0)
		g1 = hueToRGB(p, q, h)
		b1 = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(r1 * 255), uint8(g1 * 255), uint8(b1 * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}
