// internal/imaging/resize.go
package imaging

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Interpolation selects the resampling kernel used when a frame must be resized.
type Interpolation string

const (
	InterpBilinear       Interpolation = "bilinear"
	InterpNearest        Interpolation = "nearest"
	InterpApproxBilinear Interpolation = "approx_bilinear"
	InterpCatmullRom     Interpolation = "catmull_rom"
)

// ParseInterpolation validates an interpolation name; empty means bilinear.
func ParseInterpolation(s string) (Interpolation, error) {
	switch i := Interpolation(s); i {
	case "":
		return InterpBilinear, nil
	case InterpBilinear, InterpNearest, InterpApproxBilinear, InterpCatmullRom:
		return i, nil
	default:
		return "", fmt.Errorf("unknown interpolation %q", s)
	}
}

func (i Interpolation) scaler() draw.Scaler {
	switch i {
	case InterpNearest:
		return draw.NearestNeighbor
	case InterpApproxBilinear:
		return draw.ApproxBiLinear
	case InterpCatmullRom:
		return draw.CatmullRom
	default:
		return draw.BiLinear
	}
}

// Resize resamples an RGB frame straight to size x size. Non-square sources
// are stretched, not cropped.
func Resize(raw *RawImage, size int, interp Interpolation) *RawImage {
	src := rgbToRGBA(raw.Pix, raw.Height, raw.Width)
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	interp.scaler().Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return &RawImage{Height: size, Width: size, Order: RGB, Pix: rgbaToRGB(dst)}
}
