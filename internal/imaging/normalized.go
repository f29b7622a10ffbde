// internal/imaging/normalized.go
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// NormalizedImage is a Size x Size x 3 RGB frame, HWC interleaved.
// Values are only produced fully formed; there is no partially normalized state.
type NormalizedImage struct {
	Size int
	Pix  []uint8
}

// NewNormalized validates pix against size and wraps it without copying.
func NewNormalized(size int, pix []uint8) (*NormalizedImage, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid normalized size: %d", size)
	}
	if expected := size * size * 3; len(pix) != expected {
		return nil, fmt.Errorf("normalized image has wrong data length: got %d, expected %d", len(pix), expected)
	}
	return &NormalizedImage{Size: size, Pix: pix}, nil
}

// Shape returns (height, width, channels).
func (n *NormalizedImage) Shape() [3]int {
	return [3]int{n.Size, n.Size, 3}
}

// At returns the RGB samples at row y, column x.
func (n *NormalizedImage) At(y, x int) (r, g, b uint8) {
	i := (y*n.Size + x) * 3
	return n.Pix[i], n.Pix[i+1], n.Pix[i+2]
}

// CHW returns the pixels as planar float32 scaled to [0,1], the layout ONNX
// vision models take.
func (n *NormalizedImage) CHW() []float32 {
	plane := n.Size * n.Size
	out := make([]float32, 3*plane)
	for i := 0; i < plane; i++ {
		out[i] = float32(n.Pix[i*3]) / 255
		out[plane+i] = float32(n.Pix[i*3+1]) / 255
		out[2*plane+i] = float32(n.Pix[i*3+2]) / 255
	}
	return out
}

// ToImage converts to an opaque *image.RGBA.
func (n *NormalizedImage) ToImage() *image.RGBA {
	return rgbToRGBA(n.Pix, n.Size, n.Size)
}

// EncodePNG renders the frame losslessly for backends that take encoded images.
func (n *NormalizedImage) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, n.ToImage()); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func rgbToRGBA(pix []uint8, height, width int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i < len(pix); i, j = i+3, j+4 {
		img.Pix[j] = pix[i]
		img.Pix[j+1] = pix[i+1]
		img.Pix[j+2] = pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

func rgbaToRGB(img *image.RGBA) []uint8 {
	b := img.Bounds()
	out := make([]uint8, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			out = append(out, row[i], row[i+1], row[i+2])
		}
	}
	return out
}
