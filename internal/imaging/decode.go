// internal/imaging/decode.go
package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// decodeFile reads the image file at path into a BGR RawImage and reports the
// detected format. Alpha is dropped and grayscale is expanded to three channels.
func decodeFile(path string) (*RawImage, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", &DecodeError{Path: path, Err: fmt.Errorf("unsupported or corrupt image data: %w", err)}
	}

	b := img.Bounds()
	if b.Empty() {
		return nil, format, &DecodeError{Path: path, Err: errors.New("image has no pixels")}
	}
	return fromImage(img), format, nil
}

func fromImage(img image.Image) *RawImage {
	b := img.Bounds()
	h, w := b.Dy(), b.Dx()
	pix := make([]uint8, 0, h*w*3)

	if src, ok := img.(*image.NRGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, y):src.PixOffset(b.Max.X, y)]
			for i := 0; i < len(row); i += 4 {
				pix = append(pix, row[i+2], row[i+1], row[i])
			}
		}
		return &RawImage{Height: h, Width: w, Order: BGR, Pix: pix}
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			pix = append(pix, c.B, c.G, c.R)
		}
	}
	return &RawImage{Height: h, Width: w, Order: BGR, Pix: pix}
}
