// internal/imaging/image_test.go
package imaging

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_DeliversBGR(t *testing.T) {
	path := writeImage(t, "frame.png", solid(3, 2, color.NRGBA{R: 200, G: 100, B: 50, A: 255}))

	raw, _, err := decodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, BGR, raw.Order)
	assert.Equal(t, 2, raw.Height)
	assert.Equal(t, 3, raw.Width)
	assert.Equal(t, []uint8{50, 100, 200}, raw.Pix[:3])

	rgb := Canonicalize(raw)
	assert.Equal(t, RGB, rgb.Order)
	assert.Equal(t, []uint8{200, 100, 50}, rgb.Pix[:3])
}

func TestDecode_DropsAlpha(t *testing.T) {
	path := writeImage(t, "alpha.png", solid(2, 2, color.NRGBA{R: 9, G: 8, B: 7, A: 40}))

	raw, _, err := decodeFile(path)
	require.NoError(t, err)
	assert.Len(t, raw.Pix, 2*2*3)
	assert.Equal(t, []uint8{7, 8, 9}, raw.Pix[:3])
}

func TestCanonicalize_ChannelOrders(t *testing.T) {
	tests := []struct {
		name  string
		order ChannelOrder
		pixel []uint8
	}{
		{"bgr", BGR, []uint8{3, 2, 1}},
		{"rgb", RGB, []uint8{1, 2, 3}},
		{"bgra", BGRA, []uint8{3, 2, 1, 255}},
		{"rgba", RGBA, []uint8{1, 2, 3, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pix []uint8
			for i := 0; i < 6; i++ {
				pix = append(pix, tt.pixel...)
			}
			raw, err := FromFrame(pix, 2, 3, tt.order)
			require.NoError(t, err)

			rgb := Canonicalize(raw)
			assert.Equal(t, RGB, rgb.Order)
			for i := 0; i < 6; i++ {
				assert.Equal(t, []uint8{1, 2, 3}, rgb.Pix[i*3:i*3+3])
			}
		})
	}
}

func TestCanonicalize_Gray(t *testing.T) {
	raw, err := FromFrame([]uint8{7, 9}, 1, 2, Gray)
	require.NoError(t, err)
	assert.Equal(t, []uint8{7, 7, 7, 9, 9, 9}, Canonicalize(raw).Pix)
}

func TestCanonicalize_DoesNotAlias(t *testing.T) {
	raw, err := FromFrame([]uint8{1, 2, 3}, 1, 1, RGB)
	require.NoError(t, err)
	out := Canonicalize(raw)
	out.Pix[0] = 99
	assert.Equal(t, uint8(1), raw.Pix[0])
}

func TestFromFrame_Validation(t *testing.T) {
	_, err := FromFrame([]uint8{1, 2, 3}, 1, 2, RGB)
	assert.Error(t, err)

	_, err = FromFrame(nil, 0, 0, RGB)
	assert.Error(t, err)

	_, err = FromFrame([]uint8{1}, 1, 1, ChannelOrder(42))
	assert.Error(t, err)

	pix := []uint8{1, 2, 3}
	raw, err := FromFrame(pix, 1, 1, RGB)
	require.NoError(t, err)
	pix[0] = 50
	assert.Equal(t, uint8(1), raw.Pix[0])
}

func TestParseChannelOrder(t *testing.T) {
	o, err := ParseChannelOrder("bgra")
	require.NoError(t, err)
	assert.Equal(t, BGRA, o)

	_, err = ParseChannelOrder("yuv")
	assert.Error(t, err)
}

func TestNormalizedImage_CHW(t *testing.T) {
	img, err := NewNormalized(1, []uint8{255, 0, 51})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0.2}, img.CHW())

	_, err = NewNormalized(2, []uint8{1, 2, 3})
	assert.Error(t, err)
}

func TestNormalizedImage_EncodePNG(t *testing.T) {
	img, err := NewNormalized(2, []uint8{
		1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12,
	})
	require.NoError(t, err)

	data, err := img.EncodePNG()
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	r, g, b, _ := decoded.At(1, 1).RGBA()
	assert.Equal(t, []uint32{10, 11, 12}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestParseInterpolation(t *testing.T) {
	i, err := ParseInterpolation("")
	require.NoError(t, err)
	assert.Equal(t, InterpBilinear, i)

	_, err = ParseInterpolation("lanczos")
	assert.Error(t, err)
}
