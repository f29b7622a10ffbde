// internal/imaging/raw.go

// Package imaging turns camera frames into the square RGB tensors predictors consume.
package imaging

import "fmt"

// ChannelOrder is the per-pixel sample layout of an interleaved buffer.
type ChannelOrder int

const (
	// BGR is what the file decoder delivers, matching the camera convention.
	BGR ChannelOrder = iota
	RGB
	BGRA
	RGBA
	Gray
)

// Channels returns the number of samples per pixel.
func (o ChannelOrder) Channels() int {
	switch o {
	case BGR, RGB:
		return 3
	case BGRA, RGBA:
		return 4
	case Gray:
		return 1
	default:
		return 0
	}
}

func (o ChannelOrder) String() string {
	switch o {
	case BGR:
		return "bgr"
	case RGB:
		return "rgb"
	case BGRA:
		return "bgra"
	case RGBA:
		return "rgba"
	case Gray:
		return "gray"
	default:
		return fmt.Sprintf("ChannelOrder(%d)", int(o))
	}
}

// ParseChannelOrder maps a layout name such as "bgr" to its ChannelOrder.
func ParseChannelOrder(s string) (ChannelOrder, error) {
	for _, o := range []ChannelOrder{BGR, RGB, BGRA, RGBA, Gray} {
		if o.String() == s {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unknown channel order %q", s)
}

// RawImage is a decoded frame in decoder-native channel order, HWC interleaved.
type RawImage struct {
	Height int
	Width  int
	Order  ChannelOrder
	Pix    []uint8
}

// FromFrame wraps an externally captured buffer. The buffer is copied so the
// caller may reuse it.
func FromFrame(pix []uint8, height, width int, order ChannelOrder) (*RawImage, error) {
	raw := &RawImage{Height: height, Width: width, Order: order}
	if err := raw.validate(len(pix)); err != nil {
		return nil, err
	}
	raw.Pix = append([]uint8(nil), pix...)
	return raw, nil
}

func (r *RawImage) validate(n int) error {
	c := r.Order.Channels()
	if c == 0 {
		return fmt.Errorf("unsupported channel order %v", r.Order)
	}
	if r.Height <= 0 || r.Width <= 0 {
		return fmt.Errorf("invalid frame dimensions: height=%d, width=%d", r.Height, r.Width)
	}
	if expected := r.Height * r.Width * c; n != expected {
		return fmt.Errorf("frame has wrong data length: got %d, expected %d", n, expected)
	}
	return nil
}
