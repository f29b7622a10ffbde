// internal/imaging/canonicalize.go
package imaging

// Canonicalize returns a new RGB copy of raw. The input is never aliased.
func Canonicalize(raw *RawImage) *RawImage {
	n := raw.Height * raw.Width
	c := raw.Order.Channels()
	out := make([]uint8, n*3)

	for i := 0; i < n; i++ {
		src := raw.Pix[i*c : i*c+c]
		dst := out[i*3 : i*3+3]
		switch raw.Order {
		case RGB, RGBA:
			dst[0], dst[1], dst[2] = src[0], src[1], src[2]
		case BGR, BGRA:
			dst[0], dst[1], dst[2] = src[2], src[1], src[0]
		case Gray:
			dst[0], dst[1], dst[2] = src[0], src[0], src[0]
		}
	}

	return &RawImage{Height: raw.Height, Width: raw.Width, Order: RGB, Pix: out}
}
