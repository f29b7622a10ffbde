// internal/imaging/errors.go
package imaging

import "fmt"

// DecodeError reports an image file that could not be opened or parsed.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode image %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ShapeError reports a frame whose dimensions violate the size policy.
type ShapeError struct {
	Source string
	Height int
	Width  int
	Target int
	Policy SizePolicy
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid image shape %s: %dx%d, %s (target=%d, policy=%s)",
		e.Source, e.Height, e.Width, e.Reason, e.Target, e.Policy)
}
