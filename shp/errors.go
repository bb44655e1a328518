package shp

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode is matched by every *DecodeError.
	ErrDecode = errors.New("shp: decode error")

	// ErrInvalidHeader is returned when a shapefile header has a bad file code.
	ErrInvalidHeader = errors.New("shp: invalid file header")

	// ErrUnsupportedShape is returned for shape types other than Point and Null.
	ErrUnsupportedShape = errors.New("shp: unsupported shape type")
)

// DecodeError reports a read past the end of the available input.
type DecodeError struct {
	Offset int64 // Offset of the failed read
	Need   int   // Bytes required
	Have   int   // Bytes available
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("shp: decode error at offset %d: need %d bytes, have %d", e.Offset, e.Need, e.Have)
}

// Unwrap returns ErrDecode.
func (e *DecodeError) Unwrap() error {
	return ErrDecode
}
