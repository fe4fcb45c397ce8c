package fitsview

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData is returned when a frame carries no axes or no sample buffer.
	// Callers treat it as "nothing to show" rather than a fault.
	ErrNoData = errors.New("no image data")

	// ErrUnsupportedLayout is returned when the sample type, axes and buffer
	// length do not form a layout the accessor understands. It matches
	// ErrNoData under errors.Is.
	ErrUnsupportedLayout = fmt.Errorf("%w: unsupported sample layout", ErrNoData)

	// ErrImageTooLarge is returned when the display raster would exceed the
	// configured memory ceiling.
	ErrImageTooLarge = errors.New("image too large to render")
)
