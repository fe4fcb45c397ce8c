package fitsview

import "fmt"

// Calibration is the affine BSCALE/BZERO transform applied to stored samples.
type Calibration struct {
	Scale float64
	Zero  float64
}

// DefaultCalibration returns the identity transform used when a file has no
// BSCALE or BZERO card.
func DefaultCalibration() Calibration {
	return Calibration{Scale: 1, Zero: 0}
}

// SampleAccessor gives a uniform view over a decoded sample buffer. At returns
// the calibrated linear value of the sample at (x, y) in the given plane.
type SampleAccessor interface {
	At(x, y, plane int) float32
	Width() int
	Height() int
	Planes() int
}

type sample interface {
	~uint8 | ~int16 | ~int32 | ~float32 | ~float64
}

// planarAccessor reads a flat buffer laid out as [plane][y][x].
type planarAccessor[T sample] struct {
	data      []T
	width     int
	height    int
	planes    int
	planeSize int
	scale     float64
	zero      float64
}

func newPlanarAccessor[T sample](data []T, planes, height, width int, cal Calibration) (SampleAccessor, error) {
	// The product of the declared axes can wrap int; compare by division.
	if len(data)/width/height < planes {
		return nil, fmt.Errorf("%w: %d samples for %dx%dx%d", ErrUnsupportedLayout, len(data), planes, height, width)
	}
	return &planarAccessor[T]{
		data:      data,
		width:     width,
		height:    height,
		planes:    planes,
		planeSize: width * height,
		scale:     cal.Scale,
		zero:      cal.Zero,
	}, nil
}

func (a *planarAccessor[T]) At(x, y, plane int) float32 {
	return float32(float64(a.data[plane*a.planeSize+y*a.width+x])*a.scale + a.zero)
}

func (a *planarAccessor[T]) Width() int  { return a.width }
func (a *planarAccessor[T]) Height() int { return a.height }
func (a *planarAccessor[T]) Planes() int { return a.planes }

// parseAxes splits slowest-first axes into plane count, height and width.
// Only single planes and three-plane RGB cubes are recognized.
func parseAxes(axes []int) (planes, height, width int, err error) {
	switch len(axes) {
	case 0, 1:
		return 0, 0, 0, ErrNoData
	case 2:
		planes, height, width = 1, axes[0], axes[1]
	case 3:
		planes, height, width = axes[0], axes[1], axes[2]
	default:
		return 0, 0, 0, fmt.Errorf("%w: %d axes", ErrUnsupportedLayout, len(axes))
	}
	if planes != 1 && planes != 3 {
		return 0, 0, 0, fmt.Errorf("%w: %d planes", ErrUnsupportedLayout, planes)
	}
	if height <= 0 || width <= 0 {
		return 0, 0, 0, fmt.Errorf("%w: %dx%d", ErrUnsupportedLayout, width, height)
	}
	return planes, height, width, nil
}

// NewSampleAccessor wraps data, a flat row-major slice of uint8, int16, int32,
// float32 or float64 samples shaped by axes, in a SampleAccessor that applies
// cal to every read. The concrete element type is resolved here once.
func NewSampleAccessor(data any, axes []int, cal Calibration) (SampleAccessor, error) {
	if data == nil {
		return nil, ErrNoData
	}
	planes, height, width, err := parseAxes(axes)
	if err != nil {
		return nil, err
	}
	switch d := data.(type) {
	case []uint8:
		return newPlanarAccessor(d, planes, height, width, cal)
	case []int16:
		return newPlanarAccessor(d, planes, height, width, cal)
	case []int32:
		return newPlanarAccessor(d, planes, height, width, cal)
	case []float32:
		return newPlanarAccessor(d, planes, height, width, cal)
	case []float64:
		return newPlanarAccessor(d, planes, height, width, cal)
	default:
		return nil, fmt.Errorf("%w: element type %T", ErrUnsupportedLayout, data)
	}
}
