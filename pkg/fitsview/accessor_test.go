package fitsview

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSampleAccessorCrossEncoding(t *testing.T) {
	raw := []int{0, 1, 7, 100, 127, 255}
	axes := []int{2, 3}
	cal := Calibration{Scale: 1.5, Zero: -3.25}

	u8 := make([]uint8, len(raw))
	i16 := make([]int16, len(raw))
	i32 := make([]int32, len(raw))
	f32 := make([]float32, len(raw))
	f64 := make([]float64, len(raw))
	for i, v := range raw {
		u8[i], i16[i], i32[i], f32[i], f64[i] = uint8(v), int16(v), int32(v), float32(v), float64(v)
	}

	reference, err := NewSampleAccessor(f64, axes, cal)
	require.NoError(t, err)

	for _, data := range []any{u8, i16, i32, f32, f64} {
		t.Run(fmt.Sprintf("%T", data), func(t *testing.T) {
			acc, err := NewSampleAccessor(data, axes, cal)
			require.NoError(t, err)
			require.Equal(t, 3, acc.Width())
			require.Equal(t, 2, acc.Height())
			require.Equal(t, 1, acc.Planes())
			for y := 0; y < 2; y++ {
				for x := 0; x < 3; x++ {
					want := float32(float64(raw[y*3+x])*cal.Scale + cal.Zero)
					require.Equal(t, want, acc.At(x, y, 0))
					require.Equal(t, reference.At(x, y, 0), acc.At(x, y, 0))
				}
			}
		})
	}
}

func TestSampleAccessorUnsignedBytesZeroExtend(t *testing.T) {
	acc, err := NewSampleAccessor([]uint8{200, 255}, []int{1, 2}, DefaultCalibration())
	require.NoError(t, err)
	require.Equal(t, float32(200), acc.At(0, 0, 0))
	require.Equal(t, float32(255), acc.At(1, 0, 0))
}

func TestSampleAccessorPlanes(t *testing.T) {
	// 3 planes of 2x2: plane p holds 10*p + index.
	data := []int16{0, 1, 2, 3, 10, 11, 12, 13, 20, 21, 22, 23}
	acc, err := NewSampleAccessor(data, []int{3, 2, 2}, Calibration{Scale: 2, Zero: 1})
	require.NoError(t, err)
	require.Equal(t, 3, acc.Planes())
	require.Equal(t, float32(2*12+1), acc.At(0, 1, 1))
	require.Equal(t, float32(2*23+1), acc.At(1, 1, 2))
	require.Equal(t, float32(1), acc.At(0, 0, 0))
}

func TestSampleAccessorRejectsBadLayouts(t *testing.T) {
	testCases := []struct {
		name string
		data any
		axes []int
		want error
	}{
		{"nil data", nil, []int{2, 2}, ErrNoData},
		{"no axes", []float32{1}, nil, ErrNoData},
		{"one axis", []float32{1}, []int{1}, ErrNoData},
		{"four axes", []float32{1}, []int{1, 1, 1, 1}, ErrUnsupportedLayout},
		{"two planes", make([]float32, 8), []int{2, 2, 2}, ErrUnsupportedLayout},
		{"zero width", []float32{}, []int{2, 0}, ErrUnsupportedLayout},
		{"short buffer", make([]int32, 3), []int{2, 2}, ErrUnsupportedLayout},
		{"short last plane", make([]float32, 11), []int{3, 2, 2}, ErrUnsupportedLayout},
		{"overflowing axes", []float32{0}, []int{3, 1 << 31, 1 << 31}, ErrUnsupportedLayout},
		{"uint16", make([]uint16, 4), []int{2, 2}, ErrUnsupportedLayout},
		{"nested", [][]float32{{1, 2}, {3, 4}}, []int{2, 2}, ErrUnsupportedLayout},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			acc, err := NewSampleAccessor(tc.data, tc.axes, DefaultCalibration())
			require.ErrorIs(t, err, tc.want)
			require.ErrorIs(t, err, ErrNoData)
			require.Nil(t, acc)
		})
	}
}
