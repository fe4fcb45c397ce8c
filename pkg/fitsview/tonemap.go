package fitsview

import "math"

// ToneMap converts a linear value to an 8-bit display intensity using the
// channel's range and midtone curve. NaN maps to black.
func ToneMap(v float32, s ChannelStats) uint8 {
	if math.IsNaN(float64(v)) || v <= s.Min {
		return 0
	}
	if v >= s.Max {
		return 255
	}
	x := (float64(v) - float64(s.Min)) / (float64(s.Max) - float64(s.Min))
	m := float64(s.Midtone)
	if math.Abs(m-0.5) >= 0.001 {
		x = mtf(m, x)
	}
	y := math.Round(x * 255)
	if y < 0 {
		return 0
	}
	if y > 255 {
		return 255
	}
	return uint8(y)
}

// mtf is the midtone transfer function. It fixes 0 and 1 and maps m to 0.5.
func mtf(m, x float64) float64 {
	return (m - 1) * x / ((2*m-1)*x - m)
}
