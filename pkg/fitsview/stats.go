package fitsview

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// ChannelStats is the display range and midtone balance of one channel.
// Min and Max bound the linear values normalized to [0, 1]; Midtone is the
// MTF parameter, 0.5 meaning a linear curve.
type ChannelStats struct {
	Min     float32
	Max     float32
	Midtone float32
}

func (s ChannelStats) String() string {
	return fmt.Sprintf("{Min=%g, Max=%g, Midtone=%.4f}", s.Min, s.Max, s.Midtone)
}

// NeutralStats is used for channels without any usable samples.
func NeutralStats() ChannelStats {
	return ChannelStats{Min: 0, Max: 65535, Midtone: 0.5}
}

// StretchParams controls how channel statistics are derived from samples.
type StretchParams struct {
	// AutoStretch derives the range from the sample distribution. When false
	// the range is fixed to [0, 1] or [0, 65535] and the curve is linear.
	AutoStretch bool
	// TargetBackground is the display brightness the median maps to.
	TargetBackground float64
	// ShadowClipping is the number of MADs below the median the black point
	// sits at.
	ShadowClipping float64
	// HighlightQuantile selects the white point from the sorted samples.
	HighlightQuantile float64
}

// NewStretchParams returns the default auto-stretch parameters.
func NewStretchParams() StretchParams {
	return StretchParams{
		AutoStretch:       true,
		TargetBackground:  0.10,
		ShadowClipping:    2.8,
		HighlightQuantile: 0.9995,
	}
}

// ComputeStats derives ChannelStats from a channel's samples. NaN values must
// already be removed. samples is not modified.
func ComputeStats(samples []float32, p StretchParams) ChannelStats {
	if len(samples) == 0 {
		return NeutralStats()
	}
	if !p.AutoStretch {
		return linearStats(samples)
	}

	sorted := slices.Clone(samples)
	slices.Sort(sorted)
	n := len(sorted)

	median := medianSorted(sorted)
	deviations := make([]float32, n)
	for i, v := range sorted {
		deviations[i] = float32(math.Abs(float64(v) - median))
	}
	slices.Sort(deviations)
	mad := medianSorted(deviations)

	shadow := math.Max(float64(sorted[0]), median-p.ShadowClipping*mad)
	hi := int(math.Round(p.HighlightQuantile * float64(n-1)))
	highlight := float64(sorted[clampInt(hi, 0, n-1)])
	if highlight < shadow {
		highlight = shadow
	}

	result := ChannelStats{Min: float32(shadow), Max: float32(highlight), Midtone: 0.5}
	if highlight > shadow {
		x := (median - shadow) / (highlight - shadow)
		if x > 0 && x < 1 {
			result.Midtone = float32(midtoneFor(x, p.TargetBackground))
		}
	}
	return result
}

// midtoneFor solves mtf(m, x) = target for m.
func midtoneFor(x, target float64) float64 {
	return x * (target - 1) / (2*x*target - x - target)
}

func linearStats(samples []float32) ChannelStats {
	maxVal := samples[0]
	for _, v := range samples[1:] {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal <= 1 {
		return ChannelStats{Min: 0, Max: 1, Midtone: 0.5}
	}
	return ChannelStats{Min: 0, Max: 65535, Midtone: 0.5}
}

func medianSorted(sorted []float32) float64 {
	n := len(sorted)
	if n%2 == 0 {
		return (float64(sorted[n/2-1]) + float64(sorted[n/2])) / 2
	}
	return float64(sorted[n/2])
}

// meanStdDev summarizes samples for the render log.
func meanStdDev(samples []float32) (mean, stddev float64) {
	if len(samples) < 2 {
		if len(samples) == 1 {
			return float64(samples[0]), 0
		}
		return math.NaN(), math.NaN()
	}
	values := make([]float64, len(samples))
	for i, v := range samples {
		values[i] = float64(v)
	}
	return stat.MeanStdDev(values, nil)
}

// channelSamples collects stride-sampled linear values per channel.
type channelSamples [3][]float32

func (c *channelSamples) add(ch Channel, v float32) {
	if math.IsNaN(float64(v)) {
		return
	}
	c[ch] = append(c[ch], v)
}

// statsStride is the step through the display grid that visits at most
// target positions.
func statsStride(width, height, target int) int {
	if target <= 0 {
		return 1
	}
	return max(1, (width*height)/target)
}

// collectSamples walks the display grid with the stats stride and gathers
// demosaiced values at the matching raw positions. Greyscale frames only
// feed the green channel.
func collectSamples(acc SampleAccessor, mode ColorMode, width, height, factor, target int) channelSamples {
	var samples channelSamples
	stride := statsStride(width, height, target)
	total := width * height
	for i := 0; i < total; i += stride {
		rawX, rawY := (i%width)*factor, (i/width)*factor
		r, g, b := mode.pixel(acc, rawX, rawY)
		samples.add(ChannelGreen, g)
		if mode.Kind != Greyscale {
			samples.add(ChannelRed, r)
			samples.add(ChannelBlue, b)
		}
	}
	return samples
}

// channelStats computes the stats for all three channels. Red or blue with no
// samples reuse green.
func channelStats(samples channelSamples, p StretchParams) [3]ChannelStats {
	var stats [3]ChannelStats
	stats[ChannelGreen] = ComputeStats(samples[ChannelGreen], p)
	for _, ch := range []Channel{ChannelRed, ChannelBlue} {
		if len(samples[ch]) == 0 {
			stats[ch] = stats[ChannelGreen]
			continue
		}
		stats[ch] = ComputeStats(samples[ch], p)
	}
	return stats
}
