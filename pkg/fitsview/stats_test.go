package fitsview

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func uniformSamples(n int) []float32 {
	s := make([]float32, n+1)
	for i := range s {
		s[i] = float32(i)
	}
	return s
}

func TestComputeStatsEmpty(t *testing.T) {
	want := ChannelStats{Min: 0, Max: 65535, Midtone: 0.5}
	require.Equal(t, want, ComputeStats(nil, NewStretchParams()))

	linear := NewStretchParams()
	linear.AutoStretch = false
	require.Equal(t, want, ComputeStats([]float32{}, linear))
}

func TestComputeStatsAutoStretchUniform(t *testing.T) {
	samples := uniformSamples(1000)
	stats := ComputeStats(samples, NewStretchParams())

	require.LessOrEqual(t, stats.Min, float32(500))
	require.GreaterOrEqual(t, stats.Max, float32(500))
	require.Greater(t, stats.Midtone, float32(0))
	require.Less(t, stats.Midtone, float32(1))

	// median 500, MAD 250: the shadow clip falls below the data minimum.
	require.Equal(t, float32(0), stats.Min)
	require.InDelta(t, 1000, float64(stats.Max), 1)
	require.InDelta(t, 0.9, float64(stats.Midtone), 1e-3)

	// The median lands on the target background brightness.
	require.InDelta(t, 0.10*255, float64(ToneMap(500, stats)), 1)

	// Input order does not matter and the input is left untouched.
	reversed := make([]float32, len(samples))
	for i, v := range samples {
		reversed[len(samples)-1-i] = v
	}
	require.Equal(t, stats, ComputeStats(reversed, NewStretchParams()))
	require.Equal(t, float32(1000), reversed[0])
}

func TestComputeStatsShadowClip(t *testing.T) {
	// A peaked background around 1000 plus a few saturated stars.
	var samples []float32
	add := func(v float32, n int) {
		for i := 0; i < n; i++ {
			samples = append(samples, v)
		}
	}
	add(970, 1000)
	add(995, 2000)
	add(1000, 4000)
	add(1005, 2000)
	add(1030, 1000)
	add(60000, 4)

	stats := ComputeStats(samples, NewStretchParams())

	// median 1000, MAD 5: shadow at 1000 - 2.8*5.
	require.Equal(t, float32(986), stats.Min)
	// The stars sit above the highlight quantile.
	require.Equal(t, float32(1030), stats.Max)
	require.Greater(t, stats.Midtone, float32(0))
	require.Less(t, stats.Midtone, float32(1))
	require.InDelta(t, 0.10*255, float64(ToneMap(1000, stats)), 1)
}

func TestComputeStatsConstant(t *testing.T) {
	stats := ComputeStats([]float32{42, 42, 42, 42}, NewStretchParams())
	require.Equal(t, ChannelStats{Min: 42, Max: 42, Midtone: 0.5}, stats)
	require.Equal(t, uint8(0), ToneMap(42, stats))
	require.Equal(t, uint8(255), ToneMap(43, stats))
}

func TestComputeStatsLinear(t *testing.T) {
	p := NewStretchParams()
	p.AutoStretch = false

	testCases := []struct {
		name    string
		samples []float32
		want    ChannelStats
	}{
		{"normalized", []float32{0, 0.25, 1}, ChannelStats{Min: 0, Max: 1, Midtone: 0.5}},
		{"integer", []float32{0, 10, 1.5}, ChannelStats{Min: 0, Max: 65535, Midtone: 0.5}},
		{"negative", []float32{-5, -1}, ChannelStats{Min: 0, Max: 1, Midtone: 0.5}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ComputeStats(tc.samples, p))
		})
	}
}

func TestMidtoneFor(t *testing.T) {
	for _, x := range []float64{0.01, 0.1, 0.3, 0.5, 0.8, 0.99} {
		m := midtoneFor(x, 0.10)
		require.InDelta(t, 0.10, mtf(m, x), 1e-9, "x=%g", x)
	}
}

func TestChannelStatsFallback(t *testing.T) {
	var samples channelSamples
	samples[ChannelGreen] = uniformSamples(100)
	stats := channelStats(samples, NewStretchParams())
	require.Equal(t, stats[ChannelGreen], stats[ChannelRed])
	require.Equal(t, stats[ChannelGreen], stats[ChannelBlue])

	samples[ChannelRed] = []float32{0, 0.5, 1}
	p := NewStretchParams()
	p.AutoStretch = false
	stats = channelStats(samples, p)
	require.Equal(t, float32(1), stats[ChannelRed].Max)
	require.Equal(t, float32(65535), stats[ChannelGreen].Max)
	require.Equal(t, stats[ChannelGreen], stats[ChannelBlue])

	stats = channelStats(channelSamples{}, NewStretchParams())
	for _, s := range stats {
		require.Equal(t, NeutralStats(), s)
	}
}

func TestStatsStride(t *testing.T) {
	require.Equal(t, 1, statsStride(100, 100, 50000))
	require.Equal(t, 20, statsStride(1000, 1000, 50000))
	require.Equal(t, 1, statsStride(1000, 1000, 0))
}

func TestCollectSamples(t *testing.T) {
	data := make([]float32, 16)
	for i := range data {
		data[i] = float32(i)
	}
	data[5] = float32(math.NaN())
	acc, err := NewSampleAccessor(data, []int{4, 4}, DefaultCalibration())
	require.NoError(t, err)

	grey := collectSamples(acc, ColorMode{Kind: Greyscale}, 4, 4, 1, 50000)
	require.Len(t, grey[ChannelGreen], 15)
	require.Empty(t, grey[ChannelRed])
	require.Empty(t, grey[ChannelBlue])

	// Downsampled by two: positions (0,0), (2,0), (0,2), (2,2) are all red
	// sites, so every channel still gets a sample per position.
	bayer := collectSamples(acc, DetectColorMode(1, "RGGB"), 2, 2, 2, 50000)
	require.Equal(t, []float32{0, 2, 8, 10}, bayer[ChannelRed])
	require.Equal(t, []float32{1, 3, 9, 11}, bayer[ChannelGreen])
	require.Len(t, bayer[ChannelBlue], 3) // (1,1) is NaN
}
