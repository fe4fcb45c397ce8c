package fitsview

import (
	"context"
	"fmt"
	"image"
	"runtime"

	"github.com/kovidgoyal/go-parallel"
)

// Result is a finished display raster.
type Result struct {
	Image        *image.RGBA
	Mode         ColorMode
	Label        string
	SampleFactor int
	Stats        [3]ChannelStats
}

// SampleFactor returns the smallest power of two f such that
// (width/f)*(height/f) <= maxPixels. A maxPixels below one is treated as one.
func SampleFactor(width, height int, maxPixels int64) int {
	maxPixels = max(1, maxPixels)
	f := 1
	for {
		w, h := int64(width/f), int64(height/f)
		if w <= 0 || h <= maxPixels/w {
			return f
		}
		f *= 2
	}
}

// Render tone-maps frame into an RGBA raster.
//
// Absent or unrecognized data returns an error matching ErrNoData. A raster
// above opts.MaxRasterBytes returns ErrImageTooLarge before anything is
// allocated. Any other fault, including a panic in a render worker, is logged
// and returned; no partial raster is ever returned.
func Render(ctx context.Context, frame *Frame, opts *RenderOptions) (res *Result, err error) {
	if opts == nil {
		opts = NewRenderOptions()
	}
	logger := opts.Logger

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rendering: %v", r)
		}
		if err != nil {
			res = nil
			logger.Printf("Render failed: %v", err)
		}
	}()

	if frame == nil || frame.Data == nil || len(frame.Axes) == 0 {
		return nil, ErrNoData
	}
	planes, rawHeight, rawWidth, err := parseAxes(frame.Axes)
	if err != nil {
		return nil, err
	}

	factor := SampleFactor(rawWidth, rawHeight, opts.MaxDisplayPixels)
	width, height := max(1, rawWidth/factor), max(1, rawHeight/factor)
	if size := int64(width) * int64(height) * 4; size > opts.MaxRasterBytes {
		return nil, fmt.Errorf("%w: %dx%d needs %d bytes, limit %d", ErrImageTooLarge, width, height, size, opts.MaxRasterBytes)
	}

	acc, err := NewSampleAccessor(frame.Data, frame.Axes, frame.Calibration())
	if err != nil {
		return nil, err
	}

	mode := DetectColorMode(planes, frame.BayerPattern())
	logger.Printf("Mode: %s (%dx%d raw)", mode.Label(), rawWidth, rawHeight)
	logger.Printf("Downsample factor: %d (display %dx%d)", factor, width, height)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	samples := collectSamples(acc, mode, width, height, factor, opts.StatsSamples)
	stats := channelStats(samples, opts.Stretch)
	for _, ch := range []Channel{ChannelRed, ChannelGreen, ChannelBlue} {
		mean, stddev := meanStdDev(samples[ch])
		logger.Printf("%s: min=%g max=%g midtone=%.4f (n=%d mean=%.3f stddev=%.3f)",
			ch, stats[ch].Min, stats[ch].Max, stats[ch].Midtone, len(samples[ch]), mean, stddev)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if err := renderBands(img, acc, mode, stats, factor, opts.Workers); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", mode.Label(), err)
	}

	return &Result{
		Image:        img,
		Mode:         mode,
		Label:        mode.Label(),
		SampleFactor: factor,
		Stats:        stats,
	}, nil
}

// renderBands splits the raster into horizontal bands of
// max(1, height/workers) rows and renders them in parallel. Bands write to
// disjoint rows of img. The first worker panic is returned after all bands
// finish.
func renderBands(img *image.RGBA, acc SampleAccessor, mode ColorMode, stats [3]ChannelStats, factor, workers int) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	height := img.Bounds().Dy()
	chunk := max(1, height/workers)
	bands := (height + chunk - 1) / chunk

	return parallel.Run_in_parallel_over_range(workers, func(start, limit int) {
		for band := start; band < limit; band++ {
			y0 := band * chunk
			renderRows(img, acc, mode, stats, factor, y0, min(height, y0+chunk))
		}
	}, 0, bands)
}

func renderRows(img *image.RGBA, acc SampleAccessor, mode ColorMode, stats [3]ChannelStats, factor, y0, y1 int) {
	width := img.Bounds().Dx()
	for y := y0; y < y1; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		rawY := y * factor
		for x := 0; x < width; x++ {
			r, g, b := mode.pixel(acc, x*factor, rawY)
			s := row[x*4 : x*4+4 : x*4+4]
			s[0] = ToneMap(r, stats[ChannelRed])
			s[1] = ToneMap(g, stats[ChannelGreen])
			s[2] = ToneMap(b, stats[ChannelBlue])
			s[3] = 0xff
		}
	}
}
