package fitsview

// RenderOptions contains all parameters for a render.
type RenderOptions struct {
	Stretch StretchParams
	// MaxDisplayPixels bounds the display raster; larger frames are
	// downsampled by powers of two until they fit.
	MaxDisplayPixels int64
	// MaxRasterBytes is the hard ceiling for the RGBA output buffer.
	MaxRasterBytes int64
	// StatsSamples is the approximate number of display positions visited
	// per channel when computing statistics.
	StatsSamples int
	// Workers is the number of row bands rendered in parallel. Zero uses the
	// number of CPUs.
	Workers int
	Logger  *Logger
}

// NewRenderOptions creates a RenderOptions with default values.
func NewRenderOptions() *RenderOptions {
	return &RenderOptions{
		Stretch:          NewStretchParams(),
		MaxDisplayPixels: 16_000_000,
		MaxRasterBytes:   200_000_000,
		StatsSamples:     50_000,
		Workers:          0,
	}
}
