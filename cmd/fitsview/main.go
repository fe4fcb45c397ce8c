package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	fv "fitsview/pkg/fitsview"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("fitsview", flag.ContinueOnError)
	linear := fs.Bool("linear", false, "disable auto-stretch and map the raw range linearly")
	annotate := fs.Bool("annotate", false, "add a caption strip with mode and stretch parameters")
	maxSize := fs.Int("max", 0, "scale the output to fit within N x N pixels (0 keeps the display size)")
	workers := fs.Int("workers", 0, "parallel render bands (0 uses all CPUs)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: fitsview [flags] <input.fits> [output.png]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		return fmt.Errorf("expected an input file")
	}

	inputFilePath := fs.Arg(0)
	outputFilePath := strings.TrimSuffix(inputFilePath, ".fits") + ".png"
	if fs.NArg() == 2 {
		outputFilePath = fs.Arg(1)
	}

	fmt.Printf("Loading: %s\n", inputFilePath)
	frame, err := fv.ReadFits(inputFilePath)
	if err != nil {
		return fmt.Errorf("reading FITS: %w", err)
	}
	fmt.Printf("FITS loaded: axes=%v, BITPIX=%d\n", frame.Axes, frame.BitPix)
	if name := frame.Metadata.ObjectName(); name != "" {
		fmt.Printf("  Object:   %s\n", name)
	}
	if camera := frame.Metadata.CameraName(); camera != "" {
		fmt.Printf("  Camera:   %s\n", camera)
	}
	if exposure, ok := frame.Metadata.ExposureTime(); ok {
		fmt.Printf("  Exposure: %.2fs\n", exposure)
	}

	opts := fv.NewRenderOptions()
	opts.Stretch.AutoStretch = !*linear
	opts.Workers = *workers
	opts.Logger = fv.NewLogger(os.Stderr, nil)

	startTime := time.Now()
	result, err := fv.Render(context.Background(), frame, opts)
	switch {
	case errors.Is(err, fv.ErrImageTooLarge):
		return fmt.Errorf("out of memory: %w", err)
	case errors.Is(err, fv.ErrNoData):
		return fmt.Errorf("could not render %s: %w", inputFilePath, err)
	case err != nil:
		return err
	}
	fmt.Printf("Rendered %s in %.2fs\n", result.Label, time.Since(startTime).Seconds())

	var out image.Image = result.Image
	if *annotate {
		if out, err = fv.Annotate(result); err != nil {
			return err
		}
	}
	out = fv.Thumbnail(out, *maxSize)

	if err := fv.WriteRaster(outputFilePath, out); err != nil {
		return err
	}
	fmt.Println("Saved to:", outputFilePath)
	return nil
}
