//go:build !purego && !js

package fitsview

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// WriteRaster writes img to path through OpenCV; the format follows the file
// extension.
func WriteRaster(path string, img image.Image) error {
	rgba := toRGBA(img)
	b := rgba.Bounds()

	src, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC4, rgba.Pix)
	if err != nil {
		return fmt.Errorf("wrapping raster: %w", err)
	}
	defer src.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(src, &bgr, gocv.ColorRGBAToBGR)

	if !gocv.IMWrite(path, bgr) {
		return fmt.Errorf("writing raster: %s", path)
	}
	return nil
}
