package fitsview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const annotationHeight = 36

// Annotate returns a copy of res.Image with a caption strip below it showing
// the mode, downsample factor and per-channel stretch.
func Annotate(res *Result) (*image.RGBA, error) {
	if res == nil || res.Image == nil {
		return nil, fmt.Errorf("no render result")
	}

	src := res.Image.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, src.Dx(), src.Dy()+annotationHeight))
	draw.Draw(out, out.Bounds(), &image.Uniform{C: color.RGBA{0, 0, 0, 255}}, image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(0, 0, src.Dx(), src.Dy()), res.Image, src.Min, draw.Src)

	face := basicfont.Face7x13
	white := color.RGBA{255, 255, 255, 255}
	grey := color.RGBA{180, 180, 180, 255}

	drawText(out, face, fmt.Sprintf("%s  1:%d", res.Label, res.SampleFactor), 4, src.Dy()+14, white)

	line := ""
	for _, ch := range []Channel{ChannelRed, ChannelGreen, ChannelBlue} {
		s := res.Stats[ch]
		line += fmt.Sprintf("%s %.4g-%.4g m%.3f  ", ch, s.Min, s.Max, s.Midtone)
	}
	drawText(out, face, line, 4, src.Dy()+30, grey)
	return out, nil
}

func drawText(img *image.RGBA, face font.Face, s string, x, y int, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
