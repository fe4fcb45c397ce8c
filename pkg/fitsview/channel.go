package fitsview

import "strings"

// Channel is a logical display colour channel.
type Channel int

const (
	ChannelRed Channel = iota
	ChannelGreen
	ChannelBlue
)

func (c Channel) String() string {
	switch c {
	case ChannelRed:
		return "R"
	case ChannelGreen:
		return "G"
	case ChannelBlue:
		return "B"
	default:
		return "?"
	}
}

// ColorKind identifies how colour is encoded in a frame.
type ColorKind int

const (
	Greyscale ColorKind = iota
	RGBPlanes
	BayerMosaic
)

// ColorMode describes the colour layout of a frame for the duration of one
// render. Pattern is set only for BayerMosaic.
type ColorMode struct {
	Kind    ColorKind
	Pattern string
}

// bayerTiles maps a CFA pattern to its 2x2 tile, indexed [y&1][x&1].
var bayerTiles = map[string][2][2]Channel{
	"RGGB": {{ChannelRed, ChannelGreen}, {ChannelGreen, ChannelBlue}},
	"BGGR": {{ChannelBlue, ChannelGreen}, {ChannelGreen, ChannelRed}},
	"GRBG": {{ChannelGreen, ChannelRed}, {ChannelBlue, ChannelGreen}},
	"GBRG": {{ChannelGreen, ChannelBlue}, {ChannelRed, ChannelGreen}},
}

// BayerPatternKeys are the header keywords searched, in order, for a CFA
// pattern.
var BayerPatternKeys = []string{"BAYERPAT", "COLORTYP", "XBAYERPAT", "CFA"}

// NormalizeBayerPattern upper-cases a header value and strips quotes and
// surrounding blanks.
func NormalizeBayerPattern(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "'\"")
	return strings.ToUpper(strings.TrimSpace(s))
}

// IsBayerPattern reports whether p is one of the supported 2x2 CFA patterns.
func IsBayerPattern(p string) bool {
	_, ok := bayerTiles[p]
	return ok
}

// DetectColorMode picks the colour mode from the plane count and the
// normalized CFA pattern. Three planes always win; an unknown pattern on a
// single plane is rendered as greyscale.
func DetectColorMode(planes int, pattern string) ColorMode {
	if planes == 3 {
		return ColorMode{Kind: RGBPlanes}
	}
	if IsBayerPattern(pattern) {
		return ColorMode{Kind: BayerMosaic, Pattern: pattern}
	}
	return ColorMode{Kind: Greyscale}
}

// Label is the human readable mode name shown next to the image.
func (m ColorMode) Label() string {
	switch m.Kind {
	case RGBPlanes:
		return "RGB 3D"
	case BayerMosaic:
		return "Bayer " + m.Pattern
	default:
		return "Greyscale 2D"
	}
}

func (m ColorMode) String() string { return m.Label() }

// ChannelAt classifies the raw sample at (x, y) in plane. RGB planes map to
// channels by index, mosaics by their 2x2 tile, and greyscale is green.
func (m ColorMode) ChannelAt(x, y, plane int) Channel {
	switch m.Kind {
	case RGBPlanes:
		return Channel(plane)
	case BayerMosaic:
		return bayerTiles[m.Pattern][y&1][x&1]
	default:
		return ChannelGreen
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// pixel returns the linear r, g, b values at raw position (x, y).
//
// Mosaic frames use a nearest-neighbour fill: the site's own channel is read
// in place and the other two come from fixed neighbour offsets, clamped to the
// raw bounds.
//
//	R site: G at (x+1, y), B at (x+1, y+1)
//	B site: G at (x+1, y), R at (x-1, y-1)
//	G site: R at (x+1, y), B at (x, y+1)
func (m ColorMode) pixel(acc SampleAccessor, x, y int) (r, g, b float32) {
	switch m.Kind {
	case RGBPlanes:
		var v [3]float32
		for plane := range v {
			v[m.ChannelAt(x, y, plane)] = acc.At(x, y, plane)
		}
		return v[ChannelRed], v[ChannelGreen], v[ChannelBlue]
	case Greyscale:
		v := acc.At(x, y, 0)
		return v, v, v
	}

	maxX, maxY := acc.Width()-1, acc.Height()-1
	px := func(x, y int) float32 {
		return acc.At(clampInt(x, 0, maxX), clampInt(y, 0, maxY), 0)
	}

	switch m.ChannelAt(x, y, 0) {
	case ChannelRed:
		r = px(x, y)
		g = px(x+1, y)
		b = px(x+1, y+1)
	case ChannelBlue:
		b = px(x, y)
		g = px(x+1, y)
		r = px(x-1, y-1)
	default:
		g = px(x, y)
		r = px(x+1, y)
		b = px(x, y+1)
	}
	return r, g, b
}
