package fitsview

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

const (
	fitsCardSize     = 80
	fitsCardsInBlock = 36
	fitsBlockSize    = fitsCardSize * fitsCardsInBlock
)

// FitsMetadata holds parsed FITS header key-value pairs.
type FitsMetadata struct {
	Headers map[string]string
}

// NewFitsMetadata creates an empty FitsMetadata.
func NewFitsMetadata() *FitsMetadata {
	return &FitsMetadata{Headers: make(map[string]string)}
}

func (m *FitsMetadata) GetString(key string) string {
	if m == nil {
		return ""
	}
	return m.Headers[strings.ToUpper(key)]
}

func (m *FitsMetadata) GetDouble(key string) (float64, bool) {
	v := m.GetString(key)
	if v == "" {
		return 0, false
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return d, true
}

func (m *FitsMetadata) GetInt(key string) (int, bool) {
	v := m.GetString(key)
	if v == "" {
		return 0, false
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return i, true
}

func (m *FitsMetadata) ObjectName() string { return m.GetString("OBJECT") }
func (m *FitsMetadata) CameraName() string { return m.GetString("INSTRUME") }

func (m *FitsMetadata) ExposureTime() (float64, bool) {
	if v, ok := m.GetDouble("EXPTIME"); ok {
		return v, true
	}
	return m.GetDouble("EXPOSURE")
}

// Frame is a decoded FITS primary image ready for rendering.
//
// Data is a flat slice of uint8, int16, int32, float32 or float64 holding the
// stored (uncalibrated) samples. Axes is slowest-first: [height, width] or
// [planes, height, width].
type Frame struct {
	Data     any
	Axes     []int
	BZero    float64
	BScale   float64
	BitPix   int
	Metadata *FitsMetadata
}

// Calibration returns the frame's BSCALE/BZERO transform. A zero BScale is
// treated as absent.
func (f *Frame) Calibration() Calibration {
	cal := Calibration{Scale: f.BScale, Zero: f.BZero}
	if cal.Scale == 0 {
		cal.Scale = 1
	}
	return cal
}

// BayerPattern returns the first non-empty CFA pattern found under
// BayerPatternKeys, normalized.
func (f *Frame) BayerPattern() string {
	for _, key := range BayerPatternKeys {
		if p := NormalizeBayerPattern(f.Metadata.GetString(key)); p != "" {
			return p
		}
	}
	return ""
}

// ReadFits reads FITS headers and pixel data from a file.
func ReadFits(filePath string) (*Frame, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening FITS file: %w", err)
	}
	defer f.Close()
	return readFitsFromReader(f)
}

// ReadFitsFromBytes reads FITS headers and pixel data from a byte slice.
func ReadFitsFromBytes(data []byte) (*Frame, error) {
	return readFitsFromReader(bytes.NewReader(data))
}

type fitsHeader struct {
	bitpix int
	naxis  []int
	bzero  float64
	bscale float64
}

func readFitsHeader(r io.Reader, metadata *FitsMetadata) (*fitsHeader, error) {
	hdr := &fitsHeader{bscale: 1}
	block := make([]byte, fitsBlockSize)

	for {
		if _, err := io.ReadFull(r, block); err != nil {
			return nil, fmt.Errorf("reading FITS header block: %w", err)
		}
		for i := 0; i < fitsCardsInBlock; i++ {
			card := string(block[i*fitsCardSize : (i+1)*fitsCardSize])
			keyword := strings.TrimSpace(card[:8])

			if keyword == "END" {
				return hdr, nil
			}
			if card[8] != '=' || card[9] != ' ' {
				continue
			}

			rawValue := strings.TrimSpace(splitFitsComment(card[10:]))
			if parsed := parseFitsValue(rawValue); keyword != "" && parsed != "" {
				metadata.Headers[strings.ToUpper(keyword)] = parsed
			}

			switch {
			case keyword == "BITPIX":
				hdr.bitpix, _ = strconv.Atoi(rawValue)
			case keyword == "NAXIS":
				n, _ := strconv.Atoi(rawValue)
				if n < 0 || n > 999 {
					return nil, fmt.Errorf("invalid FITS: NAXIS=%d", n)
				}
				hdr.naxis = make([]int, n)
			case strings.HasPrefix(keyword, "NAXIS"):
				idx, err := strconv.Atoi(keyword[5:])
				if err != nil || idx < 1 || idx > len(hdr.naxis) {
					continue
				}
				hdr.naxis[idx-1], _ = strconv.Atoi(rawValue)
			case keyword == "BZERO":
				hdr.bzero, _ = strconv.ParseFloat(rawValue, 64)
			case keyword == "BSCALE":
				hdr.bscale, _ = strconv.ParseFloat(rawValue, 64)
			}
		}
	}
}

// maxFitsSamples bounds the declared sample count so the byte size of the
// widest encoding still fits in an int.
const maxFitsSamples = math.MaxInt / 8

// frameAxes turns FITS NAXISn (fastest first) into slowest-first axes and the
// total sample count. A degenerate third axis of length one is dropped.
func (h *fitsHeader) frameAxes() ([]int, int, error) {
	if len(h.naxis) < 2 {
		return nil, 0, fmt.Errorf("invalid FITS: NAXIS=%d, axes=%v", len(h.naxis), h.naxis)
	}
	total := 1
	for i, n := range h.naxis {
		if n <= 0 {
			return nil, 0, fmt.Errorf("invalid FITS: NAXIS%d=%d", i+1, n)
		}
		if total > maxFitsSamples/n {
			return nil, 0, fmt.Errorf("invalid FITS: axes %v are too large", h.naxis)
		}
		total *= n
	}
	width, height := h.naxis[0], h.naxis[1]
	planes := total / (width * height)
	if planes == 1 {
		return []int{height, width}, total, nil
	}
	return []int{planes, height, width}, total, nil
}

// remainingBytes reports how much data is left in r when that is knowable
// without reading it.
func remainingBytes(r io.Reader) (int64, bool) {
	switch r := r.(type) {
	case *bytes.Reader:
		return int64(r.Len()), true
	case *os.File:
		info, err := r.Stat()
		if err != nil || !info.Mode().IsRegular() {
			return 0, false
		}
		pos, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, false
		}
		return info.Size() - pos, true
	}
	return 0, false
}

func readFitsFromReader(r io.Reader) (*Frame, error) {
	metadata := NewFitsMetadata()
	hdr, err := readFitsHeader(r, metadata)
	if err != nil {
		return nil, err
	}
	axes, numSamples, err := hdr.frameAxes()
	if err != nil {
		return nil, err
	}
	sampleSize, err := fitsSampleSize(hdr.bitpix)
	if err != nil {
		return nil, err
	}
	need := int64(numSamples) * int64(sampleSize)
	if avail, ok := remainingBytes(r); ok && avail < need {
		return nil, fmt.Errorf("invalid FITS: axes %v need %d data bytes, %d available", hdr.naxis, need, avail)
	}

	data, err := readFitsSamples(r, hdr.bitpix, numSamples)
	if err != nil {
		return nil, err
	}

	return &Frame{
		Data:     data,
		Axes:     axes,
		BZero:    hdr.bzero,
		BScale:   hdr.bscale,
		BitPix:   hdr.bitpix,
		Metadata: metadata,
	}, nil
}

func fitsSampleSize(bitpix int) (int, error) {
	switch bitpix {
	case 8, 16, 32, -32, -64:
		return abs(bitpix) / 8, nil
	default:
		return 0, fmt.Errorf("unsupported BITPIX: %d", bitpix)
	}
}

// readFitsSamples decodes big-endian samples into a slice of the matching Go
// type. Calibration is left to the sample accessor.
func readFitsSamples(r io.Reader, bitpix, n int) (any, error) {
	bytesPerSample, err := fitsSampleSize(bitpix)
	if err != nil {
		return nil, err
	}
	if n < 0 || n > maxFitsSamples {
		return nil, fmt.Errorf("invalid FITS: %d samples", n)
	}
	raw := make([]byte, n*bytesPerSample)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("reading %d-bit pixel data: %w", bitpix, err)
	}

	switch bitpix {
	case 8:
		return raw, nil
	case 16:
		out := make([]int16, n)
		for i := range out {
			out[i] = int16(binary.BigEndian.Uint16(raw[i*2:]))
		}
		return out, nil
	case 32:
		out := make([]int32, n)
		for i := range out {
			out[i] = int32(binary.BigEndian.Uint32(raw[i*4:]))
		}
		return out, nil
	case -32:
		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(binary.BigEndian.Uint32(raw[i*4:]))
		}
		return out, nil
	case -64:
		out := make([]float64, n)
		for i := range out {
			out[i] = math.Float64frombits(binary.BigEndian.Uint64(raw[i*8:]))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported BITPIX: %d", bitpix)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// splitFitsComment drops a trailing "/ comment", ignoring slashes inside a
// quoted string.
func splitFitsComment(s string) string {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			inQuote = !inQuote
		case '/':
			if !inQuote {
				return s[:i]
			}
		}
	}
	return s
}

func parseFitsValue(rawValue string) string {
	if rawValue == "" {
		return ""
	}
	if rawValue == "T" {
		return "True"
	}
	if rawValue == "F" {
		return "False"
	}
	if strings.HasPrefix(rawValue, "'") {
		endQuote := strings.LastIndex(rawValue, "'")
		if endQuote > 0 {
			return strings.TrimRight(rawValue[1:endQuote], " ")
		}
		return strings.TrimLeft(strings.TrimRight(rawValue, " "), "'")
	}
	return rawValue
}
