//go:build js && wasm

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"syscall/js"

	fv "fitsview/pkg/fitsview"
)

func main() {
	js.Global().Set("renderFITS", js.FuncOf(renderFITS))
	select {} // block forever
}

// renderFITS(fileBytes, options) where options may carry
// {linear: bool, annotate: bool, maxSize: number, onLog: function(line)}.
func renderFITS(this js.Value, args []js.Value) (ret interface{}) {
	// A panic here would take down the whole Go runtime in the page.
	defer func() {
		if r := recover(); r != nil {
			ret = errorResult(fmt.Sprintf("internal error: %v", r), nil)
		}
	}()

	if len(args) < 1 {
		return errorResult("usage: renderFITS(fileBytes, options)", nil)
	}

	jsBytes := args[0]
	length := jsBytes.Get("length").Int()
	fileBytes := make([]byte, length)
	js.CopyBytesToGo(fileBytes, jsBytes)

	linear, annotate, maxSize := false, false, 0
	var onLog js.Value
	if len(args) >= 2 && args[1].Type() == js.TypeObject {
		o := args[1]
		if v := o.Get("linear"); v.Type() == js.TypeBoolean {
			linear = v.Bool()
		}
		if v := o.Get("annotate"); v.Type() == js.TypeBoolean {
			annotate = v.Bool()
		}
		if v := o.Get("maxSize"); v.Type() == js.TypeNumber {
			maxSize = v.Int()
		}
		if v := o.Get("onLog"); v.Type() == js.TypeFunction {
			onLog = v
		}
	}

	logLines := make([]interface{}, 0)
	logger := fv.NewLogger(nil, func(line string) {
		logLines = append(logLines, line)
		if onLog.Type() == js.TypeFunction {
			onLog.Invoke(line)
		}
	})

	frame, err := fv.ReadFitsFromBytes(fileBytes)
	if err != nil {
		return errorResult("FITS parse error: "+err.Error(), logLines)
	}

	opts := fv.NewRenderOptions()
	opts.Stretch.AutoStretch = !linear
	opts.Logger = logger

	result, err := fv.Render(context.Background(), frame, opts)
	switch {
	case errors.Is(err, fv.ErrImageTooLarge):
		return errorResult("Out of memory: "+err.Error(), logLines)
	case err != nil:
		return errorResult("Render error: "+err.Error(), logLines)
	}

	var out image.Image = result.Image
	if annotate {
		if out, err = fv.Annotate(result); err != nil {
			return errorResult("Annotate error: "+err.Error(), logLines)
		}
	}
	out = fv.Thumbnail(out, maxSize)

	var buf bytes.Buffer
	if err := fv.EncodePNG(&buf, out); err != nil {
		return errorResult("PNG encode error: "+err.Error(), logLines)
	}
	pngBytes := js.Global().Get("Uint8Array").New(buf.Len())
	js.CopyBytesToJS(pngBytes, buf.Bytes())

	b := out.Bounds()
	return js.ValueOf(map[string]interface{}{
		"png":    pngBytes,
		"label":  result.Label,
		"width":  b.Dx(),
		"height": b.Dy(),
		"log":    logLines,
	})
}

func errorResult(msg string, logLines []interface{}) interface{} {
	return js.ValueOf(map[string]interface{}{
		"error": msg,
		"log":   logLines,
	})
}
