//go:build js && wasm

// mirageclip WASM — in-browser renderer.
// Compiled with: GOOS=js GOARCH=wasm go build -o mirageclip.wasm ./clients/wasm/
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"syscall/js"

	"github.com/arel8x/mirageclip/pkg/capture"
	"github.com/arel8x/mirageclip/pkg/clip"
	"github.com/arel8x/mirageclip/pkg/encode"
)

func main() {
	fmt.Println("mirageclip WASM loaded")

	// Register JS-callable functions.
	js.Global().Set("mirageRenderPoster", js.FuncOf(renderPoster))
	js.Global().Set("mirageRenderClip", js.FuncOf(renderClip))
	js.Global().Set("mirageReady", js.ValueOf(true))

	// Block forever (WASM must not exit).
	select {}
}

func parseRequest(args []js.Value) (clip.RenderRequest, error) {
	if len(args) < 4 {
		return clip.RenderRequest{}, fmt.Errorf("need engine, prompt, width, height")
	}
	engine, err := clip.ParseEngine(args[0].String())
	if err != nil {
		return clip.RenderRequest{}, err
	}
	return clip.RenderRequest{
		Engine: engine,
		Prompt: args[1].String(),
		Width:  args[2].Int(),
		Height: args[3].Int(),
		// Duration is filled in by the caller when rendering a clip; poster
		// rendering only needs to pass validation.
		DurationSeconds: clip.MinDurationSeconds,
	}, nil
}

// mirageRenderPoster(engine, prompt, width, height, t) — render the frame at
// time t and return it as a base64 PNG.
func renderPoster(this js.Value, args []js.Value) interface{} {
	req, err := parseRequest(args)
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}
	t := 0.0
	if len(args) >= 5 {
		t = args[4].Float()
	}

	session, err := capture.NewSession(req)
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}
	if err := session.Start(); err != nil {
		return js.ValueOf("error: " + err.Error())
	}
	frame, err := session.Advance(t)
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return js.ValueOf("error: encode PNG: " + err.Error())
	}
	return js.ValueOf(base64.StdEncoding.EncodeToString(buf.Bytes()))
}

// mirageRenderClip(engine, prompt, width, height, durationSeconds, fps) —
// render a full clip and return it as a base64 MJPEG AVI. The browser build
// has no external encoder, so the generic container is used directly.
func renderClip(this js.Value, args []js.Value) interface{} {
	req, err := parseRequest(args)
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}
	if len(args) >= 5 {
		req.DurationSeconds = args[4].Int()
	}
	fps := 30
	if len(args) >= 6 {
		fps = args[5].Int()
	}

	session, err := capture.NewSession(req)
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}

	var buf bytes.Buffer
	sink := encode.NewAVISink(&buf, req.Width, req.Height, fps)
	driver := capture.NewDriver(capture.NewFixedStepClock(fps), nil)
	if _, err := driver.Run(context.Background(), session, sink, ""); err != nil {
		return js.ValueOf("error: " + err.Error())
	}
	return js.ValueOf(base64.StdEncoding.EncodeToString(buf.Bytes()))
}
