// mirageclip — Procedural mock video-clip fabricator.
//
// Usage:
//
//	mirageclip --engine Veo3 --prompt "..." [options]
//	mirageclip poster --engine Sora --prompt "..." -o frame.png
//	mirageclip history [--clear]
//	mirageclip serve [--port 8080]
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/arel8x/mirageclip/clients/server"
	"github.com/arel8x/mirageclip/pkg/capture"
	"github.com/arel8x/mirageclip/pkg/clip"
	"github.com/arel8x/mirageclip/pkg/encode"
	"github.com/arel8x/mirageclip/pkg/history"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "poster":
		if err := runPoster(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "history":
		if err := runHistory(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "serve":
		if err := server.RunServe(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "help", "-h", "--help":
		printUsage()
	default:
		// Default: render mode (all flags on root).
		if err := runRender(os.Args[1:]); err != nil {
			fatal(err)
		}
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runRender(args []string) error {
	fs := flag.NewFlagSet("mirageclip", flag.ExitOnError)

	var (
		engine   string
		prompt   string
		output   string
		size     string
		duration int
		fps      int
		realtime bool
	)

	fs.StringVar(&engine, "engine", "Veo3", "Engine: Veo3 or Sora")
	fs.StringVar(&prompt, "prompt", "", "Prompt text (required)")
	fs.StringVar(&output, "o", "", "Output file path")
	fs.StringVar(&output, "output", "", "Output file path")
	fs.StringVar(&size, "size", "512x512", "Resolution: 512x512, 768x432, 1024x576, 1280x720")
	fs.IntVar(&duration, "duration", 4, "Duration in seconds (2-12)")
	fs.IntVar(&fps, "fps", 30, "Capture frame rate")
	fs.BoolVar(&realtime, "realtime", false, "Pace frames against the wall clock instead of rendering as fast as possible")

	fs.Usage = printUsage
	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := buildRequest(engine, prompt, size, duration)
	if err != nil {
		return err
	}

	session, err := capture.NewSession(req)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var buf bytes.Buffer
	sink, ext, err := encode.NewSink(context.Background(), &buf, req.Width, req.Height, fps, logger)
	if err != nil {
		return err
	}

	var clock capture.Clock = capture.NewFixedStepClock(fps)
	if realtime {
		clock = capture.NewRealtimeClock(fps)
	}

	fmt.Printf("Rendering %s %s clip (%ds, seed 0x%08X)\n", req.Engine, size, req.DurationSeconds, session.Seed())

	driver := capture.NewDriver(clock, logger)
	last := -10
	driver.OnProgress = func(p int) {
		if p/10 != last/10 {
			last = p
			fmt.Printf("\r%3d%%", p)
		}
	}

	if output == "" {
		output = fmt.Sprintf("mirage-%s-%d%s", req.Engine, time.Now().Unix(), ext)
	}
	output = encode.SinkPath(output, ext)

	rec, err := driver.Run(context.Background(), session, sink, output)
	fmt.Println()
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write clip: %w", err)
	}
	addToHistory(rec, logger)

	fmt.Printf("Successfully created: %s\n", output)
	return nil
}

func runPoster(args []string) error {
	fs := flag.NewFlagSet("poster", flag.ExitOnError)

	var (
		engine string
		prompt string
		output string
		size   string
		atTime float64
	)

	fs.StringVar(&engine, "engine", "Veo3", "Engine: Veo3 or Sora")
	fs.StringVar(&prompt, "prompt", "", "Prompt text (required)")
	fs.StringVar(&output, "o", "poster.png", "Output file path (.png or .bmp)")
	fs.StringVar(&output, "output", "poster.png", "Output file path (.png or .bmp)")
	fs.StringVar(&size, "size", "512x512", "Resolution: 512x512, 768x432, 1024x576, 1280x720")
	fs.Float64Var(&atTime, "time", 1.0, "Frame time in seconds")

	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := buildRequest(engine, prompt, size, clip.MinDurationSeconds)
	if err != nil {
		return err
	}

	session, err := capture.NewSession(req)
	if err != nil {
		return err
	}
	if err := session.Start(); err != nil {
		return err
	}
	frame, err := session.Advance(atTime)
	if err != nil {
		return err
	}
	if err := encode.SavePoster(output, frame); err != nil {
		return err
	}

	fmt.Printf("Successfully created: %s\n", output)
	return nil
}

func runHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	clearHistory := fs.Bool("clear", false, "Clear the render history")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path, err := history.DefaultPath()
	if err != nil {
		return fmt.Errorf("resolve history path: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	store := history.Open(path, logger)

	if *clearHistory {
		store.Clear()
		fmt.Println("History cleared")
		return nil
	}

	clips := store.Clips()
	if len(clips) == 0 {
		fmt.Println("No rendered clips yet")
		return nil
	}
	for i, c := range clips {
		fmt.Printf("%2d. [%s] %dx%d %ds %q (%s)\n",
			i+1, c.Engine, c.Width, c.Height, c.DurationSeconds,
			c.Prompt, c.CreatedAt.Local().Format("2006-01-02 15:04"))
		if c.LocationHandle != "" {
			fmt.Printf("    → %s\n", c.LocationHandle)
		}
	}
	return nil
}

func buildRequest(engine, prompt, size string, duration int) (clip.RenderRequest, error) {
	e, err := clip.ParseEngine(engine)
	if err != nil {
		return clip.RenderRequest{}, err
	}
	res, err := clip.ParseResolution(size)
	if err != nil {
		return clip.RenderRequest{}, err
	}
	return clip.RenderRequest{
		Engine:          e,
		Prompt:          prompt,
		Width:           res.Width,
		Height:          res.Height,
		DurationSeconds: duration,
	}, nil
}

func addToHistory(rec clip.RenderedClip, logger *slog.Logger) {
	path, err := history.DefaultPath()
	if err != nil {
		logger.Warn("history disabled", "error", err)
		return
	}
	history.Open(path, logger).Add(rec)
}

func printUsage() {
	fmt.Println(`mirageclip - Procedural mock video-clip fabricator

USAGE:
    mirageclip [options]              Render a clip
    mirageclip poster [options]       Render a single frame
    mirageclip history [--clear]      Show or clear render history
    mirageclip serve [--port 8080]    Start the HTTP API

RENDER OPTIONS:
    --engine <name>      Engine: Veo3 or Sora (default: Veo3)
    --prompt <text>      Prompt text (required)
    -o, --output <path>  Output file path (.webm or .avi)
    --size <WxH>         512x512, 768x432, 1024x576, 1280x720 (default: 512x512)
    --duration <sec>     Duration in seconds, 2-12 (default: 4)
    --fps <rate>         Capture frame rate (default: 30)
    --realtime           Pace frames against the wall clock

POSTER OPTIONS:
    --engine, --prompt, --size as above
    --time <sec>         Frame time in seconds (default: 1.0)
    -o, --output <path>  Output file path, .png or .bmp (default: poster.png)

EXAMPLES:
    mirageclip --engine Veo3 --prompt "A starship gliding" --duration 4
    mirageclip --engine Sora --prompt "Rain over neon streets" --size 1280x720 -o rain.webm
    mirageclip poster --engine Sora --prompt "Rain over neon streets" -o rain.png`)
}
