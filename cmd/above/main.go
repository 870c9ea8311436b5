package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	above "github.com/a3st/ABOVE"
	"github.com/a3st/ABOVE/devtools"
	"github.com/a3st/ABOVE/window"
)

//go:embed demo.html
var demoPage []byte

func main() {
	var (
		url         = flag.String("url", "", "Page URL or local file (empty runs the embedded demo)")
		title       = flag.String("title", "ABOVE", "Window title")
		width       = flag.Int("width", 800, "Window width in logical units")
		height      = flag.Int("height", 600, "Window height in logical units")
		fixed       = flag.Bool("fixed", false, "Disable window resizing")
		debug       = flag.Bool("debug", false, "Enable devtools settings and debug logging")
		scale       = flag.Int("scale", 100, "Display scale percent")
		interactive = flag.Bool("i", false, "Interactive devtools console (requires -debug)")
	)
	flag.Parse()

	if *interactive && !*debug {
		fmt.Fprintln(os.Stderr, "Usage: above -debug -i  (the console requires debug mode)")
		os.Exit(1)
	}

	if err := run(*url, *title, *width, *height, *scale, *fixed, *debug, *interactive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(target, title string, width, height, scale int, fixed, debug, interactive bool) error {
	if debug {
		cfg := zap.NewDevelopmentConfig()
		if interactive {
			// Keep log output off the console screen.
			logPath := filepath.Join(os.TempDir(), "above-debug.log")
			cfg.OutputPaths = []string{logPath}
			cfg.ErrorOutputPaths = []string{logPath}
		}
		logger, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer logger.Sync()
		above.SetLogger(logger)
	}

	desktop := window.NewDesktop(window.Config{ScalePercent: scale})
	defer desktop.Close()

	app, err := above.New(above.Config{
		AppName:   "above",
		Title:     title,
		Width:     int32(width),
		Height:    int32(height),
		Resizable: !fixed,
		Debug:     debug,
		Desktop:   desktop,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	if err := bindHostFuncs(app); err != nil {
		return err
	}

	if target == "" {
		dir, err := os.MkdirTemp("", "above-demo-*")
		if err != nil {
			return fmt.Errorf("demo dir: %w", err)
		}
		defer os.RemoveAll(dir)

		target = filepath.Join(dir, "index.html")
		if err := os.WriteFile(target, demoPage, 0o644); err != nil {
			return fmt.Errorf("write demo page: %w", err)
		}

		// The demo page listens for this push.
		ping := time.AfterFunc(time.Second, func() {
			_ = app.EmitEvent("ping", `{"n":1}`)
		})
		defer ping.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		app.Quit()
	}()

	if interactive {
		console, err := devtools.New(devtools.Config{
			Target:  app.Adapter(),
			AppName: "above",
			URL:     target,
		})
		if err != nil {
			return err
		}
		app.Adapter().Router().SetTap(console.Feed)
		defer console.Stop()

		go func() {
			if err := console.Run(); err != nil {
				fmt.Fprintf(os.Stderr, "devtools: %v\n", err)
			}
		}()
	}

	return app.Run(target)
}

func bindHostFuncs(app *above.App) error {
	if err := app.BindFunc("host.echo", func(args []byte) (any, error) {
		return json.RawMessage(args), nil
	}); err != nil {
		return err
	}
	if err := app.BindFunc("host.time", func(args []byte) (any, error) {
		return time.Now().Format(time.RFC3339), nil
	}); err != nil {
		return err
	}
	return app.BindFunc("host.quit", func(args []byte) (any, error) {
		app.Quit()
		return nil, nil
	})
}
