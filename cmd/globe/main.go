package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"

	"github.com/gekko3d/globe"
	"github.com/gekko3d/globe/render"
	"github.com/gekko3d/globe/render/gpu"
	"github.com/gekko3d/globe/render/term"
)

func init() {
	// GLFW and most GPU drivers want the main thread.
	runtime.LockOSThread()
}

type options struct {
	renderer globe.RendererName
	seed     uint64
	textures string
	width    int
	height   int
	frames   int
	debug    bool
	logFile  string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "globe:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		opts     options
		renderer string
	)
	flag.StringVar(&renderer, "renderer", string(globe.RendererGPU), "render backend: gpu, term or headless")
	flag.Uint64Var(&opts.seed, "seed", 0, "star field seed (0 picks one from the clock)")
	flag.StringVar(&opts.textures, "textures", "images", "directory holding the earth textures")
	flag.IntVar(&opts.width, "width", 1280, "window width")
	flag.IntVar(&opts.height, "height", 720, "window height")
	flag.IntVar(&opts.frames, "frames", 0, "stop after this many frames (0 runs until closed; headless defaults to 600)")
	flag.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flag.StringVar(&opts.logFile, "log", "", "write logs to this file (the terminal renderer discards them otherwise)")
	flag.Parse()

	name, err := globe.ParseRendererName(renderer)
	if err != nil {
		return err
	}
	opts.renderer = name

	logger, closeLog, err := newLogger(opts)
	if err != nil {
		return err
	}
	defer closeLog()

	surface, host, closeBackend, err := openBackend(opts)
	if err != nil {
		return err
	}
	defer closeBackend()

	def := globe.DefaultSceneDef()
	def.Seed = opts.seed

	builder := globe.NewAppBuilder().
		UseModule(globe.LoggingModule{Logger: logger}).
		UseModule(globe.AssetServerModule{Source: globe.NewFSSource(os.DirFS(opts.textures))}).
		UseModule(def.Modules()...).
		UseRenderer(surface)

	app, err := builder.Build()
	if err != nil {
		// The surface was never handed to a running app; close it here.
		if c, ok := surface.(io.Closer); ok {
			c.Close()
		}
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return app.Run(ctx, render.FrameLimit{Host: host, Frames: opts.frames})
}

func newLogger(opts options) (*globe.DefaultLogger, func(), error) {
	switch {
	case opts.logFile != "":
		f, err := os.Create(opts.logFile)
		if err != nil {
			return nil, nil, fmt.Errorf("open log: %w", err)
		}
		return globe.NewWriterLogger("globe", opts.debug, f, f), func() { f.Close() }, nil
	case opts.renderer == globe.RendererTerminal:
		// Anything printed would tear the screen.
		return globe.NewWriterLogger("globe", opts.debug, io.Discard, io.Discard), func() {}, nil
	default:
		return globe.NewDefaultLogger("globe", opts.debug), func() {}, nil
	}
}

// openBackend creates the surface and the host that drives it. The returned
// func releases what the app does not own (the GLFW window).
func openBackend(opts options) (render.Surface, render.Host, func(), error) {
	switch opts.renderer {
	case globe.RendererGPU:
		win, err := gpu.Open(opts.width, opts.height, "Globe")
		if err != nil {
			return nil, nil, nil, err
		}
		surface, err := gpu.NewSurface(win)
		if err != nil {
			win.Close()
			return nil, nil, nil, err
		}
		return surface, &gpu.Host{Window: win}, func() { win.Close() }, nil

	case globe.RendererTerminal:
		screen, err := term.OpenScreen()
		if err != nil {
			return nil, nil, nil, err
		}
		// Surface.Close restores the terminal at teardown.
		return term.NewSurface(screen), &term.Host{Screen: screen}, func() {}, nil

	default:
		frames := opts.frames
		if frames <= 0 {
			frames = 600
		}
		host := &render.FixedStepHost{Frames: frames, Width: opts.width, Height: opts.height}
		return render.NewRecorder(), host, func() {}, nil
	}
}
