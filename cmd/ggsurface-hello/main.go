// Command ggsurface-hello opens a window and draws a greeting with
// ggsurface. With -headless it renders frames without a window and saves
// the last one as a PNG.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/ggsurface"
	"github.com/gogpu/ggsurface/platform"
	"github.com/gogpu/ggsurface/platform/headless"
	"github.com/gogpu/ggsurface/text"
)

func main() {
	var (
		width    = flag.Int("width", 640, "window width")
		height   = flag.Int("height", 360, "window height")
		message  = flag.String("text", "Hello, ggsurface!", "greeting to draw")
		backend  = flag.String("backend", "", "presenter backend (gpu, software); empty picks automatically")
		noWindow = flag.Bool("headless", false, "render without a window")
		frames   = flag.Int("frames", 1, "frames to render with -headless")
		output   = flag.String("output", "hello.png", "output file for -headless")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	ggsurface.SetLogger(logger)
	setToolkitLogger(logger)

	opts := []ggsurface.Option{}
	if *backend != "" {
		opts = append(opts, ggsurface.WithBackendName(*backend))
	}

	app := &hello{width: *width, height: *height, message: *message}

	var runner platform.Runner
	if *noWindow {
		if *backend == "" {
			opts = append(opts, ggsurface.WithBackend(ggsurface.SoftwareBackend()))
		}
		runner = headless.New(headless.WithMaxFrames(*frames))
		app.frames = *frames
	} else {
		r, ok := desktopRunner()
		if !ok {
			log.Fatal("no desktop toolkit on this platform; use -headless")
		}
		runner = r
	}
	app.cfg = ggsurface.DefaultConfig(opts...)

	ggsurface.StopUnwind(func() {
		if err := runner.Run(app); err != nil {
			log.Fatalf("run: %v", err)
		}
	})
	if app.err != nil {
		log.Fatal(app.err)
	}

	if *noWindow {
		if app.last == nil {
			log.Fatal("presenter keeps no image to save")
		}
		if err := ggsurface.SavePNG(*output, app.last); err != nil {
			log.Fatalf("Failed to save: %v", err)
		}
		log.Printf("Frame saved to %s (%dx%d)\n", *output, app.last.Rect.Dx(), app.last.Rect.Dy())
	}
	_ = app.close()
}

// hello draws one surface. In headless mode it asks for a redraw after
// each frame until the frame budget is spent.
type hello struct {
	cfg           ggsurface.Config
	width, height int
	message       string
	frames        int

	surface *ggsurface.Surface
	drawn   int
	last    *image.RGBA
	err     error
}

func (h *hello) Resumed(loop platform.ActiveLoop) {
	if h.surface != nil {
		return
	}
	s, err := ggsurface.NewSurfaceWith(loop, h.cfg, "ggsurface hello", h.width, h.height,
		func(a *platform.WindowAttributes) { a.MinWidth, a.MinHeight = 200, 120 })
	if err != nil {
		h.err = err
		loop.Exit()
		return
	}
	h.surface = s
	s.RequestRedraw()
}

func (h *hello) Suspended(platform.ActiveLoop) {
	_ = h.close()
}

func (h *hello) WindowEvent(loop platform.ActiveLoop, id platform.WindowID, ev platform.Event) {
	if h.surface == nil || id != h.surface.ID() {
		return
	}
	switch ev.Kind {
	case platform.EventCloseRequested:
		_ = h.close()
		loop.Exit()
	case platform.EventKeyPressed:
		if ev.Key == platform.KeyEscape {
			_ = h.close()
			loop.Exit()
		}
	case platform.EventRedrawRequested:
		if err := h.draw(); err != nil {
			log.Printf("frame %d: %v", h.drawn, err)
		}
		if h.drawn < h.frames {
			h.surface.RequestRedraw()
		}
	default:
		if _, err := h.surface.HandleEvent(ev); err != nil {
			log.Printf("event %v: %v", ev.Kind, err)
		}
	}
}

func (h *hello) draw() error {
	s := h.surface
	w, hh := s.Size()

	s.Fill(ggsurface.RGB8(0x1e, 0x1e, 0x2e))
	s.Background(gradient(4, 64), &ggsurface.Paint{Op: ggsurface.OpOver, Opacity: 0.6, Quality: ggsurface.QualityBilinear})

	badge := swatch(48, ggsurface.HSL(float64(h.drawn*24%360), 0.7, 0.6))
	for i := 0; i < 4; i++ {
		t := ggsurface.Rotate(float64(i) * 0.3)
		if i%2 == 1 {
			t = ggsurface.Shear(0.25*float64(i), 0)
		}
		s.Blit(40+i*70, hh-90, badge, nil, t, nil)
	}

	title := ggsurface.DefaultTextParams()
	title.Align = text.AlignCenter
	title.Attrs.Weight = text.WeightBold
	title.Height = float32(hh) / 2
	if err := s.DrawText(h.message, 0, float32(hh)/3, 40, &title); err != nil {
		return err
	}

	footer := fmt.Sprintf("ggsurface %s  %dx%d  frame %d", ggsurface.Version, w, hh, h.drawn)
	if err := s.Text(footer, 8, float32(hh)-24, 14, ggsurface.RGB(0.7, 0.7, 0.75)); err != nil {
		return err
	}

	if err := s.Present(); err != nil {
		return err
	}
	h.drawn++
	h.last = s.Renderer().Snapshot()
	return nil
}

func (h *hello) close() error {
	if h.surface == nil {
		return nil
	}
	err := h.surface.Close()
	h.surface = nil
	return err
}

// gradient returns a w×h vertical gradient tile.
func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	top, bottom := ggsurface.RGB8(0x31, 0x32, 0x44), ggsurface.RGB8(0x11, 0x11, 0x1b)
	for y := 0; y < h; y++ {
		c := top.Lerp(bottom, float64(y)/float64(h-1)).Premul()
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// swatch returns a size×size square of c with a one pixel white border.
func swatch(size int, c ggsurface.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	fill := c.Premul()
	border := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if x == 0 || y == 0 || x == size-1 || y == size-1 {
				img.SetRGBA(x, y, border)
			} else {
				img.SetRGBA(x, y, fill)
			}
		}
	}
	return img
}
