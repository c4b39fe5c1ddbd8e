// Command ggsurface-windows opens a main window and spawns a child window
// on every key press, drawing all of them through one ggsurface.Manager.
// Surfaces are rebuilt when the application is suspended and resumed or
// the GPU device is lost.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"log/slog"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/ggsurface"
	"github.com/gogpu/ggsurface/platform"
	"github.com/gogpu/ggsurface/platform/headless"
)

// spawnChild is posted to the main window to open a child window.
type spawnChild struct{}

func main() {
	var (
		bgPath   = flag.String("background", "", "background image (png, jpeg, bmp, webp); empty draws a checkerboard")
		backend  = flag.String("backend", "", "presenter backend (gpu, software); empty picks automatically")
		noWindow = flag.Bool("headless", false, "render without windows")
		children = flag.Int("children", 2, "child windows spawned at start with -headless")
		frames   = flag.Int("frames", 8, "frames to render with -headless")
		output   = flag.String("output", "window-%d.png", "output file pattern for -headless")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	ggsurface.SetLogger(logger)
	setToolkitLogger(logger)

	bg, err := loadBackground(*bgPath)
	if err != nil {
		log.Fatalf("background: %v", err)
	}

	var opts []ggsurface.Option
	switch {
	case *backend != "":
		opts = append(opts, ggsurface.WithBackendName(*backend))
	case *noWindow:
		opts = append(opts, ggsurface.WithBackend(ggsurface.SoftwareBackend()))
	}

	app := &windows{m: ggsurface.NewManager(ggsurface.DefaultConfig(opts...)), background: bg}

	var runner platform.Runner
	if *noWindow {
		runner = headless.New(headless.WithMaxFrames(*frames))
		app.spawnAtStart = *children
	} else {
		r, ok := desktopRunner()
		if !ok {
			log.Fatal("no desktop toolkit on this platform; use -headless")
		}
		runner = r
	}

	ggsurface.StopUnwind(func() {
		if err := runner.Run(app); err != nil {
			log.Fatalf("run: %v", err)
		}
	})
	if app.err != nil {
		log.Fatal(app.err)
	}

	if *noWindow {
		for i, id := range app.m.IDs() {
			s, _ := app.m.Get(id)
			img := s.Renderer().Snapshot()
			if img == nil {
				continue
			}
			path := fmt.Sprintf(*output, i)
			if err := ggsurface.SavePNG(path, img); err != nil {
				log.Fatalf("Failed to save: %v", err)
			}
			log.Printf("%s saved to %s", s.Window().Title(), path)
		}
	}
	if err := app.m.CloseAll(); err != nil {
		log.Printf("close: %v", err)
	}
}

type windows struct {
	m            *ggsurface.Manager
	background   image.Image
	main         platform.WindowID
	spawnAtStart int
	spawned      int
	err          error
}

func (a *windows) Resumed(loop platform.ActiveLoop) {
	if a.main != 0 {
		if err := a.m.Resume(loop); err != nil {
			log.Printf("resume: %v", err)
		}
		a.redrawAll()
		a.trackMain()
		return
	}

	s, err := a.m.Open(loop, "Hello, world!", 1280, 720, nil)
	if err != nil {
		a.err = err
		loop.Exit()
		return
	}
	a.main = s.ID()
	s.RequestRedraw()
	for i := 0; i < a.spawnAtStart; i++ {
		loop.Post(a.main, spawnChild{})
	}
}

func (a *windows) Suspended(platform.ActiveLoop) {
	if err := a.m.Suspend(); err != nil {
		log.Printf("suspend: %v", err)
	}
}

func (a *windows) WindowEvent(loop platform.ActiveLoop, id platform.WindowID, ev platform.Event) {
	a.trackMain()
	switch ev.Kind {
	case platform.EventCloseRequested:
		if id == a.main {
			loop.Exit()
			return
		}
		_, _ = a.m.Dispatch(id, ev)
	case platform.EventKeyPressed:
		a.spawn(loop)
	case platform.EventUser:
		if _, ok := ev.Value.(spawnChild); ok {
			a.spawn(loop)
		}
	case platform.EventRedrawRequested:
		a.draw(loop, id)
	default:
		if _, err := a.m.Dispatch(id, ev); err != nil {
			log.Printf("%s: %v", id, err)
		}
	}
}

// spawn opens a child of the main window. Toolkits without child windows
// get a top-level window instead.
func (a *windows) spawn(loop platform.ActiveLoop) {
	a.trackMain()
	parent := a.main
	a.spawned++
	title := fmt.Sprintf("Child Window %d", a.spawned)
	s, err := a.m.Open(loop, title, 100, 100, func(attrs *platform.WindowAttributes) {
		attrs.Parent = parent
	})
	if err != nil {
		log.Printf("child window: %v; opening a top-level window", err)
		s, err = a.m.Open(loop, title, 100, 100, nil)
		if err != nil {
			log.Printf("window: %v", err)
			return
		}
	}
	s.RequestRedraw()
}

func (a *windows) draw(loop platform.ActiveLoop, id platform.WindowID) {
	s, ok := a.m.Get(id)
	if !ok {
		return
	}
	s.Background(a.background, &ggsurface.Paint{Opacity: 1, Quality: ggsurface.QualityBilinear})

	params := ggsurface.DefaultTextParams()
	params.Color = ggsurface.Black
	size := float32(60)
	if id != a.main {
		size = 14
	}
	if err := s.DrawText(s.Window().Title(), 20, 20, size, &params); err != nil {
		log.Printf("%s: %v", id, err)
	}

	if err := a.m.Present(loop, id); err != nil {
		log.Printf("%s: %v", id, err)
		return
	}
	if rebuilt, ok := a.m.Get(id); ok {
		rebuilt.RequestRedraw()
	}
	a.trackMain()
}

// trackMain follows the main window across rebuilds, which change ids.
// The main window is always the first one opened.
func (a *windows) trackMain() {
	if ids := a.m.IDs(); len(ids) > 0 {
		a.main = ids[0]
	}
}

func (a *windows) redrawAll() {
	for _, id := range a.m.IDs() {
		if s, ok := a.m.Get(id); ok {
			s.RequestRedraw()
		}
	}
}

func loadBackground(path string) (image.Image, error) {
	if path == "" {
		return checkerboard(8), nil
	}
	f, err := os.Open(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// checkerboard returns an n×n board of single-pixel cells; the surface
// stretches it over the window.
func checkerboard(n int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	light, dark := ggsurface.RGB8(0xee, 0xe8, 0xd5).Premul(), ggsurface.RGB8(0xd3, 0xc6, 0xaa).Premul()
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if (x+y)%2 == 0 {
				img.SetRGBA(x, y, light)
			} else {
				img.SetRGBA(x, y, dark)
			}
		}
	}
	return img
}
