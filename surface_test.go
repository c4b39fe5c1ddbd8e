package ggsurface

import (
	"errors"
	"fmt"
	"image"
	"testing"

	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/ggsurface/gpu"
	"github.com/gogpu/ggsurface/platform"
	"github.com/gogpu/ggsurface/platform/headless"
	"github.com/gogpu/ggsurface/text"
)

func TestEndToEnd200x100(t *testing.T) {
	s, _ := newTestSurface(t, SoftwareBackend(), 200, 100)

	if w, h := s.Size(); w != 200 || h != 100 {
		t.Fatalf("Size() = %dx%d, want 200x100", w, h)
	}
	s.Fill(White)
	if err := s.DrawText("Hi", 10, 10, 20, nil); err != nil {
		t.Fatalf("DrawText: %v", err)
	}
	if err := s.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if got := s.Renderer().TextUsed(); got != 0 {
		t.Errorf("TextUsed() after Present = %d, want 0", got)
	}
}

func TestPresentedTextCoversCanvas(t *testing.T) {
	s, _ := newTestSurface(t, SoftwareBackend(), 120, 60)
	s.Fill(White)
	if err := s.Text("Hi", 10, 10, 24, Black); err != nil {
		t.Fatalf("Text: %v", err)
	}
	if err := s.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}

	img := s.Renderer().Snapshot()
	if img == nil {
		t.Fatal("software presenter returned no snapshot")
	}
	dark := 0
	for y := 0; y < 60; y++ {
		for x := 0; x < 120; x++ {
			c := img.RGBAAt(x, y)
			if c.R < 128 {
				dark++
				if x < 10 || y < 10 {
					t.Fatalf("glyph pixel (%d, %d) outside the text origin", x, y)
				}
			}
		}
	}
	if dark == 0 {
		t.Error("no text pixels in the presented frame")
	}
	if c := img.RGBAAt(110, 55); c != White.Premul() {
		t.Errorf("canvas pixel away from text = %v, want white", c)
	}
}

func TestTextLayerPoolGrowth(t *testing.T) {
	b := newFakeBackend()
	s, _ := newTestSurface(t, b, 100, 100)
	r := s.Renderer()

	draw := func(n int) {
		t.Helper()
		for i := 0; i < n; i++ {
			if err := s.DrawText("x", 0, float32(i*10), 12, nil); err != nil {
				t.Fatalf("DrawText #%d: %v", i, err)
			}
		}
	}

	draw(3)
	if r.TextPoolSize() != 3 || r.TextUsed() != 3 {
		t.Fatalf("after 3 draws: pool=%d used=%d", r.TextPoolSize(), r.TextUsed())
	}
	if err := s.Present(); err != nil {
		t.Fatal(err)
	}
	p := b.last()
	if len(p.last) != 3 {
		t.Fatalf("presented %d layers, want 3", len(p.last))
	}
	for i, l := range p.last {
		if l != TextLayer(p.layers[i]) {
			t.Errorf("layer %d presented out of call order", i)
		}
	}

	draw(2)
	if r.TextPoolSize() != 3 || r.TextUsed() != 2 {
		t.Errorf("after 2 draws: pool=%d used=%d, want 3 and 2", r.TextPoolSize(), r.TextUsed())
	}
	if err := s.Present(); err != nil {
		t.Fatal(err)
	}

	draw(5)
	if r.TextPoolSize() != 5 {
		t.Errorf("pool = %d after 5 draws, want 5", r.TextPoolSize())
	}
}

func TestUsedCountResetReusesFirstLayer(t *testing.T) {
	b := newFakeBackend()
	s, _ := newTestSurface(t, b, 64, 64)

	for frame := 0; frame < 3; frame++ {
		if err := s.DrawText("again", 0, 0, 12, nil); err != nil {
			t.Fatal(err)
		}
		if err := s.Present(); err != nil {
			t.Fatal(err)
		}
	}
	p := b.last()
	if len(p.layers) != 1 {
		t.Fatalf("pool grew to %d layers across frames, want 1", len(p.layers))
	}
	if p.layers[0].prepares != 3 {
		t.Errorf("layer 0 prepared %d times, want 3", p.layers[0].prepares)
	}
}

func TestPresentWithoutText(t *testing.T) {
	b := newFakeBackend()
	s, _ := newTestSurface(t, b, 16, 16)
	s.Fill(Red)
	if err := s.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if b.last().presents != 1 || len(b.last().last) != 0 {
		t.Errorf("presents=%d layers=%d", b.last().presents, len(b.last().last))
	}
}

func TestFontRegistryBuildsOnce(t *testing.T) {
	s, _ := newTestSurface(t, newFakeBackend(), 100, 50)
	r := s.Renderer()

	if err := s.LoadFonts([]text.Source{text.MustSourceFromBytes(gomono.TTF)}, false); err != nil {
		t.Fatal(err)
	}
	if r.fonts.builds != 0 {
		t.Fatalf("deferred LoadFonts built the font system")
	}
	params := DefaultTextParams()
	params.Attrs.Family = "Go Mono"
	for i := 0; i < 3; i++ {
		if err := s.DrawText("mono", 0, 0, 12, &params); err != nil {
			t.Fatalf("DrawText #%d: %v", i, err)
		}
	}
	if r.fonts.builds != 1 {
		t.Errorf("font system built %d times, want 1", r.fonts.builds)
	}
	fs, _ := r.FontSystem()
	if fs.Loaded() != 1 {
		t.Errorf("font system loaded %d sources, want 1", fs.Loaded())
	}

	if err := s.LoadFonts([]text.Source{text.MustSourceFromBytes(goregular.TTF)}, true); err != nil {
		t.Fatal(err)
	}
	if r.fonts.builds != 2 {
		t.Errorf("rebuild_now did not rebuild: builds=%d", r.fonts.builds)
	}
	if err := s.DrawText("x", 0, 0, 12, nil); err != nil {
		t.Fatal(err)
	}
	if r.fonts.builds != 2 {
		t.Errorf("DrawText rebuilt an up-to-date font system: builds=%d", r.fonts.builds)
	}
}

func TestFontBuildFailureIsTextPrepareError(t *testing.T) {
	s, _ := newTestSurface(t, newFakeBackend(), 32, 32)
	boom := errors.New("boom")
	s.Renderer().fonts.build = func([]text.Source, text.SystemOptions) (*text.FontSystem, error) {
		return nil, boom
	}
	err := s.DrawText("x", 0, 0, 12, nil)
	if !errors.Is(err, ErrTextPrepare) || !errors.Is(err, boom) {
		t.Errorf("DrawText = %v, want ErrTextPrepare wrapping the cause", err)
	}
	if s.Renderer().TextUsed() != 0 {
		t.Error("failed DrawText counted as used")
	}
}

func TestDefaultBoundsFollowMeasuredText(t *testing.T) {
	fs, err := text.NewFontSystem(nil, text.SystemOptions{})
	if err != nil {
		t.Fatal(err)
	}
	buf := text.NewBuffer(fs, text.Metrics{FontSize: 20, LineHeight: 30})
	buf.SetText("Hi", text.Attrs{}, text.ShapingAdvanced)
	buf.Shape()

	b := measuredBounds(buf, 10, 10, 1)
	w, _ := buf.Size()
	if b.Left != 10 || b.Top != 10 {
		t.Errorf("bounds origin = (%d, %d), want (10, 10)", b.Left, b.Top)
	}
	if b.Right < 10+int(w) || b.Right > 12+int(w) {
		t.Errorf("bounds right = %d, text width %v", b.Right, w)
	}
	if b.Bottom != 40 {
		t.Errorf("bounds bottom = %d, want one 30px line below 10", b.Bottom)
	}

	empty := text.NewBuffer(fs, text.Metrics{FontSize: 20, LineHeight: 30})
	empty.SetText("", text.Attrs{}, text.ShapingAdvanced)
	empty.Shape()
	if eb := measuredBounds(empty, 0, 0, 2); eb.Bottom != 60 {
		t.Errorf("empty text bottom = %d, want one scaled line (60)", eb.Bottom)
	}
}

func TestAtlasFullClearsAndRetries(t *testing.T) {
	loop := headless.New()
	cfg := DefaultConfig(WithBackend(SoftwareBackend()), WithAtlasSize(64, 64))
	s, err := NewSurface(loop, cfg, "atlas", 200, 100)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// Every frame uses new glyph sizes, so stale glyphs pile up until the
	// atlas has to be cleared, sometimes between the two calls of a frame.
	for frame := 0; frame < 10; frame++ {
		size := float32(12 + frame*4)
		if err := s.Text("a", 0, 0, size, Black); err != nil {
			t.Fatalf("frame %d: first Text: %v", frame, err)
		}
		if err := s.Text("b", 60, 0, size, Black); err != nil {
			t.Fatalf("frame %d: second Text: %v", frame, err)
		}
		if err := s.Present(); err != nil {
			t.Fatalf("frame %d: Present: %v", frame, err)
		}
	}
	if s.Renderer().atlas.Epoch() == 0 {
		t.Error("atlas was never cleared")
	}
}

func TestCloseReleasesRendererBeforeWindow(t *testing.T) {
	b := newFakeBackend()
	s, loop := newTestSurface(t, b, 50, 50)
	id := s.ID()
	headlessWindow(t, loop, id).OnClose(func() { b.log.add("window closed %s", id) })

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	released := b.log.index(fmt.Sprintf("presenter released %s", id))
	closed := b.log.index(fmt.Sprintf("window closed %s", id))
	if released < 0 || closed < 0 || released > closed {
		t.Errorf("close order = [%s], want presenter released before window closed", b.log)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
	if loop.Len() != 0 {
		t.Errorf("%d windows still open", loop.Len())
	}
}

func TestClosedSurface(t *testing.T) {
	b := newFakeBackend()
	s, _ := newTestSurface(t, b, 10, 10)
	if err := s.DrawText("x", 0, 0, 12, nil); err != nil {
		t.Fatal(err)
	}
	layer := b.last().layers[0]
	_ = s.Close()

	if !layer.released {
		t.Error("text layer not released on Close")
	}
	s.Fill(Red)
	s.Blit(0, 0, image.NewRGBA(image.Rect(0, 0, 1, 1)), nil, Identity(), nil)
	s.Background(image.NewRGBA(image.Rect(0, 0, 1, 1)), nil)
	s.RequestRedraw()

	for name, err := range map[string]error{
		"DrawText":  s.DrawText("x", 0, 0, 12, nil),
		"Text":      s.Text("x", 0, 0, 12, White),
		"Present":   s.Present(),
		"Resize":    s.Resize(5, 5),
		"LoadFonts": s.LoadFonts(nil, true),
	} {
		if !errors.Is(err, ErrSurfaceClosed) {
			t.Errorf("%s after Close = %v, want ErrSurfaceClosed", name, err)
		}
	}
	if _, err := s.HandleEvent(platform.Event{Kind: platform.EventResized, Width: 5, Height: 5}); !errors.Is(err, ErrSurfaceClosed) {
		t.Errorf("HandleEvent after Close = %v", err)
	}
	if s.Renderer() != nil {
		t.Error("Renderer() exposed after Close")
	}
}

func TestNewSurfaceClosesWindowOnRendererFailure(t *testing.T) {
	loop := headless.New()
	b := newFakeBackend()
	b.failNew = errors.New("no adapter")

	s, err := NewSurface(loop, DefaultConfig(WithBackend(b)), "fail", 40, 40)
	if s != nil || !errors.Is(err, ErrSurfaceInit) || !errors.Is(err, b.failNew) {
		t.Fatalf("NewSurface = %v, %v; want ErrSurfaceInit wrapping the cause", s, err)
	}
	if loop.Len() != 0 {
		t.Errorf("window left open after failed surface creation")
	}
}

func TestNewSurfaceWindowFailure(t *testing.T) {
	loop := headless.New()
	loop.FailNextWindow(errors.New("display gone"))
	_, err := NewSurface(loop, DefaultConfig(WithBackend(newFakeBackend())), "x", 10, 10)
	if !errors.Is(err, ErrWindowCreation) {
		t.Errorf("NewSurface = %v, want ErrWindowCreation", err)
	}
}

func TestHandleEventResizes(t *testing.T) {
	b := newFakeBackend()
	s, loop := newTestSurface(t, b, 30, 20)
	s.Fill(Red)

	handled, err := s.HandleEvent(platform.Event{Kind: platform.EventResized, Width: 60, Height: 40})
	if !handled || err != nil {
		t.Fatalf("HandleEvent(Resized) = %v, %v", handled, err)
	}
	if w, h := s.Size(); w != 60 || h != 40 {
		t.Errorf("Size() = %dx%d, want 60x40", w, h)
	}
	if b.last().cfg.Width != 60 || b.last().cfg.Height != 40 {
		t.Errorf("presenter not resized: %+v", b.last().cfg)
	}
	if c := s.Renderer().Canvas().At(0, 0); c.A != 0 {
		t.Errorf("canvas not cleared on resize: %v", c)
	}
	if headlessWindow(t, loop, s.ID()).Redraws() != 1 {
		t.Error("resize did not request a redraw")
	}
	if err := s.Present(); err != nil {
		t.Errorf("Present after resize: %v", err)
	}

	if handled, _ := s.HandleEvent(platform.Event{Kind: platform.EventResized}); !handled {
		t.Error("zero-size resize not consumed")
	}
	if w, _ := s.Size(); w != 60 {
		t.Error("zero-size resize changed the canvas")
	}
	if handled, _ := s.HandleEvent(platform.Event{Kind: platform.EventKeyPressed}); handled {
		t.Error("key event reported as handled")
	}
}

func TestSurfacePresentFailureKinds(t *testing.T) {
	b := newFakeBackend()
	s, _ := newTestSurface(t, b, 8, 8)
	if err := s.DrawText("x", 0, 0, 12, nil); err != nil {
		t.Fatal(err)
	}

	b.presentErr = gpu.ErrSurfaceLost
	err := s.Present()
	if !errors.Is(err, ErrPresent) || IsDeviceLost(err) {
		t.Errorf("surface lost = %v, want transient PresentError", err)
	}
	if s.Renderer().TextUsed() != 0 {
		t.Error("dropped frame kept its text layers in use")
	}

	b.presentErr = fmt.Errorf("submit: %w", gpu.ErrDeviceLost)
	if err := s.Present(); !IsDeviceLost(err) {
		t.Errorf("device lost = %v, want fatal PresentError", err)
	}
}

func TestSurfaceScaleFactor(t *testing.T) {
	loop := headless.New(headless.WithScaleFactor(2))
	s, err := NewSurface(loop, DefaultConfig(WithBackend(newFakeBackend())), "hidpi", 100, 50)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if w, h := s.Size(); w != 200 || h != 100 {
		t.Errorf("canvas = %dx%d, want physical 200x100", w, h)
	}
}
