package ggsurface

import (
	"fmt"
	"image"
	"strings"
	"testing"

	"github.com/gogpu/ggsurface/platform"
	"github.com/gogpu/ggsurface/platform/headless"
	"github.com/gogpu/ggsurface/text"
)

// eventLog records lifecycle events in order.
type eventLog struct {
	events []string
}

func (l *eventLog) add(format string, args ...any) {
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

func (l *eventLog) String() string { return strings.Join(l.events, ", ") }

func (l *eventLog) index(event string) int {
	for i, e := range l.events {
		if e == event {
			return i
		}
	}
	return -1
}

// fakeBackend creates fakePresenters and can be told to fail.
type fakeBackend struct {
	log        *eventLog
	failNew    error
	presentErr error
	presenters []*fakePresenter
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{log: &eventLog{}}
}

func (b *fakeBackend) NewPresenter(win platform.Window, cfg PresenterConfig) (Presenter, error) {
	if b.failNew != nil {
		return nil, b.failNew
	}
	p := &fakePresenter{b: b, window: win.ID(), cfg: cfg}
	b.presenters = append(b.presenters, p)
	b.log.add("presenter created %s", win.ID())
	return p, nil
}

func (b *fakeBackend) last() *fakePresenter {
	return b.presenters[len(b.presenters)-1]
}

type fakePresenter struct {
	b        *fakeBackend
	window   platform.WindowID
	cfg      PresenterConfig
	layers   []*fakeLayer
	last     []TextLayer
	presents int
	resizes  int
	released bool
}

func (p *fakePresenter) Resize(width, height int) error {
	p.cfg.Width, p.cfg.Height = width, height
	p.resizes++
	return nil
}

func (p *fakePresenter) NewTextLayer() (TextLayer, error) {
	l := &fakeLayer{p: p}
	p.layers = append(p.layers, l)
	return l, nil
}

func (p *fakePresenter) Present(frame *image.RGBA, layers []TextLayer) error {
	if err := p.b.presentErr; err != nil {
		p.b.presentErr = nil
		return err
	}
	if frame.Rect.Dx() != p.cfg.Width || frame.Rect.Dy() != p.cfg.Height {
		return fmt.Errorf("frame %v does not match presenter %dx%d", frame.Rect, p.cfg.Width, p.cfg.Height)
	}
	p.last = append(p.last[:0], layers...)
	p.presents++
	return nil
}

func (p *fakePresenter) Release() {
	p.released = true
	p.b.log.add("presenter released %s", p.window)
}

type fakeLayer struct {
	p        *fakePresenter
	prepares int
	quads    int
	released bool
}

func (l *fakeLayer) Prepare(_ *text.Atlas, quads []text.Quad) error {
	l.prepares++
	l.quads = len(quads)
	return nil
}

func (l *fakeLayer) Release() { l.released = true }

// newTestSurface opens a w×h surface on a fresh headless loop.
func newTestSurface(t *testing.T, backend PresenterFactory, w, h int) (*Surface, *headless.Loop) {
	t.Helper()
	loop := headless.New()
	s, err := NewSurface(loop, DefaultConfig(WithBackend(backend)), "test", w, h)
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, loop
}

func headlessWindow(t *testing.T, loop *headless.Loop, id platform.WindowID) *headless.Window {
	t.Helper()
	w, ok := loop.Window(id)
	if !ok {
		t.Fatalf("window %s not found", id)
	}
	return w
}
