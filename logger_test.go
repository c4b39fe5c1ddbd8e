package ggsurface

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/gogpu/ggsurface/gpu"
	"github.com/gogpu/ggsurface/platform/headless"
	"github.com/gogpu/ggsurface/text"
)

func TestNopHandler(t *testing.T) {
	h := nopHandler{}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if h.Enabled(context.Background(), level) {
			t.Errorf("nopHandler.Enabled(%v) = true, want false", level)
		}
	}
	if err := h.Handle(context.Background(), slog.Record{}); err != nil {
		t.Errorf("nopHandler.Handle() = %v, want nil", err)
	}
	if _, ok := h.WithAttrs([]slog.Attr{slog.String("key", "val")}).(nopHandler); !ok {
		t.Error("WithAttrs did not return a nopHandler")
	}
	if _, ok := h.WithGroup("group").(nopHandler); !ok {
		t.Error("WithGroup did not return a nopHandler")
	}
}

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger should not be enabled for %v", level)
		}
	}
}

func TestSetLoggerPropagates(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	SetLogger(custom)

	if Logger() != custom {
		t.Error("Logger() did not return the custom logger")
	}
	if text.Logger() != custom {
		t.Error("SetLogger did not reach the text package")
	}
	if gpu.Logger() != custom {
		t.Error("SetLogger did not reach the gpu package")
	}

	s, _ := newTestSurface(t, SoftwareBackend(), 8, 8)
	s.Fill(Red)
	if err := s.Present(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "ggsurface:") {
		t.Errorf("no surface log output captured: %q", buf.String())
	}
}

func TestSetLoggerNilRestoresSilent(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	SetLogger(slog.Default())
	SetLogger(nil)

	l := Logger()
	if l == nil {
		t.Fatal("SetLogger(nil) should set nop logger, not nil")
	}
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) should produce a disabled logger")
	}
}

type loggingBackend struct {
	fakeBackend
	logger *slog.Logger
}

func (b *loggingBackend) SetLogger(l *slog.Logger) { b.logger = l }

func TestSetLoggerReachesRegisteredBackends(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() {
		SetLogger(orig)
		UnregisterBackend("logging-test")
	})

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	SetLogger(custom)

	b := &loggingBackend{fakeBackend: *newFakeBackend()}
	RegisterBackend("logging-test", 1, b, nil)
	if b.logger != custom {
		t.Error("RegisterBackend did not hand over the current logger")
	}

	other := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	SetLogger(other)
	if b.logger != other {
		t.Error("SetLogger did not reach a registered backend")
	}
}

func TestLoggerConcurrentAccess(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var wg sync.WaitGroup
	const goroutines = 50

	for range goroutines {
		wg.Add(2)
		go func() {
			defer wg.Done()
			l := Logger()
			if l == nil {
				t.Error("Logger() returned nil during concurrent access")
				return
			}
			l.Debug("concurrent read")
		}()
		go func() {
			defer wg.Done()
			SetLogger(slog.Default())
			SetLogger(nil)
		}()
	}
	wg.Wait()
}

func TestManagerLogsSkippedFrames(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	b := newFakeBackend()
	m := NewManager(DefaultConfig(WithBackend(b)))
	defer m.CloseAll()
	loop := headless.New()
	s, err := m.Open(loop, "w", 4, 4, nil)
	if err != nil {
		t.Fatal(err)
	}
	b.presentErr = gpu.ErrSurfaceLost
	if err := m.Present(loop, s.ID()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "frame skipped") {
		t.Errorf("skipped frame not logged: %q", buf.String())
	}
}

func BenchmarkLoggerDisabledLog(b *testing.B) {
	l := Logger()
	b.ReportAllocs()
	for b.Loop() {
		l.Debug("message", "key", "value")
	}
}
