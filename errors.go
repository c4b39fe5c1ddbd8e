package ggsurface

import (
	"errors"
	"fmt"

	"github.com/gogpu/ggsurface/gpu"
)

// Sentinel errors. Operations wrap them with the underlying cause, so use
// errors.Is to test for a kind.
var (
	// ErrWindowCreation is returned when the toolkit refuses to create a
	// window.
	ErrWindowCreation = errors.New("ggsurface: window creation failed")

	// ErrSurfaceInit is returned when the canvas or the presenter of a new
	// surface cannot be created.
	ErrSurfaceInit = errors.New("ggsurface: surface initialization failed")

	// ErrTextPrepare is returned when glyphs cannot be rasterized or
	// uploaded for a DrawText call. The text is missing from that frame.
	ErrTextPrepare = errors.New("ggsurface: text preparation failed")

	// ErrPresent is matched by every PresentError.
	ErrPresent = errors.New("ggsurface: present failed")

	// ErrSurfaceClosed is returned by operations on a closed Surface.
	ErrSurfaceClosed = errors.New("ggsurface: surface closed")
)

// PresentError reports a failed Present.
//
// A transient error means the frame was dropped and the next one may
// succeed. A fatal error means the GPU device is gone: the surface must be
// closed and built again, as after a suspend.
//
// Either way the frame's text is discarded: the text layers drawn since the
// last Present go back to the pool, so the next frame starts empty instead
// of stacking its text on the dropped one.
type PresentError struct {
	Fatal bool
	Err   error
}

func newPresentError(err error) *PresentError {
	return &PresentError{Fatal: errors.Is(err, gpu.ErrDeviceLost), Err: err}
}

func (e *PresentError) Error() string {
	kind := "transient"
	if e.Fatal {
		kind = "fatal"
	}
	return fmt.Sprintf("ggsurface: present failed (%s): %v", kind, e.Err)
}

// Unwrap makes a PresentError match both ErrPresent and its cause.
func (e *PresentError) Unwrap() []error {
	return []error{ErrPresent, e.Err}
}

// IsDeviceLost reports whether err is a fatal PresentError.
func IsDeviceLost(err error) bool {
	var pe *PresentError
	return errors.As(err, &pe) && pe.Fatal
}
