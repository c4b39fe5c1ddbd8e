package ggsurface

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/gogpu/ggsurface/gpu"
)

func TestPresentErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		cause     error
		wantFatal bool
	}{
		{"surface lost", gpu.ErrSurfaceLost, false},
		{"wrapped surface lost", fmt.Errorf("acquire: %w", gpu.ErrSurfaceLost), false},
		{"device lost", gpu.ErrDeviceLost, true},
		{"wrapped device lost", fmt.Errorf("%w: submit: %w", gpu.ErrDeviceLost, errors.New("timeout")), true},
		{"other", errors.New("frame too large"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := error(newPresentError(tt.cause))
			if !errors.Is(err, ErrPresent) {
				t.Error("does not match ErrPresent")
			}
			if !errors.Is(err, tt.cause) {
				t.Error("does not match its cause")
			}
			if got := IsDeviceLost(err); got != tt.wantFatal {
				t.Errorf("IsDeviceLost = %v, want %v", got, tt.wantFatal)
			}
			wantKind := "transient"
			if tt.wantFatal {
				wantKind = "fatal"
			}
			if !strings.Contains(err.Error(), wantKind) {
				t.Errorf("Error() = %q, want it to mention %q", err.Error(), wantKind)
			}
		})
	}
}

func TestIsDeviceLostThroughWrapping(t *testing.T) {
	err := fmt.Errorf("frame 12: %w", newPresentError(gpu.ErrDeviceLost))
	if !IsDeviceLost(err) {
		t.Error("wrapped fatal PresentError not detected")
	}
	if IsDeviceLost(gpu.ErrDeviceLost) {
		t.Error("bare gpu error reported as a fatal PresentError")
	}
	if IsDeviceLost(nil) {
		t.Error("nil reported as device lost")
	}
}
