//go:build (darwin && !ios) || windows || (linux && !android) || freebsd || openbsd || dragonfly

package main

import (
	"log/slog"

	"github.com/gogpu/ggsurface/platform"
	"github.com/gogpu/ggsurface/platform/glfw"
)

func desktopRunner() (platform.Runner, bool) {
	return glfw.New(), true
}

func setToolkitLogger(l *slog.Logger) {
	glfw.SetLogger(l)
}
