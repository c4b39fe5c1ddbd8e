//go:build !((darwin && !ios) || windows || (linux && !android) || freebsd || openbsd || dragonfly)

package main

import (
	"log/slog"

	"github.com/gogpu/ggsurface/platform"
)

func desktopRunner() (platform.Runner, bool) {
	return nil, false
}

func setToolkitLogger(*slog.Logger) {}
