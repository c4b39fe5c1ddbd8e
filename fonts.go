package ggsurface

import (
	"github.com/gogpu/ggsurface/text"
)

// fontRegistry accumulates font sources and builds the font system from
// them lazily.
type fontRegistry struct {
	sources []text.Source
	opts    text.SystemOptions

	system *text.FontSystem
	stale  bool
	builds int

	// build is text.NewFontSystem; tests replace it to count builds.
	build func([]text.Source, text.SystemOptions) (*text.FontSystem, error)
}

func newFontRegistry(sources []text.Source, opts text.SystemOptions) *fontRegistry {
	return &fontRegistry{
		sources: append([]text.Source(nil), sources...),
		opts:    opts,
		stale:   true,
		build:   text.NewFontSystem,
	}
}

// add appends sources. With rebuild the font system is rebuilt now from
// every source registered so far; otherwise the next text draw does it.
func (r *fontRegistry) add(sources []text.Source, rebuild bool) error {
	r.sources = append(r.sources, sources...)
	if len(sources) > 0 {
		r.stale = true
	}
	if !rebuild {
		return nil
	}
	return r.rebuild()
}

// fonts returns the current font system, building it first when it was
// never built or sources were added since the last build.
func (r *fontRegistry) fonts() (*text.FontSystem, error) {
	if r.system == nil || r.stale {
		if err := r.rebuild(); err != nil {
			return nil, err
		}
	}
	return r.system, nil
}

func (r *fontRegistry) rebuild() error {
	fs, err := r.build(r.sources, r.opts)
	if err != nil {
		return err
	}
	r.system = fs
	r.stale = false
	r.builds++
	slogger().Debug("ggsurface: font system built",
		"sources", len(r.sources), "loaded", fs.Loaded(), "failed", fs.Failed(), "build", r.builds)
	return nil
}
