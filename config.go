package ggsurface

import (
	"runtime"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/ggsurface/text"
)

// Platform holds the per-platform window defaults.
type Platform struct {
	// GOOS is the operating system the defaults were resolved for.
	GOOS string

	// Visible makes new windows visible at creation.
	Visible bool

	// Resizable lets the user resize new windows. On android the host
	// owns the window size, so it is off there.
	Resizable bool
}

// PlatformFor returns the window defaults for goos.
func PlatformFor(goos string) Platform {
	p := Platform{GOOS: goos, Visible: true, Resizable: true}
	if goos == "android" {
		p.Resizable = false
	}
	return p
}

// FormatFor returns the preferred surface format for goos.
func FormatFor(goos string) gputypes.TextureFormat {
	if goos == "android" {
		return gputypes.TextureFormatRGBA8UnormSrgb
	}
	return gputypes.TextureFormatBGRA8UnormSrgb
}

// Config configures windows and renderers.
type Config struct {
	// Format is the texture format of window surfaces.
	Format gputypes.TextureFormat

	// Backend creates presenters. Nil means AutoBackend.
	Backend PresenterFactory

	// Platform holds window defaults.
	Platform Platform

	// SystemFonts adds the fonts installed on the system to the font
	// system built for text.
	SystemFonts bool

	// FontCacheDir is where the system font index is cached. Empty picks
	// the user cache directory.
	FontCacheDir string

	// Fonts are registered with every renderer at construction.
	Fonts []text.Source

	// GlyphCacheSize is the soft limit of cached glyph masks.
	GlyphCacheSize int

	// AtlasSize and MaxAtlasSize bound the glyph atlas edge in texels.
	AtlasSize    int
	MaxAtlasSize int
}

// Option configures a Config.
//
// Example:
//
//	cfg := ggsurface.DefaultConfig(
//		ggsurface.WithBackend(ggsurface.SoftwareBackend()),
//		ggsurface.WithFonts(text.MustSourceFromBytes(myFont)),
//	)
type Option func(*Config)

// DefaultConfig returns the configuration for the running platform with
// opts applied.
func DefaultConfig(opts ...Option) Config {
	cfg := Config{
		Format:         FormatFor(runtime.GOOS),
		Platform:       PlatformFor(runtime.GOOS),
		GlyphCacheSize: text.DefaultGlyphCacheSize,
		AtlasSize:      256,
		MaxAtlasSize:   4096,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithFormat sets the surface texture format.
func WithFormat(f gputypes.TextureFormat) Option {
	return func(c *Config) {
		c.Format = f
	}
}

// WithBackend sets the presenter factory.
func WithBackend(f PresenterFactory) Option {
	return func(c *Config) {
		c.Backend = f
	}
}

// WithBackendName selects a registered backend by name.
func WithBackendName(name string) Option {
	return func(c *Config) {
		c.Backend = NamedBackend(name)
	}
}

// WithPlatform sets the window defaults and surface format for goos.
func WithPlatform(goos string) Option {
	return func(c *Config) {
		c.Platform = PlatformFor(goos)
		c.Format = FormatFor(goos)
	}
}

// WithSystemFonts enables or disables system font discovery.
func WithSystemFonts(enabled bool) Option {
	return func(c *Config) {
		c.SystemFonts = enabled
	}
}

// WithFonts adds font sources registered with every renderer.
func WithFonts(sources ...text.Source) Option {
	return func(c *Config) {
		c.Fonts = append(c.Fonts, sources...)
	}
}

// WithAtlasSize sets the initial and maximum glyph atlas edge.
func WithAtlasSize(initial, maxSize int) Option {
	return func(c *Config) {
		c.AtlasSize, c.MaxAtlasSize = initial, maxSize
	}
}

// backend returns the configured factory or AutoBackend.
func (c *Config) backend() PresenterFactory {
	if c.Backend != nil {
		return c.Backend
	}
	return AutoBackend()
}

func (c *Config) fontOptions() text.SystemOptions {
	return text.SystemOptions{SystemFonts: c.SystemFonts, CacheDir: c.FontCacheDir}
}
