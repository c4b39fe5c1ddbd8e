// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package text

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/fontscan"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// fallbackFamily is the family of the embedded Go Regular face that every
// font system carries as its last resort.
const fallbackFamily = "Go"

// genericFallbacks are appended to every query so fontscan can substitute
// a system face when the requested families lack a rune.
var genericFallbacks = []string{fallbackFamily, "sans-serif"}

// SystemOptions configures NewFontSystem.
type SystemOptions struct {
	// SystemFonts also indexes the fonts installed on the machine.
	// Scanning is slow the first time; the index is cached in CacheDir.
	SystemFonts bool

	// CacheDir stores the system font index. Empty uses os.UserCacheDir.
	CacheDir string
}

// FontSystem resolves faces for runes. It is built once from a set of
// sources and is immutable afterwards; register more fonts by building a
// new system from the extended set.
//
// A FontSystem is not safe for concurrent use: the go-text font map keeps
// the current query as state.
type FontSystem struct {
	fontMap  *fontscan.FontMap
	families []string
	loaded   int
	failed   int
	primary  *font.Face
}

// NewFontSystem builds a font system from sources. Sources that fail to
// load are logged and skipped. The embedded Go Regular face is always
// registered after the sources, so the system can shape Latin text even
// when nothing else is available.
func NewFontSystem(sources []Source, opts SystemOptions) (*FontSystem, error) {
	fs := &FontSystem{fontMap: fontscan.NewFontMap(nil)}

	var errs []error
	for i, src := range sources {
		if err := fs.add(src, fmt.Sprintf("source-%d", i)); err != nil {
			fs.failed++
			errs = append(errs, err)
			slogger().Warn("text: skipping font source", "source", src.String(), "err", err)
			continue
		}
		fs.loaded++
	}

	if opts.SystemFonts {
		dir := opts.CacheDir
		if dir == "" {
			dir, _ = os.UserCacheDir()
		}
		if err := fs.fontMap.UseSystemFonts(dir); err != nil {
			slogger().Warn("text: system fonts unavailable", "err", err)
		}
	}

	if err := fs.addFallback(); err != nil {
		errs = append(errs, err)
		return nil, fmt.Errorf("%w: %w", ErrNoFonts, errors.Join(errs...))
	}

	fs.setQuery(Attrs{})
	fs.primary = fs.fontMap.ResolveFace('a')
	if fs.primary == nil {
		return nil, ErrNoFonts
	}
	slogger().Debug("text: font system built", "sources", fs.loaded, "failed", fs.failed, "families", strings.Join(fs.families, ","))
	return fs, nil
}

// add registers one source with the font map and remembers its family.
func (fs *FontSystem) add(src Source, fileID string) error {
	data, err := src.load()
	if err != nil {
		return err
	}
	if src.IsFile() {
		fileID = src.Path()
	}
	family := familyName(data)
	if err := fs.fontMap.AddFont(bytes.NewReader(data), fileID, ""); err != nil {
		return fmt.Errorf("text: %s: %w", src.String(), err)
	}
	if family != "" && !fs.hasFamily(family) {
		fs.families = append(fs.families, family)
	}
	return nil
}

func (fs *FontSystem) addFallback() error {
	if err := fs.fontMap.AddFont(bytes.NewReader(goregular.TTF), "embedded-goregular", ""); err != nil {
		return fmt.Errorf("text: embedded fallback font: %w", err)
	}
	return nil
}

func (fs *FontSystem) hasFamily(name string) bool {
	for _, f := range fs.families {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

// familyName reads the family name from the font's name table.
// Collections and unreadable fonts return "".
func familyName(data []byte) string {
	f, err := sfnt.Parse(data)
	if err != nil {
		return ""
	}
	name, err := f.Name(nil, sfnt.NameIDFamily)
	if err != nil {
		return ""
	}
	return name
}

// Families returns the family names of the registered sources in
// registration order. The embedded fallback is not listed.
func (fs *FontSystem) Families() []string {
	out := make([]string, len(fs.families))
	copy(out, fs.families)
	return out
}

// Loaded returns how many sources were registered successfully.
func (fs *FontSystem) Loaded() int { return fs.loaded }

// Failed returns how many sources were skipped.
func (fs *FontSystem) Failed() int { return fs.failed }

// setQuery points the font map at the families for attrs. The requested
// family comes first, then the registered families, then the generic
// fallbacks.
func (fs *FontSystem) setQuery(a Attrs) {
	families := make([]string, 0, len(fs.families)+len(genericFallbacks)+1)
	if a.Family != "" {
		families = append(families, a.Family)
	}
	families = append(families, fs.families...)
	families = append(families, genericFallbacks...)
	fs.fontMap.SetQuery(fontscan.Query{Families: families, Aspect: a.aspect()})
}

// Face returns the face used for rune r with the given attributes.
func (fs *FontSystem) Face(a Attrs, r rune) *font.Face {
	fs.setQuery(a)
	if f := fs.fontMap.ResolveFace(r); f != nil {
		return f
	}
	return fs.primary
}

// fontMap returns the map configured for attrs, for use by the segmenter.
func (fs *FontSystem) mapFor(a Attrs) *fontscan.FontMap {
	fs.setQuery(a)
	return fs.fontMap
}
