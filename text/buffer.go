// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package text

import (
	"math"
	"strings"
	"unicode"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"
)

// unboundedWidth is the wrap width used when lines must not wrap.
const unboundedWidth = math.MaxInt32

// LayoutGlyph is one positioned glyph of a LayoutRun.
type LayoutGlyph struct {
	Face *Face
	ID   GlyphID

	// Size is the font size in pixels.
	Size float32

	// X is the pen position relative to the buffer's left edge.
	// Y is the offset from the run's baseline, positive downwards.
	X, Y float32

	Advance float32

	// Space reports whether the glyph shapes a whitespace rune.
	Space bool
}

// LayoutRun is one visual line of a shaped buffer.
type LayoutRun struct {
	// Paragraph is the index of the source line this run belongs to.
	Paragraph int

	RTL bool

	// LineTop is the top of the line box and LineY the baseline, both
	// relative to the buffer's top edge.
	LineTop    float32
	LineY      float32
	LineHeight float32

	// LineW is the width covered by the glyphs, trailing whitespace excluded.
	LineW float32

	Glyphs []LayoutGlyph

	last bool
}

type paragraph struct {
	text    []rune
	attrs   Attrs
	shaping Shaping
	align   Align
}

// Buffer holds text, shapes it, and lays it out in lines.
//
// Setters mark the buffer dirty; Shape redoes the layout only when needed.
// A Buffer is not safe for concurrent use.
type Buffer struct {
	fonts   *FontSystem
	metrics Metrics
	width   float32
	height  float32
	wrap    Wrap

	paras     []paragraph
	runs      []LayoutRun
	truncated bool
	dirty     bool
	shapes    int

	shaper  shaping.HarfbuzzShaper
	wrapper shaping.LineWrapper
	seg     shaping.Segmenter
}

// NewBuffer returns an empty buffer that shapes with fonts. Lines wrap at
// word boundaries, falling back to glyph boundaries, once a width is set.
func NewBuffer(fonts *FontSystem, m Metrics) *Buffer {
	b := &Buffer{fonts: fonts, metrics: m, wrap: WrapWordOrGlyph}
	b.shaper.SetFontCacheSize(32)
	return b
}

// Metrics returns the current font size and line height.
func (b *Buffer) Metrics() Metrics { return b.metrics }

// SetMetrics changes font size and line height.
func (b *Buffer) SetMetrics(m Metrics) {
	if m != b.metrics {
		b.metrics = m
		b.dirty = true
	}
}

// SetSize sets the layout box. A zero or negative width disables wrapping
// and alignment against a fixed edge; a zero or negative height disables
// the line limit.
func (b *Buffer) SetSize(width, height float32) {
	width, height = max(width, 0), max(height, 0)
	if width != b.width || height != b.height {
		b.width, b.height = width, height
		b.dirty = true
	}
}

// SetWrap changes the wrap mode.
func (b *Buffer) SetWrap(w Wrap) {
	if w != b.wrap {
		b.wrap = w
		b.dirty = true
	}
}

// SetText replaces the content. The text is split into paragraphs at line
// breaks; every paragraph gets the same attributes and shaping level and
// starts with AlignNone.
func (b *Buffer) SetText(s string, attrs Attrs, sh Shaping) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	b.paras = b.paras[:0]
	for _, ln := range lines {
		b.paras = append(b.paras, paragraph{text: []rune(ln), attrs: attrs, shaping: sh})
	}
	b.dirty = true
}

// Text returns the content with paragraphs joined by '\n'.
func (b *Buffer) Text() string {
	var sb strings.Builder
	for i, p := range b.paras {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(p.text))
	}
	return sb.String()
}

// Paragraphs returns the number of source lines.
func (b *Buffer) Paragraphs() int { return len(b.paras) }

// SetAlign sets the alignment of every paragraph.
func (b *Buffer) SetAlign(a Align) {
	for i := range b.paras {
		if b.paras[i].align != a {
			b.paras[i].align = a
			b.dirty = true
		}
	}
}

// SetParagraphAlign sets the alignment of paragraph i. It reports false if
// i is out of range.
func (b *Buffer) SetParagraphAlign(i int, a Align) bool {
	if i < 0 || i >= len(b.paras) {
		return false
	}
	if b.paras[i].align != a {
		b.paras[i].align = a
		b.dirty = true
	}
	return true
}

// Shape lays out the buffer if anything changed since the last call.
func (b *Buffer) Shape() {
	if !b.dirty {
		return
	}
	b.layout()
	b.dirty = false
	b.shapes++
}

// Runs returns the laid out lines. The slice is valid until the next Shape.
func (b *Buffer) Runs() []LayoutRun { return b.runs }

// Truncated reports whether layout stopped at the buffer height.
func (b *Buffer) Truncated() bool { return b.truncated }

// Size returns the measured extent of the laid out lines: the widest line
// and the total line height.
func (b *Buffer) Size() (width, height float32) {
	for _, r := range b.runs {
		width = max(width, r.LineW)
	}
	if n := len(b.runs); n > 0 {
		last := b.runs[n-1]
		height = last.LineTop + last.LineHeight
	}
	return width, height
}

func (b *Buffer) lineHeight() float32 {
	if b.metrics.LineHeight > 0 {
		return b.metrics.LineHeight
	}
	return b.metrics.FontSize
}

func (b *Buffer) layout() {
	b.runs = b.runs[:0]
	b.truncated = false
	lh := b.lineHeight()

	var top float32
	for pi := range b.paras {
		if b.height > 0 && top >= b.height {
			b.truncated = true
			break
		}
		p := &b.paras[pi]
		rtl := baseDirection(p.text) == di.DirectionRTL
		lines := b.shapeParagraph(p, rtl)
		if len(lines) == 0 {
			asc, desc := b.defaultExtents()
			b.runs = append(b.runs, LayoutRun{
				Paragraph:  pi,
				RTL:        rtl,
				LineTop:    top,
				LineY:      baseline(top, lh, asc, desc),
				LineHeight: lh,
				last:       true,
			})
			top += lh
			continue
		}
		for li, line := range lines {
			if b.height > 0 && top >= b.height {
				b.truncated = true
				break
			}
			run := b.placeLine(pi, p, line, top, lh)
			run.RTL = rtl
			run.last = li == len(lines)-1
			b.runs = append(b.runs, run)
			top += lh
		}
	}
	b.align()
}

// shapeParagraph shapes p and wraps it into lines. Empty paragraphs
// produce no lines.
func (b *Buffer) shapeParagraph(p *paragraph, rtl bool) []shaping.Line {
	if len(p.text) == 0 {
		return nil
	}
	size := fixed.Int26_6(math.Round(float64(b.metrics.FontSize) * 64))

	var outs []shaping.Output
	switch p.shaping {
	case ShapingBasic:
		face := b.fonts.Face(p.attrs, p.text[0])
		outs = append(outs, b.shaper.Shape(shaping.Input{
			Text:      p.text,
			RunStart:  0,
			RunEnd:    len(p.text),
			Direction: di.DirectionLTR,
			Face:      face,
			Size:      size,
			Script:    language.LookupScript(p.text[0]),
			Language:  language.NewLanguage("en"),
		}))
	default:
		dir := di.DirectionLTR
		if rtl {
			dir = di.DirectionRTL
		}
		in := shaping.Input{
			Text:      p.text,
			RunStart:  0,
			RunEnd:    len(p.text),
			Direction: dir,
			Size:      size,
			Script:    language.LookupScript(p.text[0]),
			Language:  language.NewLanguage("en"),
		}
		for _, part := range b.seg.Split(in, b.fonts.mapFor(p.attrs)) {
			if part.Face == nil {
				slogger().Debug("text: no face for run", "start", part.RunStart, "end", part.RunEnd)
				continue
			}
			outs = append(outs, b.shaper.Shape(part))
		}
	}
	if len(outs) == 0 {
		return nil
	}

	cfg := shaping.WrapConfig{Direction: outs[0].Direction, BreakPolicy: shaping.WhenNecessary}
	maxWidth := unboundedWidth
	switch b.wrap {
	case WrapNone:
		cfg.BreakPolicy = shaping.Never
	case WrapWord:
		cfg.BreakPolicy = shaping.Never
	case WrapGlyph:
		cfg.BreakPolicy = shaping.Always
	}
	if b.wrap != WrapNone && b.width > 0 {
		maxWidth = int(b.width)
	}
	lines, _ := b.wrapper.WrapParagraph(cfg, maxWidth, p.text, shaping.NewSliceIterator(outs))
	return lines
}

// placeLine converts one wrapped line into a LayoutRun starting at the
// left edge.
func (b *Buffer) placeLine(pi int, p *paragraph, line shaping.Line, top, lh float32) LayoutRun {
	var asc, desc float32
	for i := range line {
		asc = max(asc, f26(line[i].LineBounds.Ascent))
		desc = max(desc, abs32(f26(line[i].LineBounds.Descent)))
	}
	run := LayoutRun{
		Paragraph:  pi,
		LineTop:    top,
		LineY:      baseline(top, lh, asc, desc),
		LineHeight: lh,
	}

	var pen, inked float32
	for i := range line {
		out := &line[i]
		size := f26(out.Size)
		for _, g := range out.Glyphs {
			space := g.ClusterIndex < len(p.text) && unicode.IsSpace(p.text[g.ClusterIndex])
			adv := f26(g.XAdvance)
			run.Glyphs = append(run.Glyphs, LayoutGlyph{
				Face:    out.Face,
				ID:      g.GlyphID,
				Size:    size,
				X:       pen + f26(g.XOffset),
				Y:       -f26(g.YOffset),
				Advance: adv,
				Space:   space,
			})
			pen += adv
			if !space {
				inked = pen
			}
		}
	}
	run.LineW = inked
	return run
}

// align shifts every run according to its paragraph alignment. Without a
// fixed width the widest line is the reference edge.
func (b *Buffer) align() {
	width := b.width
	if width <= 0 {
		for _, r := range b.runs {
			width = max(width, r.LineW)
		}
	}
	for i := range b.runs {
		r := &b.runs[i]
		a := b.paras[r.Paragraph].align
		free := width - r.LineW
		if free <= 0 || len(r.Glyphs) == 0 {
			continue
		}
		var shift float32
		switch a {
		case AlignNone:
			if r.RTL {
				shift = free
			}
		case AlignRight:
			shift = free
		case AlignCenter:
			shift = free / 2
		case AlignEnd:
			if !r.RTL {
				shift = free
			}
		case AlignJustified:
			if r.last || b.width <= 0 {
				if r.RTL {
					shift = free
				}
				break
			}
			justify(r, free)
			continue
		}
		for g := range r.Glyphs {
			r.Glyphs[g].X += shift
		}
	}
}

// justify spreads free space over the inner spaces of r.
func justify(r *LayoutRun, free float32) {
	lastInk := -1
	for i, g := range r.Glyphs {
		if !g.Space {
			lastInk = i
		}
	}
	spaces := 0
	for i := 0; i < lastInk; i++ {
		if r.Glyphs[i].Space {
			spaces++
		}
	}
	if spaces == 0 {
		return
	}
	extra := free / float32(spaces)
	var shift float32
	for i := range r.Glyphs {
		r.Glyphs[i].X += shift
		if i < lastInk && r.Glyphs[i].Space {
			r.Glyphs[i].Advance += extra
			shift += extra
		}
	}
	r.LineW += free
}

// defaultExtents returns the primary face ascent and descent at the buffer
// font size, for lines without glyphs.
func (b *Buffer) defaultExtents() (asc, desc float32) {
	face := b.fonts.primary
	ext, ok := face.FontHExtents()
	if !ok || face.Upem() == 0 {
		return b.metrics.FontSize * 0.8, b.metrics.FontSize * 0.2
	}
	scale := b.metrics.FontSize / float32(face.Upem())
	return ext.Ascender * scale, abs32(ext.Descender * scale)
}

// baseline centers the ascent+descent box in the line box.
func baseline(top, lh, asc, desc float32) float32 {
	return top + (lh-(asc+desc))/2 + asc
}

// baseDirection returns the direction of the first strong character.
func baseDirection(text []rune) di.Direction {
	for _, r := range text {
		props, _ := bidi.LookupRune(r)
		switch props.Class() {
		case bidi.L:
			return di.DirectionLTR
		case bidi.R, bidi.AL:
			return di.DirectionRTL
		}
	}
	return di.DirectionLTR
}

func f26(v fixed.Int26_6) float32 { return float32(v) / 64 }

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
