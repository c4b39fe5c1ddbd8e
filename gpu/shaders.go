// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import _ "embed"

//go:embed shaders/blit.wgsl
var blitShaderSource string

//go:embed shaders/glyph.wgsl
var glyphShaderSource string
