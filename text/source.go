// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package text

import (
	"fmt"
	"os"
	"path/filepath"
)

// Source is one font registered with a FontSystem: either font bytes held
// in memory or a path read when the system is built.
//
// Sources are values; copying one shares the underlying bytes, which are
// never modified after construction.
type Source struct {
	data []byte
	path string
}

// SourceFromBytes returns a Source holding a copy of data (TTF, OTF or a
// collection).
func SourceFromBytes(data []byte) (Source, error) {
	if len(data) == 0 {
		return Source{}, ErrEmptyFontData
	}
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)
	return Source{data: dataCopy}, nil
}

// MustSourceFromBytes is like SourceFromBytes but panics on empty data.
// It is meant for fonts embedded into the binary.
func MustSourceFromBytes(data []byte) Source {
	s, err := SourceFromBytes(data)
	if err != nil {
		panic(err)
	}
	return s
}

// SourceFromFile returns a Source that reads path when the font system is
// built. The file is not touched here.
func SourceFromFile(path string) Source {
	return Source{path: path}
}

// IsFile reports whether the source refers to a file.
func (s Source) IsFile() bool { return s.data == nil && s.path != "" }

// Path returns the file path of a file source, or "".
func (s Source) Path() string { return s.path }

// Len returns the number of bytes held in memory (zero for file sources).
func (s Source) Len() int { return len(s.data) }

// String returns a short printable description of the source.
func (s Source) String() string {
	if s.IsFile() {
		return "file:" + filepath.Base(s.path)
	}
	return fmt.Sprintf("memory:%d bytes", len(s.data))
}

// load returns the font bytes, reading the file for file sources.
func (s Source) load() ([]byte, error) {
	if !s.IsFile() {
		if len(s.data) == 0 {
			return nil, ErrEmptyFontData
		}
		return s.data, nil
	}
	// #nosec G304 -- font file path is provided by the application
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("text: failed to read font file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("text: %s: %w", s.path, ErrEmptyFontData)
	}
	return data, nil
}
