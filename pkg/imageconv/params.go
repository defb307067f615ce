// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package imageconv

import (
	"os"
	"slices"
	"strings"

	"gitlab.com/tozd/go/errors"
)

var (
	ErrInvalidInput      = errors.Base("invalid input")
	ErrUnsupportedFormat = errors.Base("unsupported format")
)

// 🖼️ Format is an output image format
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	BMP  Format = "bmp"
	ICO  Format = "ico"
)

// Formats lists the supported output formats
var Formats = []Format{PNG, JPEG, BMP, ICO}

func (f Format) String() string {
	return strings.ToUpper(string(f))
}

// Ext is the file extension written for f, without the dot
func (f Format) Ext() string {
	return string(f)
}

// Opaque reports whether f cannot store transparency
func (f Format) Opaque() bool {
	return f == JPEG || f == BMP
}

// ParseFormat accepts format names in any case; jpg is an alias of jpeg
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "jpg":
		return JPEG, nil
	case PNG, JPEG, BMP, ICO:
		return f, nil
	case "webp":
		return "", errors.Errorf("webp output has no encoder: %w", ErrUnsupportedFormat)
	default:
		return "", errors.Errorf("unknown format %q: %w", s, ErrUnsupportedFormat)
	}
}

const (
	MinMaxSize     = 100
	MaxMaxSize     = 10000
	DefaultMaxSize = 6000
	DefaultQuality = 85
	DefaultIcoSize = 256
)

// IcoSizes are the square icon sizes that can be written
var IcoSizes = []int{16, 32, 48, 64, 128, 256}

// 🗜️ Compression bounds output dimensions and sets encoder quality
type Compression struct {
	Enabled bool
	// MaxSize bounds both width and height, keeping the aspect ratio
	MaxSize int
	Quality int
}

// 🔧 Params configures one conversion batch
type Params struct {
	Inputs      []string
	OutputDir   string
	Format      Format
	Compression Compression
	// IcoSize is the edge length of ICO output; ignored for other formats
	IcoSize int
}

// Validate rejects parameters a batch cannot start with
func (p Params) Validate() error {
	if len(p.Inputs) == 0 {
		return errors.Errorf("no input files: %w", ErrInvalidInput)
	}
	if p.OutputDir == "" {
		return errors.Errorf("output directory is required: %w", ErrInvalidInput)
	}
	if info, err := os.Stat(p.OutputDir); err != nil || !info.IsDir() {
		return errors.Errorf("invalid output directory %q: %w", p.OutputDir, ErrInvalidInput)
	}
	if !slices.Contains(Formats, p.Format) {
		return errors.Errorf("format %q: %w", p.Format, ErrUnsupportedFormat)
	}
	if p.Compression.Enabled {
		if p.Compression.MaxSize < MinMaxSize || p.Compression.MaxSize > MaxMaxSize {
			return errors.Errorf("max size must be between %d and %d, got %d: %w", MinMaxSize, MaxMaxSize, p.Compression.MaxSize, ErrInvalidInput)
		}
		if p.Compression.Quality < 1 || p.Compression.Quality > 100 {
			return errors.Errorf("quality must be between 1 and 100, got %d: %w", p.Compression.Quality, ErrInvalidInput)
		}
	}
	if p.Format == ICO && !slices.Contains(IcoSizes, p.IcoSize) {
		return errors.Errorf("icon size must be one of %v, got %d: %w", IcoSizes, p.IcoSize, ErrInvalidInput)
	}
	return nil
}

// quality is the encoder quality; full quality when compression is off
func (p Params) quality() int {
	if !p.Compression.Enabled {
		return 100
	}
	return p.Compression.Quality
}
