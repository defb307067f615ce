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

// Package imageconv converts batches of images between formats, optionally
// bounding their size.
package imageconv

import (
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/nfnt/resize"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// 🎨 ColorMode is a pixel layout to convert to
type ColorMode int

const (
	// RGB drops transparency by compositing onto white
	RGB ColorMode = iota
	// RGBA keeps transparency
	RGBA
)

// SaveOptions tunes the encoder
type SaveOptions struct {
	// Quality applies to JPEG
	Quality int
}

// 🧰 Codec decodes, transforms and encodes images
type Codec interface {
	Open(path string) (image.Image, error)
	// Thumbnail shrinks img to fit within maxDimension, keeping the aspect
	// ratio. Images already small enough are returned unchanged.
	Thumbnail(img image.Image, maxDimension int) image.Image
	ResizeExact(img image.Image, width, height int) image.Image
	ConvertColorMode(img image.Image, mode ColorMode) image.Image
	Save(img image.Image, path string, format Format, opts SaveOptions) error
}

// StdCodec is the pure-Go codec
type StdCodec struct{}

var _ Codec = StdCodec{}

func (StdCodec) Open(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

func (StdCodec) Thumbnail(img image.Image, maxDimension int) image.Image {
	return resize.Thumbnail(uint(maxDimension), uint(maxDimension), img, resize.Lanczos3)
}

func (StdCodec) ResizeExact(img image.Image, width, height int) image.Image {
	return resize.Resize(uint(width), uint(height), img, resize.Lanczos3)
}

func (StdCodec) ConvertColorMode(img image.Image, mode ColorMode) image.Image {
	b := img.Bounds()
	switch mode {
	case RGB:
		if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
			return img
		}
		dst := image.NewRGBA(b)
		draw.Draw(dst, b, &image.Uniform{C: color.White}, image.Point{}, draw.Src)
		draw.Draw(dst, b, img, b.Min, draw.Over)
		return dst
	case RGBA:
		if _, ok := img.(*image.NRGBA); ok {
			return img
		}
		dst := image.NewNRGBA(b)
		draw.Draw(dst, b, img, b.Min, draw.Src)
		return dst
	default:
		return img
	}
}

func (StdCodec) Save(img image.Image, path string, format Format, opts SaveOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Errorf("creating output: %w", err)
	}

	if err := encode(f, img, format, opts); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return errors.Errorf("closing output: %w", err)
	}
	return nil
}

func encode(w io.Writer, img image.Image, format Format, opts SaveOptions) error {
	var err error
	switch format {
	case PNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(w, img)
	case JPEG:
		q := opts.Quality
		if q < 1 || q > 100 {
			q = jpeg.DefaultQuality
		}
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: q})
	case BMP:
		err = bmp.Encode(w, img)
	case ICO:
		err = encodeICO(w, img)
	default:
		return errors.Errorf("format %q: %w", format, ErrUnsupportedFormat)
	}
	if err != nil {
		return errors.Errorf("encoding %s: %w", format, err)
	}
	return nil
}
