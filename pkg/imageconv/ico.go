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
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"io"

	"gitlab.com/tozd/go/errors"
)

// icoDir and icoEntry follow the ICONDIR / ICONDIRENTRY layout
type icoDir struct {
	Reserved uint16
	Type     uint16
	Count    uint16
}

type icoEntry struct {
	Width       uint8
	Height      uint8
	Colors      uint8
	Reserved    uint8
	Planes      uint16
	BitCount    uint16
	BytesInRes  uint32
	ImageOffset uint32
}

const icoHeaderSize = 6 + 16

// encodeICO writes a single-image icon with a PNG payload
func encodeICO(w io.Writer, img image.Image) error {
	b := img.Bounds()
	if b.Dx() > 256 || b.Dy() > 256 || b.Dx() < 1 || b.Dy() < 1 {
		return errors.Errorf("icon images must be 1 to 256 pixels, got %dx%d", b.Dx(), b.Dy())
	}

	var payload bytes.Buffer
	if err := png.Encode(&payload, img); err != nil {
		return errors.Errorf("encoding icon payload: %w", err)
	}

	// 256 is stored as 0
	dim := func(n int) uint8 { return uint8(n % 256) }

	if err := binary.Write(w, binary.LittleEndian, icoDir{Type: 1, Count: 1}); err != nil {
		return errors.Errorf("writing icon header: %w", err)
	}
	entry := icoEntry{
		Width:       dim(b.Dx()),
		Height:      dim(b.Dy()),
		Planes:      1,
		BitCount:    32,
		BytesInRes:  uint32(payload.Len()),
		ImageOffset: icoHeaderSize,
	}
	if err := binary.Write(w, binary.LittleEndian, entry); err != nil {
		return errors.Errorf("writing icon entry: %w", err)
	}
	if _, err := w.Write(payload.Bytes()); err != nil {
		return errors.Errorf("writing icon payload: %w", err)
	}
	return nil
}
