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
	"context"
	"iter"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/filebox/pkg/event"
)

// ▶️ Job converts every input of Params
type Job struct {
	Params Params
	// Codec defaults to StdCodec
	Codec Codec
}

// OutputPath is where input is written for format in dir
func OutputPath(dir, input string, format Format) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+"."+format.Ext())
}

// Events runs the batch lazily: one event per input, then end. A failing
// input is reported and the batch moves on.
func (j Job) Events(ctx context.Context) iter.Seq[event.Event] {
	return func(yield func(event.Event) bool) {
		logger := zerolog.Ctx(ctx)
		codec := j.Codec
		if codec == nil {
			codec = StdCodec{}
		}

		if err := j.Params.Validate(); err != nil {
			if !yield(event.Error(err, "invalid conversion settings: %s", err)) {
				return
			}
			yield(event.End())
			return
		}

		for _, input := range j.Params.Inputs {
			if ctx.Err() != nil {
				logger.Debug().Err(ctx.Err()).Msg("conversion cancelled")
				if !yield(event.Warning(ctx.Err(), "cancelled before %s", filepath.Base(input))) {
					return
				}
				break
			}

			out := OutputPath(j.Params.OutputDir, input, j.Params.Format)
			var ev event.Event
			if err := j.convert(codec, input, out); err != nil {
				logger.Debug().Err(err).Str("input", input).Msg("conversion failed")
				ev = event.Error(err, "failed to convert %s - %s", filepath.Base(input), err)
			} else {
				ev = event.Success("%s → %s", filepath.Base(input), filepath.Base(out))
			}
			if !yield(ev) {
				return
			}
		}

		yield(event.End())
	}
}

func (j Job) convert(codec Codec, input, out string) error {
	p := j.Params

	img, err := codec.Open(input)
	if err != nil {
		return err
	}
	if p.Compression.Enabled {
		img = codec.Thumbnail(img, p.Compression.MaxSize)
	}
	if p.Format.Opaque() {
		img = codec.ConvertColorMode(img, RGB)
	}
	if p.Format == ICO {
		img = codec.ResizeExact(img, p.IcoSize, p.IcoSize)
	}
	return codec.Save(img, out, p.Format, SaveOptions{Quality: p.quality()})
}
