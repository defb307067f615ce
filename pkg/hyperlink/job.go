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

package hyperlink

import (
	"context"
	"iter"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/filebox/pkg/event"
	"github.com/walteh/filebox/pkg/rules"
	"github.com/walteh/filebox/pkg/workbook"
	"gitlab.com/tozd/go/errors"
)

// DefaultOutputPath places the converted copy next to in as <stem>_转换版.xlsx
func DefaultOutputPath(in string) string {
	ext := filepath.Ext(in)
	return strings.TrimSuffix(in, ext) + "_转换版.xlsx"
}

// RuleLister supplies the rules a link job matches against
type RuleLister interface {
	List() []rules.Rule
}

// 📝 TextJob converts hyperlinks in a workbook file to plain text
type TextJob struct {
	Input     string
	Output    string
	Selection Selection
	// Open defaults to workbook.Open
	Open workbook.Opener
}

// Events runs the job lazily, ending with an end event
func (j TextJob) Events(ctx context.Context) iter.Seq[event.Event] {
	return func(yield func(event.Event) bool) {
		n, err := runOnFile(ctx, j.Open, j.Input, j.Output, func(wb workbook.Workbook, out string) (int, error) {
			return ToText(ctx, wb, j.Selection, out)
		})
		if !yield(outcome(n, err, "converted %d hyperlinks to text")) {
			return
		}
		yield(event.End())
	}
}

// 🔗 LinkJob converts link text in a workbook file to hyperlinks
type LinkJob struct {
	Input     string
	Output    string
	Selection Selection
	Rules     RuleLister
	Mode      DisplayMode
	// Open defaults to workbook.Open
	Open workbook.Opener
}

// Events runs the job lazily, ending with an end event. The rule list is
// read once when the sequence starts.
func (j LinkJob) Events(ctx context.Context) iter.Seq[event.Event] {
	return func(yield func(event.Event) bool) {
		mode := j.Mode
		if mode == nil {
			mode = Keep{}
		}
		if u, ok := mode.(Unified); ok {
			resolved, substituted := ResolveUnified(u.Text)
			if substituted {
				w := errors.Errorf("unified display text is blank: %w", ErrInvalidInput)
				if !yield(event.Warning(w, "unified display text is empty, using default %q", resolved.Text)) {
					return
				}
			}
			mode = resolved
		}

		var snapshot []rules.Rule
		if j.Rules != nil {
			snapshot = j.Rules.List()
		}
		zerolog.Ctx(ctx).Debug().Int("rules", len(snapshot)).Str("mode", mode.String()).Msg("starting link conversion")

		n, err := runOnFile(ctx, j.Open, j.Input, j.Output, func(wb workbook.Workbook, out string) (int, error) {
			return ToLinks(ctx, wb, j.Selection, snapshot, mode, out)
		})
		if !yield(outcome(n, err, "converted %d links")) {
			return
		}
		yield(event.End())
	}
}

func runOnFile(ctx context.Context, open workbook.Opener, in, out string, fn func(workbook.Workbook, string) (int, error)) (int, error) {
	if in == "" {
		return 0, errors.Errorf("input workbook is required: %w", ErrInvalidInput)
	}
	if open == nil {
		open = workbook.Open
	}
	if out == "" {
		out = DefaultOutputPath(in)
	}

	wb, err := open(in)
	if err != nil {
		return 0, ioFailure(err, "opening %s", in)
	}
	defer func() {
		if err := wb.Close(); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("path", in).Msg("closing workbook")
		}
	}()

	return fn(wb, out)
}

func outcome(n int, err error, format string) event.Event {
	if err != nil {
		return event.Error(err, "conversion failed: %s", err)
	}
	return event.Success(format, n)
}
