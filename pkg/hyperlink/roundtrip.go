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
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/walteh/filebox/pkg/rules"
	"github.com/walteh/filebox/pkg/workbook"
	"gitlab.com/tozd/go/errors"
)

var (
	ErrInvalidInput = errors.Base("invalid input")
	ErrIOFailure    = errors.Base("workbook i/o failure")
)

func ioFailure(err error, format string, args ...any) errors.E {
	return errors.WithDetails(
		errors.Errorf("%w: %s: %s", ErrIOFailure, fmt.Sprintf(format, args...), err.Error()),
		"cause", err,
	)
}

// 📑 Selection picks the sheets a conversion touches
type Selection struct {
	all   bool
	names []string
}

// AllSheets selects every sheet present when the conversion starts
func AllSheets() Selection {
	return Selection{all: true}
}

// Sheets selects the named sheets
func Sheets(names ...string) Selection {
	return Selection{names: slices.Clone(names)}
}

func (s Selection) String() string {
	if s.all {
		return "all sheets"
	}
	return fmt.Sprintf("%v", s.names)
}

// Resolve expands the selection against wb
func (s Selection) Resolve(wb workbook.Workbook) ([]string, error) {
	present := wb.SheetNames()
	if s.all {
		return present, nil
	}
	if len(s.names) == 0 {
		return nil, errors.Errorf("no sheets selected: %w", ErrInvalidInput)
	}
	for _, name := range s.names {
		if !slices.Contains(present, name) {
			return nil, errors.WithDetails(
				errors.Errorf("sheet %q not found: %w", name, ErrInvalidInput),
				"sheets", present,
			)
		}
	}
	return slices.Clone(s.names), nil
}

type cellFunc func(c workbook.Cell) (bool, error)

// convert visits every selected cell, then saves once. Nothing is saved when
// any cell fails or ctx is cancelled.
func convert(ctx context.Context, wb workbook.Workbook, sel Selection, out string, fn cellFunc) (int, error) {
	if out == "" {
		return 0, errors.Errorf("output path is required: %w", ErrInvalidInput)
	}
	sheets, err := sel.Resolve(wb)
	if err != nil {
		return 0, err
	}

	logger := zerolog.Ctx(ctx)
	count := 0
	for _, sheet := range sheets {
		for c, err := range wb.Cells(sheet) {
			if err != nil {
				return 0, ioFailure(err, "iterating %s", sheet)
			}
			if err := ctx.Err(); err != nil {
				return 0, errors.Errorf("conversion cancelled at %s: %w", c, err)
			}
			changed, err := fn(c)
			if err != nil {
				return 0, err
			}
			if changed {
				count++
			}
		}
		logger.Debug().Str("sheet", sheet).Int("converted", count).Msg("sheet done")
	}

	if err := wb.Save(out); err != nil {
		return 0, ioFailure(err, "saving %s", out)
	}
	return count, nil
}

// 📝 ToText replaces every hyperlink in the selected sheets with its target
// as plain text and saves the workbook to out. Only cells yielded by
// Workbook.Cells are considered.
func ToText(ctx context.Context, wb workbook.Workbook, sel Selection, out string) (int, error) {
	return convert(ctx, wb, sel, out, func(c workbook.Cell) (bool, error) {
		target, ok, err := wb.Hyperlink(c)
		if err != nil {
			return false, ioFailure(err, "reading hyperlink of %s", c)
		}
		if !ok {
			return false, nil
		}
		if err := wb.SetValue(c, target); err != nil {
			return false, ioFailure(err, "writing %s", c)
		}
		if err := wb.SetHyperlink(c, ""); err != nil {
			return false, ioFailure(err, "clearing hyperlink of %s", c)
		}
		return true, nil
	})
}

// 🔗 ToLinks turns text cells containing a recognizable link into
// hyperlinks and saves the workbook to out. A blank Unified text is replaced
// by DefaultUnifiedText.
func ToLinks(ctx context.Context, wb workbook.Workbook, sel Selection, rs []rules.Rule, mode DisplayMode, out string) (int, error) {
	if mode == nil {
		return 0, errors.Errorf("display mode is required: %w", ErrInvalidInput)
	}
	if u, ok := mode.(Unified); ok {
		mode, _ = ResolveUnified(u.Text)
	}
	return convert(ctx, wb, sel, out, func(c workbook.Cell) (bool, error) {
		v, err := wb.Value(c)
		if err != nil {
			return false, ioFailure(err, "reading %s", c)
		}
		if !v.IsText || v.Text == "" {
			return false, nil
		}
		link, ok := Extract(v.Text, rs, mode)
		if !ok {
			return false, nil
		}
		if err := wb.SetHyperlink(c, link.URL); err != nil {
			return false, ioFailure(err, "writing hyperlink of %s", c)
		}
		if err := wb.SetValue(c, link.Display); err != nil {
			return false, ioFailure(err, "writing %s", c)
		}
		if err := wb.SetFont(c, workbook.LinkFont); err != nil {
			return false, ioFailure(err, "styling %s", c)
		}
		return true, nil
	})
}
