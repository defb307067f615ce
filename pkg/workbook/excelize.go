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

package workbook

import (
	"iter"

	"github.com/xuri/excelize/v2"
	"gitlab.com/tozd/go/errors"
)

const (
	linkTypeExternal = "External"
	linkTypeNone     = "None"
)

// 📗 File adapts an excelize workbook
type File struct {
	f      *excelize.File
	styles map[styleKey]int
}

// styleKey names a derived style: an existing cell style with its font replaced
type styleKey struct {
	base int
	font Font
}

var _ Workbook = (*File)(nil)

// Open opens an .xlsx workbook
func Open(path string) (Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Errorf("opening workbook %s: %w", path, err)
	}
	return Wrap(f), nil
}

// Wrap adapts an already open excelize file
func Wrap(f *excelize.File) *File {
	return &File{f: f, styles: map[styleKey]int{}}
}

func (w *File) SheetNames() []string {
	return w.f.GetSheetList()
}

func (w *File) Cells(sheet string) iter.Seq2[Cell, error] {
	return func(yield func(Cell, error) bool) {
		rows, err := w.f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			yield(Cell{Sheet: sheet}, errors.Errorf("reading rows of %s: %w", sheet, err))
			return
		}
		for r, row := range rows {
			for c := range row {
				ref, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					yield(Cell{Sheet: sheet}, errors.Errorf("addressing row %d column %d: %w", r+1, c+1, err))
					return
				}
				if !yield(Cell{Sheet: sheet, Ref: ref}, nil) {
					return
				}
			}
		}
	}
}

func (w *File) Value(c Cell) (Value, error) {
	typ, err := w.f.GetCellType(c.Sheet, c.Ref)
	if err != nil {
		return Value{}, errors.Errorf("reading type of %s: %w", c, err)
	}
	text, err := w.f.GetCellValue(c.Sheet, c.Ref, excelize.Options{RawCellValue: true})
	if err != nil {
		return Value{}, errors.Errorf("reading %s: %w", c, err)
	}

	isText := typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString
	if isText {
		formula, err := w.f.GetCellFormula(c.Sheet, c.Ref)
		if err != nil {
			return Value{}, errors.Errorf("reading formula of %s: %w", c, err)
		}
		isText = formula == ""
	}
	return Value{Text: text, IsText: isText}, nil
}

func (w *File) SetValue(c Cell, text string) error {
	if err := w.f.SetCellStr(c.Sheet, c.Ref, text); err != nil {
		return errors.Errorf("writing %s: %w", c, err)
	}
	return nil
}

func (w *File) Hyperlink(c Cell) (string, bool, error) {
	ok, target, err := w.f.GetCellHyperLink(c.Sheet, c.Ref)
	if err != nil {
		return "", false, errors.Errorf("reading hyperlink of %s: %w", c, err)
	}
	return target, ok && target != "", nil
}

func (w *File) SetHyperlink(c Cell, target string) error {
	if target == "" {
		if err := w.f.SetCellHyperLink(c.Sheet, c.Ref, "", linkTypeNone); err != nil {
			return errors.Errorf("clearing hyperlink of %s: %w", c, err)
		}
		return nil
	}
	if err := w.f.SetCellHyperLink(c.Sheet, c.Ref, target, linkTypeExternal); err != nil {
		return errors.Errorf("writing hyperlink of %s: %w", c, err)
	}
	return nil
}

// SetFont changes the underline and color of the cell font, keeping the rest
// of the cell style
func (w *File) SetFont(c Cell, font Font) error {
	base, err := w.f.GetCellStyle(c.Sheet, c.Ref)
	if err != nil {
		return errors.Errorf("reading style of %s: %w", c, err)
	}

	key := styleKey{base: base, font: font}
	id, ok := w.styles[key]
	if !ok {
		style, err := w.f.GetStyle(base)
		if err != nil {
			return errors.Errorf("reading style %d: %w", base, err)
		}
		fnt := excelize.Font{}
		if style.Font != nil {
			fnt = *style.Font
		}
		fnt.Underline = font.Underline
		fnt.Color = font.Color
		style.Font = &fnt

		if id, err = w.f.NewStyle(style); err != nil {
			return errors.Errorf("creating font style: %w", err)
		}
		w.styles[key] = id
	}
	if err := w.f.SetCellStyle(c.Sheet, c.Ref, c.Ref, id); err != nil {
		return errors.Errorf("styling %s: %w", c, err)
	}
	return nil
}

func (w *File) Save(path string) error {
	if err := w.f.SaveAs(path); err != nil {
		return errors.Errorf("saving workbook to %s: %w", path, err)
	}
	return nil
}

func (w *File) Close() error {
	return w.f.Close()
}
