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

// Package workbook is the spreadsheet capability the hyperlink converters
// work through. Callers never build cells themselves; they iterate a sheet and
// read or write through the Workbook.
package workbook

import (
	"iter"
)

// 📍 Cell addresses one cell of a sheet
type Cell struct {
	Sheet string
	// Ref is the A1-style reference
	Ref string
}

func (c Cell) String() string {
	return c.Sheet + "!" + c.Ref
}

// 🧾 Value is a cell's content; IsText is false for numbers, booleans, dates and formulas
type Value struct {
	Text   string
	IsText bool
}

// 🎨 Font is the subset of cell font styling the converters set
type Font struct {
	Underline string
	Color     string
}

// LinkFont is the blue underlined style spreadsheets use for hyperlinks
var LinkFont = Font{Underline: "single", Color: "0563C1"}

// 📒 Workbook is an open spreadsheet document
type Workbook interface {
	// SheetNames returns sheet names in workbook order
	SheetNames() []string
	// Cells yields the sheet's cells in row, then column order. The excelize
	// adapter walks stored values, so an empty cell beyond the last value of
	// its row may not be visited even when it carries a hyperlink.
	Cells(sheet string) iter.Seq2[Cell, error]
	Value(c Cell) (Value, error)
	SetValue(c Cell, text string) error
	// Hyperlink returns the cell's link target, if any
	Hyperlink(c Cell) (string, bool, error)
	// SetHyperlink points the cell at target; an empty target removes the link
	SetHyperlink(c Cell, target string) error
	SetFont(c Cell, f Font) error
	Save(path string) error
	Close() error
}

// Opener opens a workbook from a path
type Opener func(path string) (Workbook, error)
