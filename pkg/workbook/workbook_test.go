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
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gitlab.com/tozd/go/errors"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellStr("Sheet1", "A1", "visit https://pan.baidu.com/s/xyz"))
	require.NoError(t, f.SetCellInt("Sheet1", "B1", 42))
	require.NoError(t, f.SetCellStr("Sheet1", "A2", "docs"))
	require.NoError(t, f.SetCellHyperLink("Sheet1", "A2", "https://example.com/docs", "External"))

	_, err := f.NewSheet("Second")
	require.NoError(t, err)
	require.NoError(t, f.SetCellStr("Second", "A1", "plain"))

	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestExcelizeRead(t *testing.T) {
	wb, err := Open(writeFixture(t))
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"Sheet1", "Second"}, wb.SheetNames())

	var refs []string
	for c, err := range wb.Cells("Sheet1") {
		require.NoError(t, err)
		refs = append(refs, c.Ref)
	}
	assert.Equal(t, []string{"A1", "B1", "A2"}, refs, "cells should iterate row by row")

	v, err := wb.Value(Cell{Sheet: "Sheet1", Ref: "A1"})
	require.NoError(t, err)
	assert.True(t, v.IsText)
	assert.Equal(t, "visit https://pan.baidu.com/s/xyz", v.Text)

	num, err := wb.Value(Cell{Sheet: "Sheet1", Ref: "B1"})
	require.NoError(t, err)
	assert.False(t, num.IsText, "numbers are not text")

	target, ok, err := wb.Hyperlink(Cell{Sheet: "Sheet1", Ref: "A2"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/docs", target)

	_, ok, err = wb.Hyperlink(Cell{Sheet: "Sheet1", Ref: "A1"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExcelizeWriteAndReopen(t *testing.T) {
	wb, err := Open(writeFixture(t))
	require.NoError(t, err)

	a1 := Cell{Sheet: "Sheet1", Ref: "A1"}
	a2 := Cell{Sheet: "Sheet1", Ref: "A2"}
	require.NoError(t, wb.SetHyperlink(a1, "https://pan.baidu.com/s/xyz"))
	require.NoError(t, wb.SetValue(a1, "百度网盘资源"))
	require.NoError(t, wb.SetFont(a1, LinkFont))
	require.NoError(t, wb.SetFont(Cell{Sheet: "Second", Ref: "A1"}, LinkFont))
	require.NoError(t, wb.SetHyperlink(a2, ""))

	out := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, wb.Save(out))
	require.NoError(t, wb.Close())

	reopened, err := Open(out)
	require.NoError(t, err)
	defer reopened.Close()

	target, ok, err := reopened.Hyperlink(a1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://pan.baidu.com/s/xyz", target)

	v, err := reopened.Value(a1)
	require.NoError(t, err)
	assert.Equal(t, "百度网盘资源", v.Text)

	_, ok, err = reopened.Hyperlink(a2)
	require.NoError(t, err)
	assert.False(t, ok, "an empty target should remove the link")
}

func TestSetFontKeepsCellStyle(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellStr("Sheet1", "A1", "styled"))
	styled, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFFF00"}},
		NumFmt: 49,
		Border: []excelize.Border{{Type: "left", Color: "000000", Style: 1}},
	})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "A1", "A1", styled))
	require.NoError(t, f.SetCellStr("Sheet1", "A2", "plain"))

	wb := Wrap(f)
	defer wb.Close()
	require.NoError(t, wb.SetFont(Cell{Sheet: "Sheet1", Ref: "A1"}, LinkFont))
	require.NoError(t, wb.SetFont(Cell{Sheet: "Sheet1", Ref: "A2"}, LinkFont))

	id, err := f.GetCellStyle("Sheet1", "A1")
	require.NoError(t, err)
	got, err := f.GetStyle(id)
	require.NoError(t, err)

	require.NotNil(t, got.Font)
	assert.True(t, got.Font.Bold, "bold should survive")
	assert.Equal(t, float64(14), got.Font.Size, "size should survive")
	assert.Equal(t, "single", got.Font.Underline)
	assert.True(t, strings.HasSuffix(strings.ToUpper(got.Font.Color), LinkFont.Color), "font color should be the link color, got %q", got.Font.Color)
	assert.Equal(t, 1, got.Fill.Pattern, "fill should survive")
	assert.Equal(t, 49, got.NumFmt, "number format should survive")
	assert.Len(t, got.Border, 1, "border should survive")

	plainID, err := f.GetCellStyle("Sheet1", "A2")
	require.NoError(t, err)
	assert.NotEqual(t, id, plainID, "cells with different base styles get different derived styles")
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.xlsx"))
	require.Error(t, err)
}

func TestMemory(t *testing.T) {
	m := NewMemory("Sheet1")
	m.PutText("Sheet1", "B2", "second")
	m.PutText("Sheet1", "A1", "first")
	m.Put("Sheet1", "C3", Value{Text: "3"}, "")
	m.PutText("Other", "A1", "x")

	assert.Equal(t, []string{"Sheet1", "Other"}, m.SheetNames())

	var refs []string
	for c, err := range m.Cells("Sheet1") {
		require.NoError(t, err)
		refs = append(refs, c.Ref)
	}
	assert.Equal(t, []string{"B2", "A1", "C3"}, refs, "cells iterate in insertion order")

	c := Cell{Sheet: "Sheet1", Ref: "A1"}
	require.NoError(t, m.SetHyperlink(c, "https://example.com"))
	assert.Equal(t, map[string]string{"Sheet1!A1": "https://example.com"}, m.Links())
	require.NoError(t, m.SetHyperlink(c, ""))
	assert.Empty(t, m.Links())

	for _, err := range m.Cells("Missing") {
		assert.ErrorIs(t, err, ErrNoSuchSheet)
	}

	m.FailSave = errors.New("disk full")
	assert.Error(t, m.Save("out.xlsx"))
	assert.Empty(t, m.Saves)
}
