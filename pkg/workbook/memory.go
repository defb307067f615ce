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
	"sync"

	"gitlab.com/tozd/go/errors"
)

var ErrNoSuchSheet = errors.Base("no such sheet")

// MemoryCell is the state of one in-memory cell
type MemoryCell struct {
	Value Value
	Link  string
	Font  *Font
}

// 🧠 Memory is a workbook held entirely in memory. Cells iterate in the order
// they were first written to a sheet.
type Memory struct {
	mu     sync.Mutex
	sheets []string
	cells  map[string]map[string]*MemoryCell
	order  map[string][]string

	// Saves records every path passed to Save
	Saves []string
	// FailValue, when set, is returned by Value for the named cell
	FailValue map[Cell]error
	// FailSave, when set, is returned by Save
	FailSave error
}

var _ Workbook = (*Memory)(nil)

// NewMemory creates an empty workbook with the given sheets
func NewMemory(sheets ...string) *Memory {
	m := &Memory{
		cells: map[string]map[string]*MemoryCell{},
		order: map[string][]string{},
	}
	for _, s := range sheets {
		m.addSheet(s)
	}
	return m
}

func (m *Memory) addSheet(sheet string) {
	if _, ok := m.cells[sheet]; ok {
		return
	}
	m.sheets = append(m.sheets, sheet)
	m.cells[sheet] = map[string]*MemoryCell{}
}

func (m *Memory) cell(c Cell) *MemoryCell {
	m.addSheet(c.Sheet)
	mc, ok := m.cells[c.Sheet][c.Ref]
	if !ok {
		mc = &MemoryCell{}
		m.cells[c.Sheet][c.Ref] = mc
		m.order[c.Sheet] = append(m.order[c.Sheet], c.Ref)
	}
	return mc
}

// Put stores a cell, creating the sheet if needed
func (m *Memory) Put(sheet, ref string, v Value, link string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mc := m.cell(Cell{Sheet: sheet, Ref: ref})
	mc.Value = v
	mc.Link = link
}

// PutText stores a text cell
func (m *Memory) PutText(sheet, ref, text string) {
	m.Put(sheet, ref, Value{Text: text, IsText: true}, "")
}

// Get returns a copy of a cell's state
func (m *Memory) Get(sheet, ref string) (MemoryCell, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.cells[sheet]
	if !ok {
		return MemoryCell{}, false
	}
	mc, ok := s[ref]
	if !ok {
		return MemoryCell{}, false
	}
	return *mc, true
}

// Links returns every linked cell as sheet!ref → target
func (m *Memory) Links() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]string{}
	for sheet, cells := range m.cells {
		for ref, mc := range cells {
			if mc.Link != "" {
				out[Cell{Sheet: sheet, Ref: ref}.String()] = mc.Link
			}
		}
	}
	return out
}

func (m *Memory) SheetNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sheets))
	copy(out, m.sheets)
	return out
}

func (m *Memory) Cells(sheet string) iter.Seq2[Cell, error] {
	return func(yield func(Cell, error) bool) {
		m.mu.Lock()
		if _, ok := m.cells[sheet]; !ok {
			m.mu.Unlock()
			yield(Cell{Sheet: sheet}, errors.Errorf("%s: %w", sheet, ErrNoSuchSheet))
			return
		}
		refs := make([]string, len(m.order[sheet]))
		copy(refs, m.order[sheet])
		m.mu.Unlock()

		for _, ref := range refs {
			if !yield(Cell{Sheet: sheet, Ref: ref}, nil) {
				return
			}
		}
	}
}

func (m *Memory) Value(c Cell) (Value, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailValue[c]; err != nil {
		return Value{}, err
	}
	return m.cell(c).Value, nil
}

func (m *Memory) SetValue(c Cell, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cell(c).Value = Value{Text: text, IsText: true}
	return nil
}

func (m *Memory) Hyperlink(c Cell) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link := m.cell(c).Link
	return link, link != "", nil
}

func (m *Memory) SetHyperlink(c Cell, target string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cell(c).Link = target
	return nil
}

func (m *Memory) SetFont(c Cell, f Font) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cell(c).Font = &f
	return nil
}

func (m *Memory) Save(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSave != nil {
		return m.FailSave
	}
	m.Saves = append(m.Saves, path)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
