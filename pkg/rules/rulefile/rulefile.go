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

// Package rulefile persists user-defined link rules as a name → {pattern, display}
// document. The encoding is picked from the file extension.
package rulefile

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/filebox/pkg/rules"
	"gitlab.com/tozd/go/errors"
)

// DefaultPath is the file the original toolbox kept its custom rules in
const DefaultPath = "hyperlink_config.json"

// 📄 Entry is one persisted rule body
type Entry struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Display string `json:"display" yaml:"display"`
}

// 🗂️ Document is an ordered name → Entry mapping
type Document struct {
	Names   []string
	Entries map[string]Entry
}

// NewDocument builds a document from rules, keeping their order
func NewDocument(rs []rules.Rule) *Document {
	doc := &Document{Entries: make(map[string]Entry, len(rs))}
	for _, r := range rs {
		doc.Set(r.Name, Entry{Pattern: r.Pattern, Display: r.Display})
	}
	return doc
}

// Set inserts or overwrites name
func (d *Document) Set(name string, e Entry) {
	if d.Entries == nil {
		d.Entries = map[string]Entry{}
	}
	if _, ok := d.Entries[name]; !ok {
		d.Names = append(d.Names, name)
	}
	d.Entries[name] = e
}

// Rules converts the document to uncompiled rules in document order
func (d *Document) Rules() []rules.Rule {
	out := make([]rules.Rule, 0, len(d.Names))
	for _, name := range d.Names {
		e := d.Entries[name]
		out = append(out, rules.Rule{Name: name, Pattern: e.Pattern, Display: e.Display})
	}
	return out
}

// 🔌 Codec encodes and decodes one document format
type Codec interface {
	// CanParse checks if this codec handles the given file
	CanParse(filename string) bool
	Decode(data []byte) (*Document, error)
	Encode(doc *Document) ([]byte, error)
}

var codecs []Codec

// Register adds a codec to the registry
func Register(c Codec) {
	codecs = append(codecs, c)
}

// GetCodec returns the codec for filename, or nil
func GetCodec(filename string) Codec {
	for _, c := range codecs {
		if c.CanParse(filename) {
			return c
		}
	}
	return nil
}

// 💾 File is a rules.Persister backed by a document on disk
type File struct {
	Path string
}

var _ rules.Persister = (*File)(nil)

// New returns a File for path, checking that its format is known
func New(path string) (*File, error) {
	if GetCodec(path) == nil {
		return nil, errors.Errorf("unsupported rule file extension %q", filepath.Ext(path))
	}
	return &File{Path: path}, nil
}

// Load reads the document; a missing file is an empty rule set
func (f *File) Load(ctx context.Context) ([]rules.Rule, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", f.Path).Msg("loading rule file")

	codec := GetCodec(f.Path)
	if codec == nil {
		return nil, errors.Errorf("no codec found for file: %s", f.Path)
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Str("path", f.Path).Msg("rule file does not exist, starting empty")
			return nil, nil
		}
		return nil, errors.Errorf("reading rule file: %w", err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}

	doc, err := codec.Decode(data)
	if err != nil {
		return nil, errors.Errorf("decoding rule file %s: %w", f.Path, err)
	}
	return doc.Rules(), nil
}

// Save writes the rules atomically
func (f *File) Save(ctx context.Context, custom []rules.Rule) error {
	zerolog.Ctx(ctx).Debug().Str("path", f.Path).Int("rules", len(custom)).Msg("saving rule file")

	codec := GetCodec(f.Path)
	if codec == nil {
		return errors.Errorf("no codec found for file: %s", f.Path)
	}

	data, err := codec.Encode(NewDocument(custom))
	if err != nil {
		return errors.Errorf("encoding rule file: %w", err)
	}

	if dir := filepath.Dir(f.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Errorf("creating rule file directory: %w", err)
		}
	}

	tempPath := f.Path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tempPath, f.Path); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}
	return nil
}
