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

package rulefile

import (
	"bytes"
	"encoding/json"
	"strings"

	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&JSONCodec{})
}

// 🔧 JSONCodec reads and writes the toolbox's original JSON layout
type JSONCodec struct{}

// CanParse checks if this codec can handle the given file
func (c *JSONCodec) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(filename)), ".json")
}

// Decode walks the top-level object token by token so key order survives
func (c *JSONCodec) Decode(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.Errorf("parsing JSON: expected an object of rules")
	}

	doc := &Document{Entries: map[string]Entry{}}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, errors.Errorf("parsing JSON: %w", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, errors.Errorf("parsing JSON: unexpected token %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, errors.Errorf("parsing JSON rule %q: %w", name, err)
		}

		var e Entry
		entryDec := json.NewDecoder(bytes.NewReader(raw))
		entryDec.DisallowUnknownFields()
		if err := entryDec.Decode(&e); err != nil {
			return nil, errors.Errorf("parsing JSON rule %q: %w", name, err)
		}
		doc.Set(name, e)
	}

	if _, err := dec.Token(); err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}

	return doc, nil
}

// Encode writes a two-space indented object without escaping non-ASCII text
func (c *JSONCodec) Encode(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if len(doc.Names) == 0 {
		return []byte("{}\n"), nil
	}

	buf.WriteString("{\n")
	for i, name := range doc.Names {
		key, err := marshalNoEscape(name)
		if err != nil {
			return nil, err
		}
		body, err := marshalNoEscape(doc.Entries[name])
		if err != nil {
			return nil, err
		}

		var indented bytes.Buffer
		if err := json.Indent(&indented, body, "  ", "  "); err != nil {
			return nil, errors.Errorf("indenting JSON: %w", err)
		}

		buf.WriteString("  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(indented.Bytes())
		if i < len(doc.Names)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")

	return buf.Bytes(), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Errorf("encoding JSON: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
