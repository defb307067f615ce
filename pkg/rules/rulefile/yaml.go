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
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

func init() {
	Register(&YAMLCodec{})
}

// 🔧 YAMLCodec stores rules as a YAML mapping
type YAMLCodec struct{}

// CanParse checks if this codec can handle the given file
func (c *YAMLCodec) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

// Decode reads the mapping node directly so key order survives
func (c *YAMLCodec) Decode(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}

	doc := &Document{Entries: map[string]Entry{}}
	if root.Kind == 0 || len(root.Content) == 0 {
		return doc, nil
	}

	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, errors.Errorf("parsing YAML: expected a mapping of rules at line %d", mapping.Line)
	}

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keyNode, valueNode := mapping.Content[i], mapping.Content[i+1]

		// re-decode each body strictly so typos in field names are caught
		body, err := yaml.Marshal(valueNode)
		if err != nil {
			return nil, errors.Errorf("parsing YAML rule %q: %w", keyNode.Value, err)
		}
		var e Entry
		dec := yaml.NewDecoder(bytes.NewReader(body))
		dec.KnownFields(true)
		if err := dec.Decode(&e); err != nil {
			return nil, errors.Errorf("parsing YAML rule %q: %w", keyNode.Value, err)
		}
		doc.Set(keyNode.Value, e)
	}

	return doc, nil
}

// Encode writes the mapping in document order
func (c *YAMLCodec) Encode(doc *Document) ([]byte, error) {
	mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, name := range doc.Names {
		e := doc.Entries[name]
		var body yaml.Node
		if err := body.Encode(e); err != nil {
			return nil, errors.Errorf("encoding YAML rule %q: %w", name, err)
		}
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			&body,
		)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(mapping); err != nil {
		return nil, errors.Errorf("encoding YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Errorf("encoding YAML: %w", err)
	}
	return buf.Bytes(), nil
}
