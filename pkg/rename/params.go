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

package rename

import (
	"os"
	"strings"

	"gitlab.com/tozd/go/errors"
)

var (
	ErrInvalidInput  = errors.Base("invalid input")
	ErrNameCollision = errors.Base("name collision")
)

// Defaults used by the original toolbox form
const (
	DefaultPrefix     = "file"
	DefaultDigitWidth = 3
)

// 🔑 SortKey selects the order sequence numbers are assigned in
type SortKey string

const (
	SortByName     SortKey = "name"
	SortByModified SortKey = "modified"
	SortByCreated  SortKey = "created"
)

// Valid reports whether k is a known sort key
func (k SortKey) Valid() bool {
	switch k {
	case SortByName, SortByModified, SortByCreated:
		return true
	default:
		return false
	}
}

func (k SortKey) String() string {
	return string(k)
}

// ParseSortKey parses a sort key, accepting a few aliases
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "name":
		return SortByName, nil
	case "modified", "mtime", "modified_time":
		return SortByModified, nil
	case "created", "ctime", "created_time":
		return SortByCreated, nil
	default:
		return SortKey(s), errors.Errorf("unknown sort key %q: %w", s, ErrInvalidInput)
	}
}

// 🔧 Params configures one rename job
type Params struct {
	Directory string
	Prefix    string
	// SortKey may hold an unknown value; the job then warns and sorts by name
	SortKey    SortKey
	DigitWidth int
	// SuffixOverride, when non-empty, replaces every entry's extension
	SuffixOverride string
}

// Validate rejects parameters a job cannot start with
func (p Params) Validate() error {
	if p.Directory == "" {
		return errors.Errorf("directory is required: %w", ErrInvalidInput)
	}
	info, err := os.Stat(p.Directory)
	if err != nil {
		return errors.Errorf("invalid directory %q: %w", p.Directory, ErrInvalidInput)
	}
	if !info.IsDir() {
		return errors.Errorf("%q is not a directory: %w", p.Directory, ErrInvalidInput)
	}
	if p.DigitWidth < 1 {
		return errors.Errorf("digit width must be at least 1, got %d: %w", p.DigitWidth, ErrInvalidInput)
	}
	return nil
}

// suffix returns the normalized override, or "" when none is set
func (p Params) suffix() string {
	s := strings.TrimSpace(p.SuffixOverride)
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, ".") {
		s = "." + s
	}
	return s
}
