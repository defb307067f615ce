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
	"fmt"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// DefaultUnifiedText is shown when unified mode is given blank text
const DefaultUnifiedText = "资源链接"

// 🎭 DisplayMode decides the visible text of a converted cell.
// It is one of Keep, NamedByRule or Unified.
type DisplayMode interface {
	fmt.Stringer
	displayMode()
}

// Keep shows the matched link itself
type Keep struct{}

// NamedByRule shows the winning rule's display text
type NamedByRule struct{}

// Unified shows the same text for every link
type Unified struct {
	Text string
}

func (Keep) displayMode()        {}
func (NamedByRule) displayMode() {}
func (Unified) displayMode()     {}

func (Keep) String() string        { return "keep" }
func (NamedByRule) String() string { return "display" }
func (u Unified) String() string   { return "unified" }

// ParseMode parses the command-line names keep, display and unified
func ParseMode(name, unifiedText string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "keep":
		return Keep{}, nil
	case "display", "named", "rule":
		return NamedByRule{}, nil
	case "unified":
		return Unified{Text: unifiedText}, nil
	default:
		return nil, errors.Errorf("unknown display mode %q: %w", name, ErrInvalidInput)
	}
}

// ResolveUnified substitutes DefaultUnifiedText for blank text, reporting
// whether it did
func ResolveUnified(text string) (Unified, bool) {
	if strings.TrimSpace(text) == "" {
		return Unified{Text: DefaultUnifiedText}, true
	}
	return Unified{Text: text}, false
}
