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

// Package hyperlink recognizes cloud-storage links in spreadsheet text and
// converts workbook cells between plain text and hyperlinks.
package hyperlink

import (
	"fmt"
	"regexp"

	"github.com/walteh/filebox/pkg/rules"
)

var genericURL = regexp.MustCompile(`https?://[^\s]+`)

// 🔗 Link is an extracted hyperlink
type Link struct {
	URL     string
	Display string
	// Rule names the rule that matched, empty when none did
	Rule string
}

// Extract finds the link in text. Rules are tried in order and the first
// that matches wins. Unified mode ignores the rules and takes the first
// http(s) URL in text.
func Extract(text string, rs []rules.Rule, mode DisplayMode) (Link, bool) {
	var (
		matched string
		winner  rules.Rule
		found   bool
	)
	for _, r := range rs {
		if m, ok := r.Find(text); ok {
			matched, winner, found = m, r, true
			break
		}
	}

	switch m := mode.(type) {
	case Keep:
		if !found {
			return Link{URL: text, Display: text}, true
		}
		return Link{URL: matched, Display: matched, Rule: winner.Name}, true
	case NamedByRule:
		if !found {
			return Link{}, false
		}
		return Link{URL: matched, Display: winner.Display, Rule: winner.Name}, true
	case Unified:
		url := genericURL.FindString(text)
		if url == "" {
			return Link{}, false
		}
		return Link{URL: url, Display: m.Text}, true
	default:
		panic(fmt.Sprintf("hyperlink: unhandled display mode %T", mode))
	}
}
