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

package rules

import (
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

var (
	ErrInvalidInput     = errors.Base("invalid input")
	ErrInvalidPattern   = errors.Base("invalid pattern")
	ErrRuleNotFound     = errors.Base("rule not found")
	ErrBuiltinImmutable = errors.Base("built-in rule is immutable")
	ErrPersistence      = errors.Base("persisting rules")
)

// 🔗 Rule names a link pattern and the text shown for links it matches
type Rule struct {
	Name    string
	Pattern string
	Display string

	re *regexp.Regexp
}

// 🏭 NewRule validates and compiles a rule
func NewRule(name, pattern, display string) (Rule, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Rule{}, errors.Errorf("rule name is required: %w", ErrInvalidInput)
	}
	if strings.TrimSpace(display) == "" {
		return Rule{}, errors.Errorf("rule %q: display text is required: %w", name, ErrInvalidInput)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, errors.WithDetails(
			errors.Errorf("rule %q: %w: %s", name, ErrInvalidPattern, err.Error()),
			"pattern", pattern,
		)
	}
	return Rule{Name: name, Pattern: pattern, Display: display, re: re}, nil
}

func mustRule(name, pattern, display string) Rule {
	r, err := NewRule(name, pattern, display)
	if err != nil {
		panic(err)
	}
	return r
}

// 🔍 Find returns the leftmost substring of text matching the rule
func (r Rule) Find(text string) (string, bool) {
	re := r.re
	if re == nil {
		var err error
		if re, err = regexp.Compile(r.Pattern); err != nil {
			return "", false
		}
	}
	loc := re.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	return text[loc[0]:loc[1]], true
}

var builtins = []Rule{
	mustRule("百度网盘", `(https?://pan\.baidu\.com/[^\s]+)`, "百度网盘资源"),
	mustRule("阿里云盘", `(https?://www\.aliyundrive\.com/[^\s]+)`, "阿里云盘资源"),
	mustRule("Google Drive", `(https://drive\.google\.com/[^\s]+)`, "Google云端硬盘"),
	mustRule("OneDrive", `(https://\w+\.sharepoint\.com/[^\s]+)`, "OneDrive资源"),
}

// Builtins returns the rules shipped with filebox, in precedence order
func Builtins() []Rule {
	out := make([]Rule, len(builtins))
	copy(out, builtins)
	return out
}

// IsBuiltin reports whether name belongs to a built-in rule
func IsBuiltin(name string) bool {
	for _, b := range builtins {
		if b.Name == name {
			return true
		}
	}
	return false
}
