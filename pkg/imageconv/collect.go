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

package imageconv

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// DefaultPattern selects the decodable images directly inside a folder
const DefaultPattern = "*.{png,jpg,jpeg,bmp,webp,gif,tif,tiff}"

// 📂 Collect returns the files under dir whose slash-separated relative path
// matches any pattern, compared case-insensitively. With no patterns
// DefaultPattern is used. Results are sorted.
func Collect(dir string, patterns ...string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{DefaultPattern}
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Errorf("invalid pattern %q: %w", p, ErrInvalidInput)
		}
	}

	var found []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = strings.ToLower(filepath.ToSlash(rel))
		for _, p := range patterns {
			matched, err := doublestar.Match(strings.ToLower(p), rel)
			if err != nil {
				return errors.Errorf("matching pattern: %w", err)
			}
			if matched {
				found = append(found, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("collecting images in %s: %w", dir, err)
	}

	sort.Strings(found)
	return found, nil
}
