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
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/djherbis/times"
	"github.com/rs/zerolog"
	"github.com/walteh/filebox/pkg/event"
	"gitlab.com/tozd/go/errors"
)

// 💾 FS is the filesystem surface the engine touches
type FS interface {
	ReadDir(dir string) ([]fs.DirEntry, error)
	Lstat(path string) (fs.FileInfo, error)
	Rename(oldPath, newPath string) error
	// Created returns the creation time of path, falling back to change or modification time
	Created(path string, info fs.FileInfo) time.Time
}

// OSFS is the real filesystem
type OSFS struct{}

func (OSFS) ReadDir(dir string) ([]fs.DirEntry, error) { return os.ReadDir(dir) }
func (OSFS) Lstat(path string) (fs.FileInfo, error)    { return os.Lstat(path) }
func (OSFS) Rename(oldPath, newPath string) error       { return os.Rename(oldPath, newPath) }

func (OSFS) Created(path string, info fs.FileInfo) time.Time {
	ts, err := times.Stat(path)
	if err != nil {
		return info.ModTime()
	}
	switch {
	case ts.HasBirthTime():
		return ts.BirthTime()
	case ts.HasChangeTime():
		return ts.ChangeTime()
	default:
		return ts.ModTime()
	}
}

// 🔁 Pair is one planned rename
type Pair struct {
	Seq   int
	Old   string
	New   string
	IsDir bool
}

// 📋 Assignment is the planned old → new mapping, in processing order
// (highest sequence number first)
type Assignment struct {
	Pairs []Pair
	// SortKey is the key actually used
	SortKey SortKey
	// FellBack is set when the requested key was unknown
	FellBack bool
}

// 🎯 Engine computes and applies rename assignments
type Engine struct {
	fs FS
}

// 🏭 New creates an engine over fsys; nil means the real filesystem
func New(fsys FS) *Engine {
	if fsys == nil {
		fsys = OSFS{}
	}
	return &Engine{fs: fsys}
}

type entry struct {
	name     string
	isDir    bool
	modified time.Time
	created  time.Time
}

// 🗺️ Plan lists the directory and computes the assignment
func (e *Engine) Plan(ctx context.Context, p Params) (*Assignment, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	dirEntries, err := e.fs.ReadDir(p.Directory)
	if err != nil {
		return nil, errors.Errorf("listing %s: %w", p.Directory, err)
	}

	key := p.SortKey
	fellBack := false
	if key == "" {
		key = SortByName
	}
	if !key.Valid() {
		fellBack = true
		key = SortByName
	}

	entries := make([]entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if name == "." || name == ".." {
			continue
		}
		en := entry{name: name, isDir: de.IsDir()}
		if key != SortByName {
			full := filepath.Join(p.Directory, name)
			info, err := e.fs.Lstat(full)
			if err != nil {
				return nil, errors.Errorf("reading %s: %w", full, err)
			}
			en.isDir = info.IsDir()
			en.modified = info.ModTime()
			if key == SortByCreated {
				en.created = e.fs.Created(full, info)
			}
		}
		entries = append(entries, en)
	}

	sortEntries(entries, key)

	suffix := p.suffix()
	pairs := make([]Pair, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		en := entries[i]
		ext := suffix
		if ext == "" && !en.isDir {
			ext = splitExt(en.name)
		}
		pairs = append(pairs, Pair{
			Seq:   i + 1,
			Old:   en.name,
			New:   NewName(p.Prefix, i+1, p.DigitWidth, ext),
			IsDir: en.isDir,
		})
	}

	zerolog.Ctx(ctx).Debug().
		Str("directory", p.Directory).
		Str("sort_key", key.String()).
		Int("entries", len(pairs)).
		Msg("planned rename")

	return &Assignment{Pairs: pairs, SortKey: key, FellBack: fellBack}, nil
}

func sortEntries(entries []entry, key SortKey) {
	byName := func(a, b entry) bool {
		la, lb := strings.ToLower(a.name), strings.ToLower(b.name)
		if la != lb {
			return la < lb
		}
		return a.name < b.name
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch key {
		case SortByModified:
			if !a.modified.Equal(b.modified) {
				return a.modified.Before(b.modified)
			}
		case SortByCreated:
			if !a.created.Equal(b.created) {
				return a.created.Before(b.created)
			}
		}
		return byName(a, b)
	})
}

// NewName builds prefix_<seq padded to width><ext>. Width is a minimum.
func NewName(prefix string, seq, width int, ext string) string {
	return fmt.Sprintf("%s_%0*d%s", prefix, width, seq, ext)
}

// splitExt returns the extension of name the way a leading-dot-aware split
// does: ".bashrc" has none, "archive.tar.gz" has ".gz".
func splitExt(name string) string {
	trimmed := strings.TrimLeft(name, ".")
	idx := strings.LastIndex(trimmed, ".")
	if idx < 0 {
		return ""
	}
	return trimmed[idx:]
}

// ▶️ Run plans and applies the rename, yielding one event per outcome and a final end event.
//
// The sequence is lazy: nothing touches the filesystem until it is ranged
// over, and each iteration lists the directory afresh.
func (e *Engine) Run(ctx context.Context, p Params) iter.Seq[event.Event] {
	return func(yield func(event.Event) bool) {
		logger := zerolog.Ctx(ctx)

		a, err := e.Plan(ctx, p)
		if err != nil {
			if !yield(event.Error(err, "planning rename in %s failed: %s", p.Directory, err)) {
				return
			}
			yield(event.End())
			return
		}

		if a.FellBack {
			w := errors.Errorf("unknown sort key %q: %w", p.SortKey, ErrInvalidInput)
			if !yield(event.Warning(w, "invalid sort key '%s', sorting by name", p.SortKey)) {
				return
			}
		}

		for _, pair := range a.Pairs {
			if ctx.Err() != nil {
				logger.Debug().Err(ctx.Err()).Msg("rename cancelled")
				if !yield(event.Warning(ctx.Err(), "cancelled before %s", pair.Old)) {
					return
				}
				break
			}

			ev, ok := e.apply(ctx, p.Directory, pair)
			if !ok {
				continue
			}
			if !yield(ev) {
				return
			}
		}

		yield(event.End())
	}
}

// apply performs one rename; ok is false when the pair is a silent no-op
func (e *Engine) apply(ctx context.Context, dir string, pair Pair) (event.Event, bool) {
	oldPath := filepath.Join(dir, pair.Old)
	newPath := filepath.Join(dir, pair.New)

	if oldPath == newPath {
		return event.Event{}, false
	}

	if existing, err := e.fs.Lstat(newPath); err == nil && !e.sameEntry(oldPath, existing) {
		collision := errors.WithDetails(
			errors.Errorf("%s: %w", pair.New, ErrNameCollision),
			"old", pair.Old, "new", pair.New,
		)
		return event.Warning(collision, "conflict: '%s' already exists, skipping %s", pair.New, pair.Old), true
	}

	if err := e.fs.Rename(oldPath, newPath); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("old", pair.Old).Str("new", pair.New).Msg("rename failed")
		return event.Error(errors.Errorf("renaming %s: %w", pair.Old, err), "failed to rename %s - %s", pair.Old, reason(err)), true
	}

	return event.Success("%s → %s", pair.Old, pair.New), true
}

// sameEntry is true on case-insensitive filesystems when newPath resolves to oldPath itself
func (e *Engine) sameEntry(oldPath string, existing fs.FileInfo) bool {
	current, err := e.fs.Lstat(oldPath)
	if err != nil {
		return false
	}
	return os.SameFile(current, existing)
}

// reason strips the path noise from an os error
func reason(err error) string {
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return linkErr.Err.Error()
	}
	return err.Error()
}
