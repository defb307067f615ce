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
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 💾 Persister loads and saves the user-defined rules
type Persister interface {
	// Load returns the persisted rules in stored order; a missing store is empty
	Load(ctx context.Context) ([]Rule, error)
	// Save replaces the persisted rules
	Save(ctx context.Context, custom []Rule) error
}

// 📚 Store holds the built-in rules and the mutable user-defined rules.
//
// Built-ins always precede custom rules in List. Custom rules keep insertion
// order; overwriting a name keeps its position.
type Store struct {
	mu        sync.RWMutex
	persister Persister
	order     []string
	custom    map[string]Rule
}

// 🏭 Open loads the custom rules once from p
func Open(ctx context.Context, p Persister) (*Store, error) {
	s := &Store{
		persister: p,
		custom:    map[string]Rule{},
	}
	if p == nil {
		return s, nil
	}

	loaded, err := p.Load(ctx)
	if err != nil {
		return nil, errors.Errorf("loading custom rules: %w", err)
	}

	for _, r := range loaded {
		compiled, err := NewRule(r.Name, r.Pattern, r.Display)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("rule", r.Name).Msg("dropping invalid persisted rule")
			continue
		}
		s.put(compiled)
	}

	return s, nil
}

// put inserts or overwrites r; callers hold mu
func (s *Store) put(r Rule) {
	if _, ok := s.custom[r.Name]; !ok {
		s.order = append(s.order, r.Name)
	}
	s.custom[r.Name] = r
}

// remove drops name; callers hold mu
func (s *Store) remove(name string) {
	delete(s.custom, name)
	s.order = slices.DeleteFunc(s.order, func(n string) bool { return n == name })
}

// 📋 List returns built-ins first, then custom rules
func (s *Store) List() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := Builtins()
	for _, name := range s.order {
		out = append(out, s.custom[name])
	}
	return out
}

// Custom returns only the user-defined rules
func (s *Store) Custom() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.customLocked()
}

func (s *Store) customLocked() []Rule {
	out := make([]Rule, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.custom[name])
	}
	return out
}

// Get looks a rule up by name. Custom rules shadow a built-in of the same
// name here; matching order is unaffected.
func (s *Store) Get(name string) (Rule, bool) {
	name = strings.TrimSpace(name)
	s.mu.RLock()
	r, ok := s.custom[name]
	s.mu.RUnlock()
	if ok {
		return r, true
	}
	for _, b := range builtins {
		if b.Name == name {
			return b, true
		}
	}
	return Rule{}, false
}

// missing reports why name cannot be mutated
func missing(op, name string) error {
	if IsBuiltin(name) {
		return errors.Errorf("%s %q: %w", op, name, ErrBuiltinImmutable)
	}
	return errors.Errorf("%s %q: %w", op, name, ErrRuleNotFound)
}

// ➕ Add inserts or overwrites a custom rule and persists the set
func (s *Store) Add(ctx context.Context, name, pattern, display string) error {
	r, err := NewRule(name, pattern, display)
	if err != nil {
		return errors.Errorf("adding rule: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(r)
	zerolog.Ctx(ctx).Debug().Str("rule", r.Name).Msg("added custom rule")
	return s.persistLocked(ctx)
}

// ✏️ Edit replaces the custom rule oldName with a new definition. A name
// held only by a built-in fails with ErrBuiltinImmutable.
func (s *Store) Edit(ctx context.Context, oldName, newName, pattern, display string) error {
	oldName = strings.TrimSpace(oldName)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.custom[oldName]; !ok {
		return missing("editing", oldName)
	}

	r, err := NewRule(newName, pattern, display)
	if err != nil {
		return errors.Errorf("editing %q: %w", oldName, err)
	}

	if r.Name == oldName {
		s.custom[oldName] = r
	} else {
		s.remove(oldName)
		s.put(r)
	}

	zerolog.Ctx(ctx).Debug().Str("old", oldName).Str("new", r.Name).Msg("edited custom rule")
	return s.persistLocked(ctx)
}

// 🗑️ Delete removes a custom rule
func (s *Store) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.custom[name]; !ok {
		return missing("deleting", name)
	}

	s.remove(name)
	zerolog.Ctx(ctx).Debug().Str("rule", name).Msg("deleted custom rule")
	return s.persistLocked(ctx)
}

// Persist writes the current custom rules again, for callers retrying a failed save
func (s *Store) Persist(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistLocked(ctx)
}

// persistLocked saves the custom set. The in-memory state is not rolled back on failure.
func (s *Store) persistLocked(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(ctx, s.customLocked()); err != nil {
		return errors.WithDetails(errors.Errorf("%w: %s", ErrPersistence, err), "cause", err)
	}
	return nil
}
