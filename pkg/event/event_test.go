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

package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestKindText(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		want string
	}{
		{name: "success", kind: KindSuccess, want: "success"},
		{name: "warning", kind: KindWarning, want: "warning"},
		{name: "error", kind: KindError, want: "error"},
		{name: "end", kind: KindEnd, want: "end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := tt.kind.MarshalText()
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(text), "marshaled kind should match")

			parsed, err := ParseKind(tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, parsed, "parsed kind should match")
		})
	}

	_, err := Kind(42).MarshalText()
	assert.Error(t, err, "unknown kind should not marshal")

	_, err = ParseKind("info")
	assert.Error(t, err, "unknown kind should not parse")
}

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")

	s := Success("%s → %s", "a.txt", "file_1.txt")
	assert.Equal(t, KindSuccess, s.Kind)
	assert.Equal(t, "a.txt → file_1.txt", s.Message)
	assert.NoError(t, s.Err)

	w := Warning(cause, "skipped %d", 3)
	assert.Equal(t, KindWarning, w.Kind)
	assert.Equal(t, "skipped 3", w.Message)
	assert.ErrorIs(t, w.Err, cause)

	e := Error(cause, "failed")
	assert.Equal(t, "error: failed", e.String())

	assert.True(t, End().IsEnd(), "end event should be terminal")
	assert.Equal(t, "end", End().String())
}

func TestRecorderAndCollect(t *testing.T) {
	seq := func(yield func(Event) bool) {
		for _, e := range []Event{Success("one"), Warning(nil, "two"), End()} {
			if !yield(e) {
				return
			}
		}
	}

	collected := Collect(seq)
	require.Len(t, collected, 3)
	assert.Equal(t, 1, Count(collected, KindSuccess))
	assert.Equal(t, 1, Count(collected, KindWarning))

	rec := &Recorder{}
	Drain(seq, rec)
	assert.Equal(t, collected, rec.Events(), "recorder should see events in order")
}
