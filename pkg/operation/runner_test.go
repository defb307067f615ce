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

package operation

import (
	"context"
	"iter"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/filebox/pkg/event"
)

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

func staticSource(events ...event.Event) Source {
	return SourceFunc(func(ctx context.Context) iter.Seq[event.Event] {
		return func(yield func(event.Event) bool) {
			for _, ev := range events {
				if !yield(ev) {
					return
				}
			}
		}
	})
}

// gatedSource emits one success per tick received on gate, checking ctx
// before each, then ends
func gatedSource(gate <-chan struct{}, n int) Source {
	return SourceFunc(func(ctx context.Context) iter.Seq[event.Event] {
		return func(yield func(event.Event) bool) {
			for i := 0; i < n; i++ {
				select {
				case <-gate:
				case <-ctx.Done():
				}
				if ctx.Err() != nil {
					if !yield(event.Warning(ctx.Err(), "cancelled at %d", i)) {
						return
					}
					break
				}
				if !yield(event.Success("step %d", i)) {
					return
				}
			}
			yield(event.End())
		}
	})
}

func drain(job *Job) []event.Event {
	var out []event.Event
	for ev := range job.Events() {
		out = append(out, ev)
	}
	return out
}

func TestStartDeliversInOrder(t *testing.T) {
	r := NewRunner()
	job, err := r.Start(testContext(t), FamilyRename, staticSource(
		event.Success("one"),
		event.Warning(nil, "two"),
		event.Error(nil, "three"),
		event.End(),
	))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, job.ID)
	assert.Equal(t, FamilyRename, job.Family)

	got := drain(job)
	job.Wait()

	want := []string{"success: one", "warning: two", "error: three", "end"}
	require.Len(t, got, len(want))
	for i, w := range want {
		assert.Equal(t, w, got[i].String())
	}
	assert.False(t, r.Running(FamilyRename))
}

func TestMissingEndIsAppended(t *testing.T) {
	r := NewRunner()
	job, err := r.Start(testContext(t), FamilyImage, staticSource(event.Success("only")))
	require.NoError(t, err)

	got := drain(job)
	require.Len(t, got, 2)
	assert.True(t, got[1].IsEnd())
}

func TestEventsAfterEndAreDropped(t *testing.T) {
	r := NewRunner()
	job, err := r.Start(testContext(t), FamilyImage, staticSource(event.End(), event.Success("late")))
	require.NoError(t, err)

	got := drain(job)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsEnd())
}

func TestJobAlreadyRunning(t *testing.T) {
	ctx := testContext(t)
	r := NewRunner()
	gate := make(chan struct{})

	first, err := r.Start(ctx, FamilyHyperlink, gatedSource(gate, 1))
	require.NoError(t, err)
	assert.True(t, r.Running(FamilyHyperlink))

	_, err = r.Start(ctx, FamilyHyperlink, staticSource(event.End()))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrJobAlreadyRunning)

	other, err := r.Start(ctx, FamilyRename, staticSource(event.End()))
	require.NoError(t, err, "other families are independent")
	drain(other)

	close(gate)
	drain(first)
	first.Wait()

	again, err := r.Start(ctx, FamilyHyperlink, staticSource(event.End()))
	require.NoError(t, err, "a finished family can start again")
	drain(again)
}

func TestCancel(t *testing.T) {
	r := NewRunner()
	gate := make(chan struct{}, 1)
	gate <- struct{}{}

	job, err := r.Start(testContext(t), FamilyRename, gatedSource(gate, 5))
	require.NoError(t, err)

	first := <-job.Events()
	assert.Equal(t, "success: step 0", first.String())

	job.Cancel()
	rest := drain(job)

	require.Len(t, rest, 2)
	assert.Equal(t, event.KindWarning, rest[0].Kind)
	assert.ErrorIs(t, rest[0].Err, context.Canceled)
	assert.True(t, rest[1].IsEnd())

	select {
	case <-job.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("job did not finish after cancel")
	}
}

func TestCancelWithoutReader(t *testing.T) {
	r := NewRunner()

	// ignores ctx and emits far more than the channel buffers
	noisy := SourceFunc(func(ctx context.Context) iter.Seq[event.Event] {
		return func(yield func(event.Event) bool) {
			for i := 0; i < eventBuffer*4; i++ {
				if !yield(event.Success("step %d", i)) {
					return
				}
			}
			yield(event.End())
		}
	})

	job, err := r.Start(testContext(t), FamilyRename, noisy)
	require.NoError(t, err)
	<-job.Events()
	job.Cancel()

	select {
	case <-job.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("job did not finish after cancel with no reader")
	}
	assert.False(t, r.Running(FamilyRename), "the family should be released")

	next, err := r.Start(testContext(t), FamilyRename, staticSource(event.End()))
	require.NoError(t, err, "a new job of the same family should start")
	events := drain(next)
	require.Len(t, events, 1)
	assert.True(t, events[0].IsEnd())
}

func TestRun(t *testing.T) {
	r := NewRunner()
	rec := &event.Recorder{}

	err := r.Run(testContext(t), FamilyRename, staticSource(event.Success("a"), event.End()), rec)
	require.NoError(t, err)
	assert.Len(t, rec.Events(), 2)
	assert.False(t, r.Running(FamilyRename))
}
