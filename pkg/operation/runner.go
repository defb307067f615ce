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
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/filebox/pkg/event"
	"gitlab.com/tozd/go/errors"
)

var ErrJobAlreadyRunning = errors.Base("job already running")

// 🏷️ Family groups jobs that must not run concurrently
type Family string

const (
	FamilyRename    Family = "rename"
	FamilyHyperlink Family = "hyperlink"
	FamilyImage     Family = "image"
)

// 📜 Source produces a job's events; it must stop early once ctx is done
type Source interface {
	Events(ctx context.Context) iter.Seq[event.Event]
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context) iter.Seq[event.Event]

func (f SourceFunc) Events(ctx context.Context) iter.Seq[event.Event] { return f(ctx) }

const eventBuffer = 16

// 🏃 Job is one running source
type Job struct {
	ID     uuid.UUID
	Family Family

	events chan event.Event
	cancel context.CancelFunc
	done   chan struct{}
}

// Events delivers the job's events in order; the channel closes after end
func (j *Job) Events() <-chan event.Event { return j.events }

// Cancel asks the job to stop before its next entry
func (j *Job) Cancel() { j.cancel() }

// Done closes when the job has finished
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the job has finished. Events must be drained for the job
// to finish, unless it was cancelled.
func (j *Job) Wait() { <-j.done }

// deliver sends ev, preferring delivery over cancellation. Once the job is
// cancelled a send that would block gives up and reports false.
func (j *Job) deliver(ctx context.Context, ev event.Event) bool {
	select {
	case j.events <- ev:
		return true
	default:
	}
	select {
	case j.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// 🏃 Runner starts jobs off the caller's goroutine, one per family at a time
type Runner struct {
	mu      sync.Mutex
	running map[Family]*Job
}

// 🏗️ NewRunner creates a new runner
func NewRunner() *Runner {
	return &Runner{running: map[Family]*Job{}}
}

// Running reports whether a job of family is in flight
func (r *Runner) Running(family Family) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.running[family]
	return ok
}

// ⚡ Start runs src on its own goroutine. A second job of the same family is
// rejected with ErrJobAlreadyRunning until the first has delivered its end event.
func (r *Runner) Start(ctx context.Context, family Family, src Source) (*Job, error) {
	r.mu.Lock()
	if current, ok := r.running[family]; ok {
		r.mu.Unlock()
		return nil, errors.WithDetails(
			errors.Errorf("%s: %w", family, ErrJobAlreadyRunning),
			"job_id", current.ID.String(),
		)
	}

	jctx, cancel := context.WithCancel(ctx)
	job := &Job{
		ID:     uuid.New(),
		Family: family,
		events: make(chan event.Event, eventBuffer),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	r.running[family] = job
	r.mu.Unlock()

	logger := zerolog.Ctx(ctx).With().
		Str("job_id", job.ID.String()).
		Str("family", string(family)).
		Logger()
	jctx = logger.WithContext(jctx)

	go r.run(jctx, job, src)

	return job, nil
}

func (r *Runner) run(ctx context.Context, job *Job, src Source) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Msg("job started")

	sawEnd := false
	abandoned := false
	for ev := range src.Events(ctx) {
		if sawEnd {
			logger.Warn().Str("event", ev.String()).Msg("dropping event after end")
			continue
		}
		if !job.deliver(ctx, ev) {
			abandoned = true
			break
		}
		sawEnd = ev.IsEnd()
	}
	if !sawEnd && !abandoned {
		job.deliver(ctx, event.End())
	}
	if abandoned {
		logger.Debug().Msg("job cancelled with no reader, stopped forwarding events")
	}

	r.mu.Lock()
	delete(r.running, job.Family)
	r.mu.Unlock()

	job.cancel()
	close(job.events)
	close(job.done)
	logger.Debug().Msg("job finished")
}

// 🏃 Run starts src and forwards its events to sink until the job ends
func (r *Runner) Run(ctx context.Context, family Family, src Source, sink event.Sink) error {
	job, err := r.Start(ctx, family, src)
	if err != nil {
		return err
	}
	for ev := range job.Events() {
		sink.Emit(ev)
	}
	job.Wait()
	return nil
}
