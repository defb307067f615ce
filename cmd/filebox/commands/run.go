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

package commands

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/walteh/filebox/cmd/filebox/opts"
	"github.com/walteh/filebox/pkg/event"
	"github.com/walteh/filebox/pkg/log"
	"github.com/walteh/filebox/pkg/operation"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// ErrJobFailed is returned when a job reported at least one error event
var ErrJobFailed = errors.Base("job reported errors")

// commandContext tags the context logger with the running command and
// carries the console for job output
func commandContext(ctx context.Context, o *opts.RootOpts, name string) context.Context {
	ctx = zerolog.Ctx(ctx).With().Str("command", name).Logger().WithContext(ctx)
	return log.NewContext(ctx, o.Console)
}

// runJob starts src on the shared runner and renders its events on the
// context console until the end event. An interrupt cancels the job between entries.
func runJob(ctx context.Context, o *opts.RootOpts, family operation.Family, src operation.Source) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	job, err := o.Runner.Start(ctx, family, src)
	if err != nil {
		return errors.Errorf("starting %s job: %w", family, err)
	}

	console := log.FromContext(ctx)
	failed := 0
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for ev := range job.Events() {
			if ev.Kind == event.KindError {
				failed++
			}
			console.Emit(ev)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-job.Done():
		case <-gctx.Done():
			zerolog.Ctx(ctx).Debug().Str("job_id", job.ID.String()).Msg("interrupt received, cancelling job")
			job.Cancel()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return errors.Errorf("%s job interrupted: %w", family, err)
	}
	if failed > 0 {
		return errors.WithDetails(
			errors.Errorf("%s job: %w", family, ErrJobFailed),
			"errors", failed,
		)
	}
	return nil
}
