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

package opts

import (
	"context"
	"io"
	"sync"

	"github.com/walteh/filebox/pkg/config"
	"github.com/walteh/filebox/pkg/log"
	"github.com/walteh/filebox/pkg/operation"
	"github.com/walteh/filebox/pkg/rules"
	"github.com/walteh/filebox/pkg/rules/rulefile"
	"gitlab.com/tozd/go/errors"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Config  *config.Config
	Console *log.Logger
	Runner  *operation.Runner
	// Out receives command output that is not a job event, like tables
	Out io.Writer

	rulesOnce sync.Once
	rules     *rules.Store
	rulesErr  error
}

// Rules opens the rule store named by the config on first use
func (o *RootOpts) Rules(ctx context.Context) (*rules.Store, error) {
	o.rulesOnce.Do(func() {
		file, err := rulefile.New(o.Config.RulesFile)
		if err != nil {
			o.rulesErr = errors.Errorf("opening rule file: %w", err)
			return
		}
		o.rules, o.rulesErr = rules.Open(ctx, file)
	})
	return o.rules, o.rulesErr
}
