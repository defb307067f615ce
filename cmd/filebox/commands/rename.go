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
	"iter"

	"github.com/spf13/cobra"
	"github.com/walteh/filebox/cmd/filebox/opts"
	"github.com/walteh/filebox/pkg/event"
	"github.com/walteh/filebox/pkg/log"
	"github.com/walteh/filebox/pkg/operation"
	"github.com/walteh/filebox/pkg/rename"
	"gitlab.com/tozd/go/errors"
)

// NewRenameCmd creates a new rename command
func NewRenameCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		prefix  string
		sortKey string
		width   int
		suffix  string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "rename <dir>",
		Short: "Renumber every entry of a folder",
		Long: `Rename gives every file and folder directly inside <dir> the name
<prefix>_<NNN><ext>, numbered from 1 in the chosen sort order.

Existing names are never overwritten: an entry whose target is taken is
skipped with a warning. Defaults come from the rename section of the config.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd.Context(), opts, "rename")

			p := opts.Config.RenameParams(args[0])
			flags := cmd.Flags()
			if flags.Changed("prefix") {
				p.Prefix = prefix
			}
			if flags.Changed("sort") {
				key, err := rename.ParseSortKey(sortKey)
				if err != nil {
					// unknown keys reach the job, which warns and sorts by name
					key = rename.SortKey(sortKey)
				}
				p.SortKey = key
			}
			if flags.Changed("width") {
				p.DigitWidth = width
			}
			if flags.Changed("suffix") {
				p.SuffixOverride = suffix
			}

			engine := rename.New(nil)

			if dryRun {
				return planRename(ctx, engine, p)
			}

			opts.Console.Header("renaming " + p.Directory)
			return runJob(ctx, opts, operation.FamilyRename, operation.SourceFunc(func(ctx context.Context) iter.Seq[event.Event] {
				return engine.Run(ctx, p)
			}))
		},
	}

	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "name prefix (default from config)")
	cmd.Flags().StringVarP(&sortKey, "sort", "s", "", "sort key: name, modified or created")
	cmd.Flags().IntVarP(&width, "width", "w", 0, "sequence digit width")
	cmd.Flags().StringVar(&suffix, "suffix", "", "replace every extension with this one")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "print the planned names without renaming")

	return cmd
}

// planRename prints the assignment a rename would apply
func planRename(ctx context.Context, engine *rename.Engine, p rename.Params) error {
	plan, err := engine.Plan(ctx, p)
	if err != nil {
		return errors.Errorf("planning rename: %w", err)
	}

	console := log.FromContext(ctx)
	console.Header("planned renames in " + p.Directory)
	if plan.FellBack {
		console.Warningf("invalid sort key '%s', sorting by name", p.SortKey)
	}
	for i := len(plan.Pairs) - 1; i >= 0; i-- {
		pair := plan.Pairs[i]
		console.Infof("%s → %s", pair.Old, pair.New)
	}
	return nil
}
