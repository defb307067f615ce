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
	"fmt"

	"github.com/spf13/cobra"
	"github.com/walteh/filebox/cmd/filebox/opts"
	"github.com/walteh/filebox/pkg/hyperlink"
	"github.com/walteh/filebox/pkg/operation"
)

// NewLinksCmd creates the links command group
func NewLinksCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links",
		Short: "Convert between spreadsheet link text and hyperlinks",
		Long: `Links rewrites a workbook and saves the result as a new file, by default
<name>_转换版.xlsx next to the input. Nothing is written if any cell fails.`,
	}

	cmd.AddCommand(
		newToTextCmd(opts),
		newToLinksCmd(opts),
	)

	return cmd
}

// linkFlags are shared by both conversion directions
type linkFlags struct {
	out    string
	sheets []string
}

func (f *linkFlags) add(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output workbook path")
	cmd.Flags().StringSliceVar(&f.sheets, "sheet", nil, "sheet to convert, repeatable (default all sheets)")
}

func (f *linkFlags) selection() hyperlink.Selection {
	if len(f.sheets) == 0 {
		return hyperlink.AllSheets()
	}
	return hyperlink.Sheets(f.sheets...)
}

func newToTextCmd(opts *opts.RootOpts) *cobra.Command {
	var flags linkFlags

	cmd := &cobra.Command{
		Use:   "to-text <workbook>",
		Short: "Replace hyperlinked cells with their link target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd.Context(), opts, "links.to-text")

			job := hyperlink.TextJob{
				Input:     args[0],
				Output:    flags.out,
				Selection: flags.selection(),
			}

			opts.Console.Header(fmt.Sprintf("hyperlinks → text in %s (%s)", job.Input, job.Selection))
			return runJob(ctx, opts, operation.FamilyHyperlink, job)
		},
	}

	flags.add(cmd)
	return cmd
}

func newToLinksCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		flags       linkFlags
		mode        string
		unifiedText string
	)

	cmd := &cobra.Command{
		Use:   "to-links <workbook>",
		Short: "Turn URLs found in text cells into hyperlinks",
		Long: `To-links scans every text cell for a link and makes the cell a hyperlink.

Display modes:
  keep      show the matched link itself
  display   show the display text of the matching rule
  unified   show one fixed text for every link (--unified-text)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd.Context(), opts, "links.to-links")

			cfg := opts.Config.Links
			if cmd.Flags().Changed("mode") {
				cfg.Mode = mode
			}
			if cmd.Flags().Changed("unified-text") {
				cfg.UnifiedText = unifiedText
			}
			displayMode, err := hyperlink.ParseMode(cfg.Mode, cfg.UnifiedText)
			if err != nil {
				return err
			}

			store, err := opts.Rules(ctx)
			if err != nil {
				return err
			}

			job := hyperlink.LinkJob{
				Input:     args[0],
				Output:    flags.out,
				Selection: flags.selection(),
				Rules:     store,
				Mode:      displayMode,
			}

			opts.Console.Header(fmt.Sprintf("text → hyperlinks in %s (%s, %s)", job.Input, job.Selection, displayMode))
			return runJob(ctx, opts, operation.FamilyHyperlink, job)
		},
	}

	flags.add(cmd)
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "display mode: keep, display or unified")
	cmd.Flags().StringVar(&unifiedText, "unified-text", "", "display text for unified mode")

	return cmd
}
