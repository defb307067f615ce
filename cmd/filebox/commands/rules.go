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

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/filebox/cmd/filebox/opts"
	"github.com/walteh/filebox/pkg/rules"
	"gitlab.com/tozd/go/errors"
)

// NewRulesCmd creates the rules command group
func NewRulesCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage link extraction rules",
		Long: `Rules lists and edits the patterns "links to-links" uses to find links.

Built-in rules always come first and cannot be changed. Custom rules are
stored in the rule file (see --rules) in the order they were added.`,
	}

	cmd.AddCommand(
		newRulesListCmd(opts),
		newRulesAddCmd(opts),
		newRulesEditCmd(opts),
		newRulesDeleteCmd(opts),
	)

	return cmd
}

func newRulesListCmd(opts *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rules in match order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd.Context(), opts, "rules.list")

			store, err := opts.Rules(ctx)
			if err != nil {
				return err
			}

			table, err := renderRules(store.List())
			if err != nil {
				return err
			}
			fmt.Fprintln(opts.Out, table)
			return nil
		},
	}
}

// renderRules formats a Store.List result as a table; built-ins lead the list
func renderRules(rs []rules.Rule) (string, error) {
	builtins := len(rules.Builtins())
	data := pterm.TableData{{"#", "Name", "Pattern", "Display", "Source"}}
	for i, r := range rs {
		source := "custom"
		if i < builtins {
			source = "built-in"
		}
		data = append(data, []string{fmt.Sprint(i + 1), r.Name, r.Pattern, r.Display, source})
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", errors.Errorf("rendering rule table: %w", err)
	}
	return out, nil
}

func newRulesAddCmd(opts *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <pattern> <display>",
		Short: "Add or overwrite a custom rule",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd.Context(), opts, "rules.add")

			store, err := opts.Rules(ctx)
			if err != nil {
				return err
			}
			if err := store.Add(ctx, args[0], args[1], args[2]); err != nil {
				return err
			}
			opts.Console.Successf("added rule %s", args[0])
			return nil
		},
	}
}

func newRulesEditCmd(opts *opts.RootOpts) *cobra.Command {
	var name, pattern, display string

	cmd := &cobra.Command{
		Use:   "edit <name>",
		Short: "Change a custom rule",
		Long: `Edit replaces the custom rule <name>. Fields without a flag keep their
current value; --name renames the rule.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd.Context(), opts, "rules.edit")

			store, err := opts.Rules(ctx)
			if err != nil {
				return err
			}

			current, ok := store.Get(args[0])
			if !ok {
				return errors.Errorf("editing %q: %w", args[0], rules.ErrRuleNotFound)
			}

			flags := cmd.Flags()
			if !flags.Changed("name") {
				name = current.Name
			}
			if !flags.Changed("pattern") {
				pattern = current.Pattern
			}
			if !flags.Changed("display") {
				display = current.Display
			}

			if err := store.Edit(ctx, args[0], name, pattern, display); err != nil {
				return err
			}
			opts.Console.Successf("updated rule %s", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new rule name")
	cmd.Flags().StringVar(&pattern, "pattern", "", "new regular expression")
	cmd.Flags().StringVar(&display, "display", "", "new display text")

	return cmd
}

func newRulesDeleteCmd(opts *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a custom rule",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd.Context(), opts, "rules.delete")

			store, err := opts.Rules(ctx)
			if err != nil {
				return err
			}
			if err := store.Delete(ctx, args[0]); err != nil {
				return err
			}
			opts.Console.Successf("deleted rule %s", args[0])
			return nil
		},
	}
}
