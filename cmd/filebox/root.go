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

package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/filebox/cmd/filebox/commands"
	"github.com/walteh/filebox/cmd/filebox/opts"
	"github.com/walteh/filebox/pkg/config"
	"github.com/walteh/filebox/pkg/log"
	"github.com/walteh/filebox/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile string
	rulesFile  string
	debug      bool
)

// newRootCmd builds the command tree. Options are filled in once flags are parsed.
func newRootCmd() *cobra.Command {
	rootOpts := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:   "filebox",
		Short: "Batch file utilities: rename, spreadsheet hyperlinks, image conversion",
		Long: `filebox runs batch jobs over local files:

  rename    renumber every entry of a folder as <prefix>_<NNN><ext>
  links     turn spreadsheet URLs into hyperlinks, or hyperlinks back into text
  convert   convert images between PNG, JPEG, BMP and ICO
  rules     manage the link extraction rules used by "links to-links"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context())
			cmd.SetContext(ctx)
			return newRootOpts(ctx, rootOpts)
		},
	}

	addRootFlags(cmd)

	cmd.AddCommand(
		commands.NewRenameCmd(rootOpts),
		commands.NewLinksCmd(rootOpts),
		commands.NewConvertCmd(rootOpts),
		commands.NewRulesCmd(rootOpts),
		newVersionCmd(),
	)

	return cmd
}

// newRootOpts loads configuration into o
func newRootOpts(ctx context.Context, o *opts.RootOpts) error {
	if err := config.LoadEnv(ctx, ".env"); err != nil {
		return err
	}

	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}
	if rulesFile != "" {
		cfg.RulesFile = rulesFile
		if err := cfg.Validate(); err != nil {
			return errors.Errorf("validating --rules: %w", err)
		}
	}

	// the console mirror only reaches zerolog when debugging
	mirror := zerolog.Nop()
	if debug {
		mirror = *zerolog.Ctx(ctx)
	}

	o.Config = cfg
	o.Console = log.New(os.Stdout, mirror)
	o.Runner = operation.NewRunner()
	o.Out = os.Stdout
	return nil
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default "+config.DefaultPath+" when present)")
	cmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "rule file path, overriding the config and "+config.EnvRulesFile)
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging(ctx context.Context) context.Context {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger.WithContext(ctx)
}
