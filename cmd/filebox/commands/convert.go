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
	"os"

	"github.com/spf13/cobra"
	"github.com/walteh/filebox/cmd/filebox/opts"
	"github.com/walteh/filebox/pkg/imageconv"
	"github.com/walteh/filebox/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// NewConvertCmd creates a new convert command
func NewConvertCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		outDir   string
		format   string
		compress bool
		maxSize  int
		quality  int
		icoSize  int
		patterns []string
	)

	cmd := &cobra.Command{
		Use:   "convert <file|dir>...",
		Short: "Convert images to another format",
		Long: `Convert writes each input image to --out as <name>.<format>.

Directories are expanded to the images they contain; --pattern selects
other paths (doublestar syntax, e.g. "**/*.png"). A failed image is
reported and the batch continues.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd.Context(), opts, "convert")

			inputs, err := expandInputs(args, patterns)
			if err != nil {
				return err
			}

			cfg := opts.Config.Image
			flags := cmd.Flags()
			if flags.Changed("format") {
				cfg.Format = format
			}
			if flags.Changed("compress") {
				cfg.Compress = compress
			}
			if flags.Changed("max-size") {
				cfg.MaxSize = maxSize
			}
			if flags.Changed("quality") {
				cfg.Quality = quality
			}
			if flags.Changed("ico-size") {
				cfg.IcoSize = icoSize
			}
			resolved := *opts.Config
			resolved.Image = cfg

			params, err := resolved.ImageParams(inputs, outDir)
			if err != nil {
				return err
			}

			opts.Console.Header(fmt.Sprintf("converting %d images to %s", len(inputs), params.Format))
			return runJob(ctx, opts, operation.FamilyImage, imageconv.Job{Params: params})
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: png, jpeg, bmp or ico")
	cmd.Flags().BoolVar(&compress, "compress", false, "bound dimensions and apply --quality")
	cmd.Flags().IntVar(&maxSize, "max-size", 0, "longest edge when compressing")
	cmd.Flags().IntVar(&quality, "quality", 0, "encoder quality 1-100 when compressing")
	cmd.Flags().IntVar(&icoSize, "ico-size", 0, "icon edge length for ico output")
	cmd.Flags().StringSliceVar(&patterns, "pattern", nil, "pattern selecting images inside directory inputs")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

// expandInputs replaces directory arguments with the images they hold
func expandInputs(args, patterns []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, errors.Errorf("reading input %s: %w", arg, err)
		}
		if !info.IsDir() {
			inputs = append(inputs, arg)
			continue
		}
		found, err := imageconv.Collect(arg, patterns...)
		if err != nil {
			return nil, errors.Errorf("collecting images in %s: %w", arg, err)
		}
		inputs = append(inputs, found...)
	}
	if len(inputs) == 0 {
		return nil, errors.Errorf("no images found in %v: %w", args, imageconv.ErrInvalidInput)
	}
	return inputs, nil
}
