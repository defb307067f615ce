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

package config

import (
	"context"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte, base *Config) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "filebox.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	// Define HCL schema
	type hclConfig struct {
		RulesFile *string `hcl:"rules_file,optional"`
		Rename    *struct {
			Prefix     *string `hcl:"prefix,optional"`
			SortKey    *string `hcl:"sort_key,optional"`
			DigitWidth *int    `hcl:"digit_width,optional"`
			Suffix     *string `hcl:"suffix,optional"`
		} `hcl:"rename,block"`
		Links *struct {
			Mode        *string `hcl:"mode,optional"`
			UnifiedText *string `hcl:"unified_text,optional"`
		} `hcl:"links,block"`
		Image *struct {
			Format   *string `hcl:"format,optional"`
			Compress *bool   `hcl:"compress,optional"`
			MaxSize  *int    `hcl:"max_size,optional"`
			Quality  *int    `hcl:"quality,optional"`
			IcoSize  *int    `hcl:"ico_size,optional"`
		} `hcl:"image,block"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Merge over the base
	cfg := *base
	set(&cfg.RulesFile, hclCfg.RulesFile)
	if r := hclCfg.Rename; r != nil {
		set(&cfg.Rename.Prefix, r.Prefix)
		set(&cfg.Rename.SortKey, r.SortKey)
		set(&cfg.Rename.DigitWidth, r.DigitWidth)
		set(&cfg.Rename.Suffix, r.Suffix)
	}
	if l := hclCfg.Links; l != nil {
		set(&cfg.Links.Mode, l.Mode)
		set(&cfg.Links.UnifiedText, l.UnifiedText)
	}
	if i := hclCfg.Image; i != nil {
		set(&cfg.Image.Format, i.Format)
		set(&cfg.Image.Compress, i.Compress)
		set(&cfg.Image.MaxSize, i.MaxSize)
		set(&cfg.Image.Quality, i.Quality)
		set(&cfg.Image.IcoSize, i.IcoSize)
	}

	return &cfg, nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
