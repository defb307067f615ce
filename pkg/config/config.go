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
	"bytes"
	"context"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/walteh/filebox/pkg/hyperlink"
	"github.com/walteh/filebox/pkg/imageconv"
	"github.com/walteh/filebox/pkg/rename"
	"github.com/walteh/filebox/pkg/rules/rulefile"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is read when no config file is named; it may be absent
	DefaultPath = ".filebox.yaml"
	// EnvRulesFile overrides the rule file location
	EnvRulesFile = "FILEBOX_RULES_FILE"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse decodes data over base, keeping base values for absent keys
	Parse(ctx context.Context, data []byte, base *Config) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// ✏️ RenameConfig holds rename defaults
type RenameConfig struct {
	Prefix     string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	SortKey    string `json:"sort_key,omitempty" yaml:"sort_key,omitempty"`
	DigitWidth int    `json:"digit_width,omitempty" yaml:"digit_width,omitempty"`
	Suffix     string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
}

// 🔗 LinksConfig holds hyperlink conversion defaults
type LinksConfig struct {
	Mode        string `json:"mode,omitempty" yaml:"mode,omitempty"`
	UnifiedText string `json:"unified_text,omitempty" yaml:"unified_text,omitempty"`
}

// 🖼️ ImageConfig holds image conversion defaults
type ImageConfig struct {
	Format   string `json:"format,omitempty" yaml:"format,omitempty"`
	Compress bool   `json:"compress,omitempty" yaml:"compress,omitempty"`
	MaxSize  int    `json:"max_size,omitempty" yaml:"max_size,omitempty"`
	Quality  int    `json:"quality,omitempty" yaml:"quality,omitempty"`
	IcoSize  int    `json:"ico_size,omitempty" yaml:"ico_size,omitempty"`
}

// 📚 Config represents the complete configuration
type Config struct {
	RulesFile string       `json:"rules_file,omitempty" yaml:"rules_file,omitempty"`
	Rename    RenameConfig `json:"rename" yaml:"rename"`
	Links     LinksConfig  `json:"links" yaml:"links"`
	Image     ImageConfig  `json:"image" yaml:"image"`
}

// 🏭 Default returns the built-in configuration
func Default() *Config {
	return &Config{
		RulesFile: rulefile.DefaultPath,
		Rename: RenameConfig{
			Prefix:     rename.DefaultPrefix,
			SortKey:    rename.SortByName.String(),
			DigitWidth: rename.DefaultDigitWidth,
		},
		Links: LinksConfig{
			Mode:        hyperlink.Keep{}.String(),
			UnifiedText: hyperlink.DefaultUnifiedText,
		},
		Image: ImageConfig{
			Format:  imageconv.PNG.Ext(),
			MaxSize: imageconv.DefaultMaxSize,
			Quality: imageconv.DefaultQuality,
			IcoSize: imageconv.DefaultIcoSize,
		},
	}
}

// 🎯 Load reads the configuration at path over the defaults, then applies
// environment overrides. An empty path reads DefaultPath, which may be absent.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)

	optional := path == ""
	if optional {
		path = DefaultPath
	}
	logger.Debug().Str("path", path).Bool("optional", optional).Msg("loading configuration")

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		p := GetParser(path)
		if p == nil {
			return nil, errors.Errorf("no parser found for file: %s", path)
		}
		if cfg, err = p.Parse(ctx, data, cfg); err != nil {
			return nil, errors.Errorf("parsing config: %w", err)
		}
	case optional && os.IsNotExist(err):
		logger.Debug().Str("path", path).Msg("no config file, using defaults")
	default:
		return nil, errors.Errorf("reading config file: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadEnv loads variables from the given .env files into the process
// environment without overriding variables already set. Missing files are skipped.
func LoadEnv(ctx context.Context, files ...string) error {
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	zerolog.Ctx(ctx).Debug().Strs("files", present).Msg("loading env files")
	if err := godotenv.Load(present...); err != nil {
		return errors.Errorf("loading env files: %w", err)
	}
	return nil
}

func (cfg *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvRulesFile)); v != "" {
		cfg.RulesFile = v
	}
}

// 🔍 Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	if cfg.RulesFile == "" {
		return errors.Errorf("rules_file is required")
	}
	if rulefile.GetCodec(cfg.RulesFile) == nil {
		return errors.Errorf("rules_file %q has an unsupported extension", cfg.RulesFile)
	}
	if cfg.Rename.DigitWidth < 1 {
		return errors.Errorf("rename.digit_width must be at least 1")
	}
	if _, err := cfg.DisplayMode(); err != nil {
		return errors.Errorf("links.mode: %w", err)
	}
	if _, err := imageconv.ParseFormat(cfg.Image.Format); err != nil {
		return errors.Errorf("image.format: %w", err)
	}
	return nil
}

// RenameParams builds rename parameters for dir. An unknown sort key is kept
// so the job can warn and fall back.
func (cfg *Config) RenameParams(dir string) rename.Params {
	key, err := rename.ParseSortKey(cfg.Rename.SortKey)
	if err != nil {
		key = rename.SortKey(cfg.Rename.SortKey)
	}
	return rename.Params{
		Directory:      dir,
		Prefix:         cfg.Rename.Prefix,
		SortKey:        key,
		DigitWidth:     cfg.Rename.DigitWidth,
		SuffixOverride: cfg.Rename.Suffix,
	}
}

// DisplayMode parses the configured link display mode
func (cfg *Config) DisplayMode() (hyperlink.DisplayMode, error) {
	return hyperlink.ParseMode(cfg.Links.Mode, cfg.Links.UnifiedText)
}

// ImageParams builds image conversion parameters
func (cfg *Config) ImageParams(inputs []string, outputDir string) (imageconv.Params, error) {
	format, err := imageconv.ParseFormat(cfg.Image.Format)
	if err != nil {
		return imageconv.Params{}, err
	}
	return imageconv.Params{
		Inputs:    inputs,
		OutputDir: outputDir,
		Format:    format,
		Compression: imageconv.Compression{
			Enabled: cfg.Image.Compress,
			MaxSize: cfg.Image.MaxSize,
			Quality: cfg.Image.Quality,
		},
		IcoSize: cfg.Image.IcoSize,
	}, nil
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte, base *Config) (*Config, error) {
	cfg := *base
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}
