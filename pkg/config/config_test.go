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
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/filebox/pkg/hyperlink"
	"github.com/walteh/filebox/pkg/imageconv"
	"github.com/walteh/filebox/pkg/rename"
)

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvRulesFile, "")

	tests := []struct {
		name        string
		file        string
		config      string
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "yaml_full",
			file: "filebox.yaml",
			config: `
rules_file: rules.yaml
rename:
  prefix: img
  sort_key: modified
  digit_width: 4
  suffix: jpg
links:
  mode: unified
  unified_text: 下载
image:
  format: jpeg
  compress: true
  max_size: 2000
  quality: 80
  ico_size: 64
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "rules.yaml", cfg.RulesFile, "rules file should match")
				assert.Equal(t, RenameConfig{Prefix: "img", SortKey: "modified", DigitWidth: 4, Suffix: "jpg"}, cfg.Rename)
				assert.Equal(t, LinksConfig{Mode: "unified", UnifiedText: "下载"}, cfg.Links)
				assert.Equal(t, ImageConfig{Format: "jpeg", Compress: true, MaxSize: 2000, Quality: 80, IcoSize: 64}, cfg.Image)
			},
		},
		{
			name: "yaml_partial_keeps_defaults",
			file: "filebox.yml",
			config: `
rename:
  prefix: scan
`,
			check: func(t *testing.T, cfg *Config) {
				want := Default()
				want.Rename.Prefix = "scan"
				assert.Equal(t, want, cfg, "unset keys should keep their defaults")
			},
		},
		{
			name:   "yaml_empty",
			file:   "filebox.yaml",
			config: "",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name:        "yaml_unknown_field",
			file:        "filebox.yaml",
			config:      "rename:\n  colour: red\n",
			errContains: "colour",
		},
		{
			name:   "json",
			file:   "filebox.json",
			config: `{"links": {"mode": "display"}, "image": {"format": "BMP"}}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "display", cfg.Links.Mode)
				assert.Equal(t, hyperlink.DefaultUnifiedText, cfg.Links.UnifiedText, "unset sibling keeps its default")
				assert.Equal(t, "BMP", cfg.Image.Format)
			},
		},
		{
			name:        "json_unknown_field",
			file:        "filebox.json",
			config:      `{"bogus": true}`,
			errContains: "unknown field",
		},
		{
			name: "hcl",
			file: "filebox.hcl",
			config: `
rules_file = "rules.json"

rename {
  prefix      = "doc"
  digit_width = 2
}

image {
  format   = "ico"
  ico_size = 32
}
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "rules.json", cfg.RulesFile)
				assert.Equal(t, "doc", cfg.Rename.Prefix)
				assert.Equal(t, 2, cfg.Rename.DigitWidth)
				assert.Equal(t, rename.SortByName.String(), cfg.Rename.SortKey, "unset attribute keeps its default")
				assert.Equal(t, "ico", cfg.Image.Format)
				assert.Equal(t, 32, cfg.Image.IcoSize)
				assert.Equal(t, "keep", cfg.Links.Mode, "absent block keeps its defaults")
			},
		},
		{
			name:        "hcl_syntax_error",
			file:        "filebox.hcl",
			config:      `rename {`,
			errContains: "parsing HCL",
		},
		{
			name:        "invalid_mode",
			file:        "filebox.yaml",
			config:      "links:\n  mode: shout\n",
			errContains: "links.mode",
		},
		{
			name:        "webp_output",
			file:        "filebox.yaml",
			config:      "image:\n  format: webp\n",
			errContains: "image.format",
		},
		{
			name:        "zero_digit_width",
			file:        "filebox.json",
			config:      `{"rename": {"digit_width": -1}}`,
			errContains: "digit_width",
		},
		{
			name:        "unsupported_rules_file",
			file:        "filebox.yaml",
			config:      "rules_file: rules.toml\n",
			errContains: "unsupported extension",
		},
		{
			name:        "unsupported_config_extension",
			file:        "filebox.toml",
			config:      "x = 1",
			errContains: "no parser",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.config), 0o644))

			cfg, err := Load(testContext(t), path)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadDefaultPath(t *testing.T) {
	t.Setenv(EnvRulesFile, "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := Load(testContext(t), "")
	require.NoError(t, err, "a missing default file should not be an error")
	assert.Equal(t, Default(), cfg)

	require.NoError(t, os.WriteFile(DefaultPath, []byte("rename:\n  prefix: cwd\n"), 0o644))
	cfg, err = Load(testContext(t), "")
	require.NoError(t, err)
	assert.Equal(t, "cwd", cfg.Rename.Prefix)
}

func TestLoadExplicitMissing(t *testing.T) {
	_, err := Load(testContext(t), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvRulesFile, "")

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(EnvRulesFile+"=from_env.yaml\n"), 0o644))

	require.NoError(t, os.Unsetenv(EnvRulesFile))
	require.NoError(t, LoadEnv(testContext(t), envFile, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from_env.yaml", os.Getenv(EnvRulesFile))

	path := filepath.Join(dir, "filebox.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules_file: from_file.json\n"), 0o644))

	cfg, err := Load(testContext(t), path)
	require.NoError(t, err)
	assert.Equal(t, "from_env.yaml", cfg.RulesFile, "environment should win over the file")
}

func TestLoadEnvNoFiles(t *testing.T) {
	assert.NoError(t, LoadEnv(testContext(t), filepath.Join(t.TempDir(), ".env")))
}

func TestParams(t *testing.T) {
	cfg := Default()
	cfg.Rename.SortKey = "mtime"
	cfg.Rename.Suffix = "png"

	p := cfg.RenameParams("/photos")
	assert.Equal(t, rename.Params{
		Directory:      "/photos",
		Prefix:         rename.DefaultPrefix,
		SortKey:        rename.SortByModified,
		DigitWidth:     rename.DefaultDigitWidth,
		SuffixOverride: "png",
	}, p)

	cfg.Rename.SortKey = "size"
	assert.Equal(t, rename.SortKey("size"), cfg.RenameParams("/photos").SortKey, "unknown keys are passed through for the job to warn about")

	cfg.Links = LinksConfig{Mode: "unified", UnifiedText: "网盘"}
	mode, err := cfg.DisplayMode()
	require.NoError(t, err)
	assert.Equal(t, hyperlink.Unified{Text: "网盘"}, mode)

	cfg.Image = ImageConfig{Format: "jpg", Compress: true, MaxSize: 800, Quality: 60, IcoSize: 48}
	ip, err := cfg.ImageParams([]string{"a.png"}, "/out")
	require.NoError(t, err)
	assert.Equal(t, imageconv.Params{
		Inputs:      []string{"a.png"},
		OutputDir:   "/out",
		Format:      imageconv.JPEG,
		Compression: imageconv.Compression{Enabled: true, MaxSize: 800, Quality: 60},
		IcoSize:     48,
	}, ip)
}
