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

/*
Package config loads filebox defaults.

🎯 Purpose:
- Default values for rename, link and image jobs
- One file in YAML, JSON or HCL, picked by extension
- Environment overrides, optionally from a .env file

🔄 Flow:
1. Start from Default()
2. Decode the config file over it (keys left out keep their defaults)
3. Apply FILEBOX_RULES_FILE
4. Validate

Command-line flags are applied by the caller after Load.

🔍 Example:

	cfg, err := config.Load(ctx, "")
	if err != nil {
		return err
	}
	params := cfg.RenameParams("./photos")

A YAML file:

	rules_file: filebox_rules.yaml
	rename:
	  prefix: img
	  digit_width: 4
	links:
	  mode: unified
	  unified_text: 下载
	image:
	  format: jpeg
	  compress: true
	  max_size: 2000
	  quality: 80
*/
package config
