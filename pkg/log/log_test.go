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

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/filebox/pkg/event"
	"gitlab.com/tozd/go/errors"
)

func TestLogger(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "emit_job_events",
			op: func(t *testing.T, logger *Logger) {
				logger.Emit(event.Success("a.txt → file_001.txt"))
				logger.Emit(event.Warning(nil, "conflict: 'file_002.txt' already exists, skipping b.txt"))
				logger.Emit(event.Error(nil, "failed to rename c.txt - permission denied"))
				logger.Emit(event.End())
			},
			wantLogs: []string{
				"✅ a.txt → file_001.txt",
				"⚠️  conflict: 'file_002.txt' already exists, skipping b.txt",
				"❌ failed to rename c.txt - permission denied",
				"◆ done • 1 ok • 1 warnings • 1 errors",
			},
		},
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("info message")
				logger.Warning("warning message")
				logger.Error("error message")
				logger.Success("success message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✅ success message",
			},
		},
		{
			name: "log_formatted_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Infof("info %s", "test")
				logger.Warningf("warning %s", "test")
				logger.Successf("success %s", "test")
			},
			wantLogs: []string{
				"ℹ️  info test",
				"⚠️  warning test",
				"✅ success test",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("renaming /tmp/photos")
			},
			wantLogs: []string{
				"filebox • renaming /tmp/photos",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create buffer for console output
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.Nop())

			tt.op(t, logger)

			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestTallyResetsOnEnd(t *testing.T) {
	logger := New(io.Discard, zerolog.Nop())
	logger.Emit(event.Success("one"))
	logger.Emit(event.Success("two"))
	logger.Emit(event.Error(nil, "three"))
	assert.Equal(t, Tally{Success: 2, Error: 1}, logger.Tally())

	logger.Emit(event.End())
	assert.Equal(t, Tally{}, logger.Tally())
}

func TestMirrorsToZerolog(t *testing.T) {
	var mirror bytes.Buffer
	logger := New(io.Discard, zerolog.New(&mirror))

	logger.Emit(event.Warning(errors.New("exists"), "conflict"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(mirror.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "warning", entry["kind"])
	assert.Equal(t, "conflict", entry["message"])
	assert.Equal(t, "exists", entry["error"])
}

func TestLoggerContext(t *testing.T) {
	logger := New(io.Discard, zerolog.Nop())

	ctx := context.Background()
	ctx = NewContext(ctx, logger)

	got := FromContext(ctx)
	assert.Same(t, logger, got, "logger from context should be the same instance")

	assert.Panics(t, func() {
		FromContext(context.Background())
	}, "FromContext should panic when logger is missing")
}
