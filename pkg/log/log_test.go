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
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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
			name: "log_file_operation",
			op: func(t *testing.T, logger *Logger) {
				logger.LogFileOperation(context.Background(), FileOperation{
					Source: "/data/A/cat.jpg",
					Dest:   "cat.jpg",
					Action: "added",
				})
			},
			wantLogs: []string{
				"✓ cat.jpg                             added",
			},
		},
		{
			name: "log_run_operation",
			op: func(t *testing.T, logger *Logger) {
				logger.StartRun(context.Background(), RunOperation{
					Action:      "collect_images",
					Sources:     []string{"/data/A", "/data/B"},
					Destination: "/data/merged",
					Scheme:      "source_prefix",
				})
			},
			wantLogs: []string{
				"[collecting into /data/merged]",
				"◆ /data/A • source_prefix",
				"◆ /data/B • source_prefix",
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
				logger.Errorf("error %s", "test")
				logger.Successf("success %s", "test")
			},
			wantLogs: []string{
				"ℹ️  info test",
				"⚠️  warning test",
				"❌ error test",
				"✅ success test",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("collecting images")
			},
			wantLogs: []string{
				"imgcollect • collecting images",
			},
		},
		{
			name: "log_newline",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("first")
				logger.LogNewline()
				logger.Info("second")
			},
			wantLogs: []string{
				"ℹ️  first",
				"",
				"ℹ️  second",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, io.Discard, zerolog.InfoLevel)

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

func TestLoggerContext(t *testing.T) {
	logger := New(io.Discard, io.Discard, zerolog.InfoLevel)

	ctx := NewContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx), "logger from context should be the same instance")

	assert.NotPanics(t, func() {
		FromContext(context.Background()).Info("dropped")
	}, "a missing logger falls back to a no-op logger")
}

func TestFileOperationFormatting(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name string
		op   FileOperation
		want string
	}{
		{
			name: "renamed_with_detail",
			op:   FileOperation{Source: "/B/cat.jpg", Dest: "B_cat.jpg", Action: "renamed", Detail: "from cat.jpg"},
			want: "    ↪ B_cat.jpg                           renamed      from cat.jpg",
		},
		{
			name: "deleted",
			op:   FileOperation{Dest: "old.jpg", Action: "deleted"},
			want: "    ✗ old.jpg                             deleted",
		},
		{
			name: "skipped_falls_back_to_source",
			op:   FileOperation{Source: "dog.png", Action: "skipped"},
			want: "    - dog.png                             skipped",
		},
		{
			name: "long_names_widen_the_column",
			op:   FileOperation{Dest: strings.Repeat("x", 40) + ".png", Action: "overwritten"},
			want: "    ⟳ " + strings.Repeat("x", 40) + ".png overwritten",
		},
	}

	logger := New(io.Discard, io.Discard, zerolog.InfoLevel)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.formatFileOperation(tt.op))
		})
	}
}

func TestRunFileReceivesPlainLog(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	dir := RunFileDir(t.TempDir(), "image_merge")
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local)

	f, err := OpenRunFile(dir, "collect", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "collect_20250102_030405.log"), f.Name())

	logger := New(io.Discard, f, zerolog.InfoLevel)
	ctx := context.Background()
	logger.StartRun(ctx, RunOperation{Action: "collect_images", Sources: []string{"/a"}, Destination: "/d"})
	logger.LogFileOperation(ctx, FileOperation{Source: "/a/x.jpg", Dest: "x.jpg", Action: "added"})
	logger.Warning("Source not found: /b")
	logger.EndRun(ctx, Totals{Total: 1, Copied: 1})
	logger.EndRun(ctx, Totals{})
	require.NoError(t, f.Close())

	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "=== starting collect_images ===")
	assert.Contains(t, text, "[ADDED]")
	assert.Contains(t, text, "Source not found: /b")
	assert.Contains(t, text, "=== collect_images complete ===")
	assert.Contains(t, text, "files=1")
	assert.Equal(t, 1, strings.Count(text, "complete ==="), "EndRun without a run is a no-op")
	assert.NotContains(t, text, "\x1b[", "run log must not contain color codes")
}
