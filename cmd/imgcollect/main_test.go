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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/imgcollect/pkg/activity"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	color.NoColor = true
	pterm.DisableStyling()
	t.Cleanup(func() {
		color.NoColor = false
		pterm.EnableStyling()
	})

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestCollectCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "A", "cat.jpg"), "cat from A")
	writeFile(t, filepath.Join(dir, "B", "cat.jpg"), "cat from B")
	writeFile(t, filepath.Join(dir, "B", "dog.png"), "dog")

	cfgPath := filepath.Join(dir, "collect.yaml")
	writeFile(t, cfgPath, strings.Join([]string{
		"sources:",
		"  - " + filepath.Join(dir, "A"),
		"  - " + filepath.Join(dir, "B"),
		"destination: " + filepath.Join(dir, "merged"),
		"rename_only_on_conflict: true",
	}, "\n"))

	dataDir := filepath.Join(dir, "data")
	_, stderr, err := execute(t, "collect", "-c", cfgPath, "--data-dir", dataDir)
	require.NoError(t, err, stderr)

	for name, want := range map[string]string{"cat.jpg": "cat from A", "B_cat.jpg": "cat from B", "dog.png": "dog"} {
		got, err := os.ReadFile(filepath.Join(dir, "merged", name))
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}

	assert.Contains(t, stderr, "collect_images")
	assert.Contains(t, stderr, "copied")

	logs, err := filepath.Glob(filepath.Join(dataDir, "logs", "image_merge", "collect_*.log"))
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	store, err := activity.Open(context.Background(), filepath.Join(dataDir, "activity.db"))
	require.NoError(t, err)
	defer store.Close()
	rows, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, activity.StatusComplete, rows[0].Status)

	stdout, _, err := execute(t, "activity", "--data-dir", dataDir, "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "collect_images_complete")
	assert.NotContains(t, stdout, "running")
}

func TestCollectCommandBadConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "collect.yaml")
	writeFile(t, cfgPath, "destination: out\nsurprise: true\n")

	_, _, err := execute(t, "collect", "-c", cfgPath, "--data-dir", dir, "--no-activity")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}

func TestCollectRefusesToMirrorOverActivityDB(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "A", "cat.jpg"), "cat")
	merged := filepath.Join(dir, "merged")

	cfgPath := filepath.Join(dir, "collect.yaml")
	writeFile(t, cfgPath, strings.Join([]string{
		"sources:",
		"  - " + filepath.Join(dir, "A"),
		"destination: " + merged,
		"delete_missing_in_sources: true",
	}, "\n"))

	_, _, err := execute(t, "collect", "-c", cfgPath, "--data-dir", merged)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inside the mirrored destination")
	assert.NoFileExists(t, filepath.Join(merged, "cat.jpg"), "nothing runs")

	_, _, err = execute(t, "collect", "-c", cfgPath, "--data-dir", merged, "--no-activity")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(merged, "cat.jpg"))
}

func TestActivityDisabled(t *testing.T) {
	_, _, err := execute(t, "activity", "--no-activity")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)

	stdout, _, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "imgcollect version info")
}
