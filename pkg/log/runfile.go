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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gitlab.com/tozd/go/errors"
)

// RunFileDir is where per-run log files of an action live, relative to the
// data directory.
func RunFileDir(dataDir, action string) string {
	return filepath.Join(dataDir, "logs", action)
}

// 📄 OpenRunFile creates {dir}/{prefix}_{YYYYMMDD_HHMMSS}.log, truncating a
// file of the same second.
func OpenRunFile(dir, prefix string, now time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Errorf("creating log directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.log", prefix, now.Format("20060102_150405")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Errorf("opening run log: %w", err)
	}
	return f, nil
}
