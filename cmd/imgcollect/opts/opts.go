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

package opts

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// DefaultDataDir is used when neither --data-dir nor DATA_DIR is set.
const DefaultDataDir = "data"

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Debug      bool
	DataDir    string
	ActivityDB string
	NoActivity bool
}

// ApplyEnv lets DATA_DIR stand in for a --data-dir the user did not pass.
func (o *RootOpts) ApplyEnv(flagSet bool) {
	if flagSet {
		return
	}
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		o.DataDir = dir
	}
}

// ActivityPath is where the activity database lives, or "" when activity
// recording is off.
func (o *RootOpts) ActivityPath() string {
	if o.NoActivity {
		return ""
	}
	if o.ActivityDB != "" {
		return o.ActivityDB
	}
	return filepath.Join(o.DataDir, "activity.db")
}

// Level is the run log level implied by --debug.
func (o *RootOpts) Level() zerolog.Level {
	if o.Debug {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
