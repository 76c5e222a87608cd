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

package status

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/walteh/imgcollect/pkg/events"
)

// Formatter renders tracker state for humans
type Formatter interface {
	// FormatAction formats one per-file event
	FormatAction(kind events.Kind, file string) string
	// FormatJob formats a one-line job summary
	FormatJob(job Job) string
	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFormatter provides a default implementation of Formatter
type DefaultFormatter struct{}

// NewDefaultFormatter creates a new DefaultFormatter
func NewDefaultFormatter() *DefaultFormatter {
	return &DefaultFormatter{}
}

// FormatAction formats a per-file event with emojis
func (f *DefaultFormatter) FormatAction(kind events.Kind, file string) string {
	name := filepath.Base(file)
	if file == "" {
		name = ""
	}
	switch kind {
	case events.KindCopied:
		return fmt.Sprintf("✨ Copied %s", name)
	case events.KindRenamed:
		return fmt.Sprintf("🔀 Renamed %s", name)
	case events.KindOverwritten:
		return fmt.Sprintf("📝 Overwrote %s", name)
	case events.KindDeleted:
		return fmt.Sprintf("🗑️  Deleted %s", name)
	case events.KindRejected:
		return fmt.Sprintf("🚫 Rejected %s", name)
	case events.KindMissing:
		return fmt.Sprintf("⚠️  Missing %s", file)
	default:
		return fmt.Sprintf("👍 Unchanged %s", name)
	}
}

// FormatJob formats a job with its counts and, once finished, its duration
func (f *DefaultFormatter) FormatJob(job Job) string {
	c := job.Counts
	counts := fmt.Sprintf("%d files (%d copied, %d renamed, %d skipped, %d deleted)",
		c.Total, c.Copied, c.Renamed, c.Skipped, c.Deleted)
	id := job.ID.String()[:8]

	switch job.State {
	case StateComplete:
		return fmt.Sprintf("✅ %s %s complete: %s in %s", job.Action, id, counts, job.Duration().Round(time.Millisecond))
	case StateFailed:
		return fmt.Sprintf("❌ %s %s failed after %s: %s", job.Action, id, counts, job.Err)
	default:
		return fmt.Sprintf("⏳ %s %s running: %s", job.Action, id, counts)
	}
}

// FormatError formats an error message with emoji
func (f *DefaultFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
