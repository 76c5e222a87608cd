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

package consolidate

import (
	"fmt"
	"strings"

	"github.com/walteh/imgcollect/pkg/events"
)

// 📊 Action is the classification of one source file
type Action int

const (
	ActionUnknown     Action = iota
	ActionAdded              // no file at the destination name
	ActionSkipped            // byte-identical file already there
	ActionRenamed            // differing file there, copied under a new name
	ActionOverwritten        // differing file there, replaced
)

// String returns a string representation of Action
func (a Action) String() string {
	switch a {
	case ActionAdded:
		return "added"
	case ActionSkipped:
		return "skipped"
	case ActionRenamed:
		return "renamed"
	case ActionOverwritten:
		return "overwritten"
	default:
		return "unknown"
	}
}

// Kind is the event emitted once the action has been carried out.
func (a Action) Kind() events.Kind {
	switch a {
	case ActionAdded:
		return events.KindCopied
	case ActionSkipped:
		return events.KindSkipped
	case ActionRenamed:
		return events.KindRenamed
	case ActionOverwritten:
		return events.KindOverwritten
	default:
		return events.KindError
	}
}

// 🧾 Decision is what to do with one source file
type Decision struct {
	Action Action
	// Name is the destination file name the file ends up under.
	Name string
	// Replace is set when Name already holds different content that will
	// be truncated and rewritten.
	Replace bool
}

func (d Decision) String() string {
	if d.Replace {
		return fmt.Sprintf("%s -> %s (replace)", d.Action, d.Name)
	}
	return fmt.Sprintf("%s -> %s", d.Action, d.Name)
}

// 📈 Result holds the counts of one run. Total always equals
// Copied + Renamed + Skipped; Deleted only moves when mirroring.
type Result struct {
	Total    int `json:"total"`
	Copied   int `json:"copied"`
	Renamed  int `json:"renamed"`
	Skipped  int `json:"skipped"`
	Deleted  int `json:"deleted"`
	Rejected int `json:"rejected,omitempty"`
}

func (r *Result) record(a Action) {
	r.Total++
	switch a {
	case ActionAdded, ActionOverwritten:
		r.Copied++
	case ActionRenamed:
		r.Renamed++
	case ActionSkipped:
		r.Skipped++
	}
}

// Fields renders the counts for the complete event.
func (r *Result) Fields() events.Fields {
	return events.Fields{
		"total":   r.Total,
		"copied":  r.Copied,
		"renamed": r.Renamed,
		"skipped": r.Skipped,
		"deleted": r.Deleted,
	}
}

// 👀 SeenSet records destination names touched during a run,
// case-insensitively.
type SeenSet map[string]struct{}

// NewSeenSet creates an empty set.
func NewSeenSet() SeenSet {
	return SeenSet{}
}

// Add records name.
func (s SeenSet) Add(name string) {
	s[strings.ToLower(name)] = struct{}{}
}

// Has reports whether name (in any case) was recorded.
func (s SeenSet) Has(name string) bool {
	_, ok := s[strings.ToLower(name)]
	return ok
}
