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
	"iter"

	"gitlab.com/tozd/go/errors"
)

// Slot is what a destination name currently holds relative to one source
// file.
type Slot struct {
	Exists    bool
	Identical bool
}

// 🔭 View answers questions about destination state for one source file.
type View interface {
	Inspect(name string) (Slot, error)
}

// Policy controls conflict handling.
type Policy struct {
	RenameOnConflict bool
	// Alternatives produces replacement names in preference order. It is
	// called only when a rename is needed.
	Alternatives func() (iter.Seq[string], error)
}

// 🧠 Decide classifies a source file whose natural destination name is
// candidate. It performs no writes; everything it knows about the
// destination comes from v.
//
// On a rename it walks the alternatives: the first free name is taken, and
// a name already holding identical content turns the file into a skip, so
// re-running over the same sources stays idempotent. When a finite list of
// alternatives is exhausted the last one is replaced.
func Decide(v View, candidate string, p Policy) (Decision, error) {
	slot, err := v.Inspect(candidate)
	if err != nil {
		return Decision{}, errors.Errorf("inspecting %s: %w", candidate, err)
	}

	switch {
	case !slot.Exists:
		return Decision{Action: ActionAdded, Name: candidate}, nil
	case slot.Identical:
		return Decision{Action: ActionSkipped, Name: candidate}, nil
	case !p.RenameOnConflict:
		return Decision{Action: ActionOverwritten, Name: candidate, Replace: true}, nil
	}

	if p.Alternatives == nil {
		return Decision{}, errors.New("rename requested without a naming scheme")
	}
	alts, err := p.Alternatives()
	if err != nil {
		return Decision{}, errors.Errorf("naming %s: %w", candidate, err)
	}

	last := ""
	for name := range alts {
		if name == candidate {
			continue
		}
		s, err := v.Inspect(name)
		if err != nil {
			return Decision{}, errors.Errorf("inspecting %s: %w", name, err)
		}
		if !s.Exists {
			return Decision{Action: ActionRenamed, Name: name}, nil
		}
		if s.Identical {
			return Decision{Action: ActionSkipped, Name: name}, nil
		}
		last = name
	}

	if last == "" {
		return Decision{}, errors.Errorf("no alternative name for %s", candidate)
	}
	return Decision{Action: ActionRenamed, Name: last, Replace: true}, nil
}
