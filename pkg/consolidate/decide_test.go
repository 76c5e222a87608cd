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
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

// mapView is a destination described by name → slot.
type mapView map[string]Slot

func (m mapView) Inspect(name string) (Slot, error) {
	if name == "broken.jpg" {
		return Slot{}, errors.New("disk on fire")
	}
	return m[name], nil
}

func alternatives(names ...string) func() (iter.Seq[string], error) {
	return func() (iter.Seq[string], error) {
		return slices.Values(names), nil
	}
}

var (
	free      = Slot{}
	same      = Slot{Exists: true, Identical: true}
	different = Slot{Exists: true}
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name      string
		view      mapView
		candidate string
		policy    Policy
		want      Decision
	}{
		{
			name:      "absent_is_added",
			view:      mapView{},
			candidate: "cat.jpg",
			want:      Decision{Action: ActionAdded, Name: "cat.jpg"},
		},
		{
			name:      "identical_is_skipped",
			view:      mapView{"cat.jpg": same},
			candidate: "cat.jpg",
			want:      Decision{Action: ActionSkipped, Name: "cat.jpg"},
		},
		{
			name:      "different_without_rename_is_overwritten",
			view:      mapView{"cat.jpg": different},
			candidate: "cat.jpg",
			want:      Decision{Action: ActionOverwritten, Name: "cat.jpg", Replace: true},
		},
		{
			name:      "different_with_rename_takes_free_alternative",
			view:      mapView{"cat.jpg": different},
			candidate: "cat.jpg",
			policy:    Policy{RenameOnConflict: true, Alternatives: alternatives("B_cat.jpg")},
			want:      Decision{Action: ActionRenamed, Name: "B_cat.jpg"},
		},
		{
			name:      "identical_alternative_is_skipped",
			view:      mapView{"cat.jpg": different, "B_cat.jpg": same},
			candidate: "cat.jpg",
			policy:    Policy{RenameOnConflict: true, Alternatives: alternatives("B_cat.jpg")},
			want:      Decision{Action: ActionSkipped, Name: "B_cat.jpg"},
		},
		{
			name:      "exhausted_alternatives_replace_the_last",
			view:      mapView{"cat.jpg": different, "B_cat.jpg": different},
			candidate: "cat.jpg",
			policy:    Policy{RenameOnConflict: true, Alternatives: alternatives("B_cat.jpg")},
			want:      Decision{Action: ActionRenamed, Name: "B_cat.jpg", Replace: true},
		},
		{
			name:      "sequential_skips_the_candidate_itself",
			view:      mapView{"cat.jpg": different, "cat_0.jpg": different},
			candidate: "cat.jpg",
			policy:    Policy{RenameOnConflict: true, Alternatives: alternatives("cat.jpg", "cat_0.jpg", "cat_1.jpg")},
			want:      Decision{Action: ActionRenamed, Name: "cat_1.jpg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decide(tt.view, tt.candidate, tt.policy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecideAlternativesOnlyWhenRenaming(t *testing.T) {
	calls := 0
	policy := Policy{
		RenameOnConflict: true,
		Alternatives: func() (iter.Seq[string], error) {
			calls++
			return slices.Values([]string{"x_cat.jpg"}), nil
		},
	}

	_, err := Decide(mapView{}, "cat.jpg", policy)
	require.NoError(t, err)
	_, err = Decide(mapView{"cat.jpg": same}, "cat.jpg", policy)
	require.NoError(t, err)
	assert.Zero(t, calls, "no conflict means no naming")

	_, err = Decide(mapView{"cat.jpg": different}, "cat.jpg", policy)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDecideErrors(t *testing.T) {
	t.Run("inspect_failure", func(t *testing.T) {
		_, err := Decide(mapView{}, "broken.jpg", Policy{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk on fire")
	})

	t.Run("rename_without_scheme", func(t *testing.T) {
		_, err := Decide(mapView{"cat.jpg": different}, "cat.jpg", Policy{RenameOnConflict: true})
		require.Error(t, err)
	})

	t.Run("no_alternatives", func(t *testing.T) {
		_, err := Decide(mapView{"cat.jpg": different}, "cat.jpg", Policy{RenameOnConflict: true, Alternatives: alternatives("cat.jpg")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no alternative name")
	})

	t.Run("naming_failure", func(t *testing.T) {
		policy := Policy{RenameOnConflict: true, Alternatives: func() (iter.Seq[string], error) {
			return nil, errors.New("unknown scheme")
		}}
		_, err := Decide(mapView{"cat.jpg": different}, "cat.jpg", policy)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "naming cat.jpg")
	})
}

func TestResultRecord(t *testing.T) {
	var res Result
	for _, a := range []Action{ActionAdded, ActionOverwritten, ActionRenamed, ActionSkipped, ActionSkipped} {
		res.record(a)
	}
	assert.Equal(t, Result{Total: 5, Copied: 2, Renamed: 1, Skipped: 2}, res)
	assert.Equal(t, res.Total, res.Copied+res.Renamed+res.Skipped)
}

func TestSeenSetIgnoresCase(t *testing.T) {
	seen := NewSeenSet()
	seen.Add("B_Cat.JPG")
	assert.True(t, seen.Has("b_cat.jpg"))
	assert.False(t, seen.Has("cat.jpg"))
}
