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

package naming

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixed = time.Date(2025, 3, 14, 15, 9, 26, 535897000, time.UTC)

func newTestNamer(t *testing.T, existing ...string) (*Namer, string) {
	t.Helper()
	fs := afero.NewMemMapFs()
	dest := "/dest"
	require.NoError(t, fs.MkdirAll(dest, 0o755))
	for _, name := range existing {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(dest, name), []byte(name), 0o644))
	}
	return &Namer{Fs: fs, Clock: func() time.Time { return fixed }}, dest
}

func TestParseScheme(t *testing.T) {
	tests := []struct {
		in      string
		want    Scheme
		wantErr bool
	}{
		{in: "", want: SourcePrefix},
		{in: "source_prefix", want: SourcePrefix},
		{in: "timestamp_hash", want: TimestampHash},
		{in: " sequential ", want: Sequential},
		{in: "random", wantErr: true},
		{in: "SEQUENTIAL", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScheme(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnknownScheme)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitKeepsStemCase(t *testing.T) {
	stem, ext := Split("/src/A/MyCat.JPG")
	assert.Equal(t, "MyCat", stem)
	assert.Equal(t, ".jpg", ext)

	stem, ext = Split("archive.tar.PNG")
	assert.Equal(t, "archive.tar", stem)
	assert.Equal(t, ".png", ext)
}

func TestUnique(t *testing.T) {
	tests := []struct {
		name     string
		scheme   Scheme
		src      string
		existing []string
		want     string
	}{
		{
			name:   "source_prefix_uses_parent_dir",
			scheme: SourcePrefix,
			src:    "/data/B/cat.JPG",
			want:   "B_cat.jpg",
		},
		{
			name:     "source_prefix_not_rechecked",
			scheme:   SourcePrefix,
			src:      "/data/B/cat.jpg",
			existing: []string{"B_cat.jpg"},
			want:     "B_cat.jpg",
		},
		{
			name:   "timestamp_uses_clock",
			scheme: TimestampHash,
			src:    "/data/A/dog.png",
			want:   "20250314_150926_535897_dog.png",
		},
		{
			name:   "sequential_free_base",
			scheme: Sequential,
			src:    "/data/A/cat.jpg",
			want:   "cat.jpg",
		},
		{
			name:     "sequential_starts_at_zero",
			scheme:   Sequential,
			src:      "/data/A/cat.jpg",
			existing: []string{"cat.jpg"},
			want:     "cat_0.jpg",
		},
		{
			name:     "sequential_skips_taken",
			scheme:   Sequential,
			src:      "/data/A/cat.jpg",
			existing: []string{"cat.jpg", "cat_0.jpg", "cat_1.jpg"},
			want:     "cat_2.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, dest := newTestNamer(t, tt.existing...)
			got, err := n.Unique(tt.scheme, dest, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSequentialNeverReturnsExisting(t *testing.T) {
	existing := []string{"x.png"}
	for i := 0; i < 25; i++ {
		n, dest := newTestNamer(t, existing...)
		got, err := n.Unique(Sequential, dest, "/src/x.png")
		require.NoError(t, err)

		exists, err := afero.Exists(n.Fs, filepath.Join(dest, got))
		require.NoError(t, err)
		assert.False(t, exists, "name %s must be free", got)
		assert.NotContains(t, existing, got)
		existing = append(existing, got)
	}
}

func TestUnknownSchemeFailsFast(t *testing.T) {
	n, dest := newTestNamer(t)
	_, err := n.Unique(Scheme("hash_only"), dest, "/src/a.jpg")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownScheme)

	_, err = n.Candidates(Scheme(""), "/src/a.jpg")
	assert.ErrorIs(t, err, ErrUnknownScheme)
}

func TestCandidatesSequentialOrder(t *testing.T) {
	n, _ := newTestNamer(t)
	seq, err := n.Candidates(Sequential, "/src/Cat.jpeg")
	require.NoError(t, err)

	var got []string
	for name := range seq {
		got = append(got, name)
		if len(got) == 4 {
			break
		}
	}
	assert.Equal(t, []string{"Cat.jpeg", "Cat_0.jpeg", "Cat_1.jpeg", "Cat_2.jpeg"}, got)
}

func TestTimestampResolution(t *testing.T) {
	assert.Equal(t, "20250314_150926_535897", Timestamp(fixed))
	assert.Equal(t, "20250314_150926_000001", Timestamp(time.Date(2025, 3, 14, 15, 9, 26, 1000, time.UTC)))
}
