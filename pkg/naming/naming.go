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

// Package naming produces destination names for files whose natural name
// is already taken by different content.
package naming

import (
	"fmt"
	"iter"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// 🏷️ Scheme selects how a replacement name is built
type Scheme string

const (
	SourcePrefix  Scheme = "source_prefix"
	TimestampHash Scheme = "timestamp_hash"
	Sequential    Scheme = "sequential"
)

// DefaultScheme is used when the configuration names none.
const DefaultScheme = SourcePrefix

const timestampLayout = "20060102_150405"

// ErrUnknownScheme is returned for scheme identifiers outside the known set.
var ErrUnknownScheme = errors.Base("unknown rename scheme")

// ParseScheme validates a scheme identifier. The empty string maps to
// DefaultScheme.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.TrimSpace(s)) {
	case "":
		return DefaultScheme, nil
	case SourcePrefix:
		return SourcePrefix, nil
	case TimestampHash:
		return TimestampHash, nil
	case Sequential:
		return Sequential, nil
	default:
		return "", errors.Errorf("%w: %q", ErrUnknownScheme, s)
	}
}

// Split returns the stem of a file name with its original case and the
// lower-cased extension including the dot.
func Split(name string) (stem, ext string) {
	base := filepath.Base(name)
	ext = filepath.Ext(base)
	return strings.TrimSuffix(base, ext), strings.ToLower(ext)
}

// 🧭 Namer builds names against a destination filesystem
type Namer struct {
	Fs    afero.Fs
	Clock func() time.Time
}

// 🏭 New creates a namer on fs using the wall clock
func New(fs afero.Fs) *Namer {
	return &Namer{Fs: fs, Clock: time.Now}
}

func (n *Namer) now() time.Time {
	if n.Clock == nil {
		return time.Now()
	}
	return n.Clock()
}

// Candidates yields names for srcPath in preference order. source_prefix
// and timestamp_hash yield exactly one name; sequential never ends, so
// callers must stop ranging once they find a usable name.
func (n *Namer) Candidates(scheme Scheme, srcPath string) (iter.Seq[string], error) {
	stem, ext := Split(srcPath)

	switch scheme {
	case SourcePrefix:
		prefix := filepath.Base(filepath.Dir(srcPath))
		name := fmt.Sprintf("%s_%s%s", prefix, stem, ext)
		return single(name), nil
	case TimestampHash:
		name := fmt.Sprintf("%s_%s%s", Timestamp(n.now()), stem, ext)
		return single(name), nil
	case Sequential:
		return func(yield func(string) bool) {
			if !yield(stem + ext) {
				return
			}
			for i := 0; ; i++ {
				if !yield(fmt.Sprintf("%s_%d%s", stem, i, ext)) {
					return
				}
			}
		}, nil
	default:
		return nil, errors.Errorf("%w: %q", ErrUnknownScheme, string(scheme))
	}
}

// 🎯 Unique returns a name for srcPath inside destDir. For sequential the
// name is guaranteed absent at the moment of the check; the other schemes
// return their single name without checking.
//
// The check and the later create are separate steps, so two writers
// probing the same directory can pick the same name. The engine does not
// call Unique: it walks Candidates and claims names with create-if-absent.
// Unique is the standalone form for callers that only need a name.
func (n *Namer) Unique(scheme Scheme, destDir, srcPath string) (string, error) {
	seq, err := n.Candidates(scheme, srcPath)
	if err != nil {
		return "", err
	}

	if scheme != Sequential {
		for name := range seq {
			return name, nil
		}
	}

	for name := range seq {
		exists, err := afero.Exists(n.Fs, filepath.Join(destDir, name))
		if err != nil {
			return "", errors.Errorf("checking %s: %w", name, err)
		}
		if !exists {
			return name, nil
		}
	}

	// unreachable: the sequential sequence is infinite
	return "", errors.Errorf("no free name for %s", srcPath)
}

// Timestamp renders t with microsecond resolution, e.g. 20250102_150405_123456.
func Timestamp(t time.Time) string {
	return fmt.Sprintf("%s_%06d", t.Format(timestampLayout), t.Nanosecond()/int(time.Microsecond))
}

func single(name string) iter.Seq[string] {
	return func(yield func(string) bool) {
		yield(name)
	}
}
