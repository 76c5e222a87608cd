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
	"bytes"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

const compareChunk = 32 * 1024

// 🔍 SameContent reports whether two files hold the same bytes. A size
// mismatch answers without reading; modification times are never used.
func SameContent(afs afero.Fs, a, b string) (bool, error) {
	ai, err := afs.Stat(a)
	if err != nil {
		return false, errors.Errorf("stat %s: %w", a, err)
	}
	bi, err := afs.Stat(b)
	if err != nil {
		return false, errors.Errorf("stat %s: %w", b, err)
	}
	if ai.Size() != bi.Size() {
		return false, nil
	}

	af, err := afs.Open(a)
	if err != nil {
		return false, errors.Errorf("opening %s: %w", a, err)
	}
	defer af.Close()

	bf, err := afs.Open(b)
	if err != nil {
		return false, errors.Errorf("opening %s: %w", b, err)
	}
	defer bf.Close()

	abuf := make([]byte, compareChunk)
	bbuf := make([]byte, compareChunk)
	for {
		an, aerr := io.ReadFull(af, abuf)
		bn, berr := io.ReadFull(bf, bbuf)
		if !bytes.Equal(abuf[:an], bbuf[:bn]) {
			return false, nil
		}

		aeof := aerr == io.EOF || aerr == io.ErrUnexpectedEOF
		beof := berr == io.EOF || berr == io.ErrUnexpectedEOF
		switch {
		case aerr != nil && !aeof:
			return false, errors.Errorf("reading %s: %w", a, aerr)
		case berr != nil && !beof:
			return false, errors.Errorf("reading %s: %w", b, berr)
		case aeof || beof:
			// the file changed size underneath us if only one side ended
			return aeof == beof, nil
		}
	}
}

// fsView answers Decide's questions against a destination directory for
// one source file.
type fsView struct {
	fs  afero.Fs
	dir string
	src string
}

func (v fsView) Inspect(name string) (Slot, error) {
	path := filepath.Join(v.dir, name)
	info, err := v.fs.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Slot{}, nil
	}
	if err != nil {
		return Slot{}, errors.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return Slot{Exists: true}, nil
	}

	same, err := SameContent(v.fs, v.src, path)
	if err != nil {
		return Slot{}, err
	}
	return Slot{Exists: true, Identical: same}, nil
}
