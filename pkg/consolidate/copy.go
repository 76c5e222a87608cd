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
	"io"
	"os"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/h2non/filetype"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// errNameTaken means a create-if-absent lost to another writer.
var errNameTaken = errors.Base("destination name taken")

// copied describes the bytes written by copyFile.
type copied struct {
	Bytes  int64
	Digest string
}

// 📦 copyFile streams src into dst. With replace unset dst must not exist
// yet; otherwise it is truncated and rewritten. The source permission bits
// are kept.
func copyFile(afs afero.Fs, src, dst string, replace bool) (copied, error) {
	in, err := afs.Open(src)
	if err != nil {
		return copied{}, errors.Errorf("opening source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return copied{}, errors.Errorf("stat source: %w", err)
	}

	flag := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if replace {
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	out, err := afs.OpenFile(dst, flag, info.Mode().Perm())
	if err != nil {
		if !replace && errors.Is(err, os.ErrExist) {
			return copied{}, errNameTaken
		}
		return copied{}, errors.Errorf("opening destination: %w", err)
	}

	h := xxhash.New()
	n, err := io.Copy(io.MultiWriter(out, h), in)
	if err != nil {
		out.Close()
		return copied{}, errors.Errorf("copying bytes: %w", err)
	}
	if err := out.Close(); err != nil {
		return copied{}, errors.Errorf("closing destination: %w", err)
	}

	return copied{Bytes: n, Digest: strconv.FormatUint(h.Sum64(), 16)}, nil
}

// headerSize is how much of a file filetype needs to recognise it.
const headerSize = 261

// 🖼️ sniffImage reports whether path starts with the magic bytes of a known
// image format, and the detected MIME type when it does not.
func sniffImage(afs afero.Fs, path string) (bool, string, error) {
	f, err := afs.Open(path)
	if err != nil {
		return false, "", errors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, headerSize)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, "", errors.Errorf("reading %s: %w", path, err)
	}
	head = head[:n]

	if filetype.IsImage(head) {
		return true, "", nil
	}

	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return false, "unknown", nil
	}
	return false, kind.MIME.Value, nil
}
