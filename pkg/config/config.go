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

package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/imgcollect/pkg/naming"
)

// DefaultExtensions are accepted when the configuration lists none.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png"}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.Base("invalid config")

// 📚 Config describes one consolidation run
type Config struct {
	Sources                []string      `json:"sources" yaml:"sources"`
	Destination            string        `json:"destination" yaml:"destination"`
	RenameScheme           naming.Scheme `json:"rename_scheme,omitempty" yaml:"rename_scheme,omitempty"`
	RenameOnlyOnConflict   bool          `json:"rename_only_on_conflict,omitempty" yaml:"rename_only_on_conflict,omitempty"`
	DeleteMissingInSources bool          `json:"delete_missing_in_sources,omitempty" yaml:"delete_missing_in_sources,omitempty"`
	Extensions             []string      `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	IgnorePatterns         []string      `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty"`
	VerifyImageContent     bool          `json:"verify_image_content,omitempty" yaml:"verify_image_content,omitempty"`

	location string
}

// 🔍 Validate checks required fields, normalizes paths and extensions, and
// fills defaults. It is safe to call more than once.
func (cfg *Config) Validate() error {
	if len(cfg.Sources) == 0 {
		return errors.Errorf("%w: sources is required", ErrInvalid)
	}
	for i, src := range cfg.Sources {
		if strings.TrimSpace(src) == "" {
			return errors.Errorf("%w: sources[%d] is empty", ErrInvalid, i)
		}
		cfg.Sources[i] = filepath.Clean(src)
	}

	if strings.TrimSpace(cfg.Destination) == "" {
		return errors.Errorf("%w: destination is required", ErrInvalid)
	}
	cfg.Destination = filepath.Clean(cfg.Destination)

	scheme, err := naming.ParseScheme(string(cfg.RenameScheme))
	if err != nil {
		return errors.Errorf("%w: rename_scheme: %s", ErrInvalid, err.Error())
	}
	cfg.RenameScheme = scheme

	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	normalized := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" || ext == "." {
			return errors.Errorf("%w: empty extension", ErrInvalid)
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if !slices.Contains(normalized, ext) {
			normalized = append(normalized, ext)
		}
	}
	cfg.Extensions = normalized

	for _, pattern := range cfg.IgnorePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("%w: bad ignore pattern %q", ErrInvalid, pattern)
		}
	}

	return nil
}

// Accepts reports whether a file extension (with dot, any case) is in the
// accepted set.
func (cfg *Config) Accepts(ext string) bool {
	return ext != "" && slices.Contains(cfg.Extensions, strings.ToLower(ext))
}

// Ignored reports whether a base name matches one of the ignore patterns.
func (cfg *Config) Ignored(name string) bool {
	for _, pattern := range cfg.IgnorePatterns {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// Location is the file the config was loaded from, if any.
func (cfg *Config) Location() string {
	return cfg.location
}

// 🔑 Hash returns a stable digest of the effective configuration
func (cfg *Config) Hash() string {
	data, err := json.Marshal(cfg)
	if err != nil {
		// Config only holds strings, bools and slices of strings.
		panic(err)
	}
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

// 📝 String returns a one-line summary of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s -> %s (%s)", strings.Join(cfg.Sources, ","), cfg.Destination, cfg.RenameScheme)
}
