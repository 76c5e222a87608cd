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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// Load reads a configuration file from path and validates it.
// The format is determined by the file extension:
// - .json for JSON
// - .yaml or .yml for YAML
// - .hcl for HCL
// - .imgcollect (no extension) will try JSON, then YAML, then HCL
func Load(ctx context.Context, path string) (*Config, error) {
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	cfg.location = path

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	zerolog.Ctx(ctx).Debug().
		Strs("sources", cfg.Sources).
		Str("destination", cfg.Destination).
		Str("rename_scheme", string(cfg.RenameScheme)).
		Msg("configuration loaded")

	return cfg, nil
}

// Parse decodes data in the format implied by filename. It does not
// validate.
func Parse(data []byte, filename string) (*Config, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	if ext == ".imgcollect" || filepath.Base(filename) == ".imgcollect" {
		var errs []error
		for _, load := range []func() (*Config, error){
			func() (*Config, error) { return loadJSON(data) },
			func() (*Config, error) { return loadYAML(data) },
			func() (*Config, error) { return loadHCL(data, filename) },
		} {
			cfg, err := load()
			if err == nil {
				return cfg, nil
			}
			errs = append(errs, err)
		}
		return nil, errors.Errorf("failed to parse %s as JSON, YAML or HCL: %w", filename, errors.Join(errs...))
	}

	switch ext {
	case ".json":
		return loadJSON(data)
	case ".yaml", ".yml":
		return loadYAML(data)
	case ".hcl":
		return loadHCL(data, filename)
	default:
		return nil, errors.Errorf("unsupported file extension %q", ext)
	}
}

// loadJSON loads a configuration from JSON data
func loadJSON(data []byte) (*Config, error) {
	var cfg Config
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}
	return &cfg, nil
}

// loadYAML loads a configuration from YAML data
func loadYAML(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}
