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
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/imgcollect/pkg/naming"
)

// hclConfig is the HCL schema of Config
type hclConfig struct {
	Sources                []string `hcl:"sources"`
	Destination            string   `hcl:"destination"`
	RenameScheme           string   `hcl:"rename_scheme,optional"`
	RenameOnlyOnConflict   bool     `hcl:"rename_only_on_conflict,optional"`
	DeleteMissingInSources bool     `hcl:"delete_missing_in_sources,optional"`
	Extensions             []string `hcl:"extensions,optional"`
	IgnorePatterns         []string `hcl:"ignore_patterns,optional"`
	VerifyImageContent     bool     `hcl:"verify_image_content,optional"`
}

// loadHCL loads a configuration from HCL data. Expressions may call
// env("NAME") to read the environment, e.g. destination = "${env("DATA_DIR")}/merged".
func loadHCL(data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
		Functions: hclFunctions(),
	}

	var raw hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &raw)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	return &Config{
		Sources:                raw.Sources,
		Destination:            raw.Destination,
		RenameScheme:           naming.Scheme(raw.RenameScheme),
		RenameOnlyOnConflict:   raw.RenameOnlyOnConflict,
		DeleteMissingInSources: raw.DeleteMissingInSources,
		Extensions:             raw.Extensions,
		IgnorePatterns:         raw.IgnorePatterns,
		VerifyImageContent:     raw.VerifyImageContent,
	}, nil
}

func hclFunctions() map[string]function.Function {
	return map[string]function.Function{
		"env": function.New(&function.Spec{
			Params: []function.Parameter{{Name: "name", Type: cty.String}},
			Type:   function.StaticReturnType(cty.String),
			Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
				return cty.StringVal(os.Getenv(args[0].AsString())), nil
			},
		}),
	}
}
