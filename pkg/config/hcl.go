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
	"context"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	// Define HCL schema
	type hclConfig struct {
		Report *struct {
			LogFile      string `hcl:"log_file,optional"`
			TradeHistory string `hcl:"trade_history,optional"`
			Conditions   string `hcl:"conditions,optional"`
			Analysis     string `hcl:"analysis,optional"`
			Output       string `hcl:"output,optional"`
		} `hcl:"report,block"`
		Analyze *struct {
			TradeHistory string `hcl:"trade_history,optional"`
			Output       string `hcl:"output,optional"`
		} `hcl:"analyze,block"`
		Backup *struct {
			Files []string `hcl:"files,optional"`
			Store string   `hcl:"store,optional"`
			Dir   string   `hcl:"dir,optional"`
		} `hcl:"backup,block"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{}
	if hclCfg.Report != nil {
		cfg.Report = ReportArgs{
			LogFile:      hclCfg.Report.LogFile,
			TradeHistory: hclCfg.Report.TradeHistory,
			Conditions:   hclCfg.Report.Conditions,
			Analysis:     hclCfg.Report.Analysis,
			Output:       hclCfg.Report.Output,
		}
	}
	if hclCfg.Analyze != nil {
		cfg.Analyze = AnalyzeArgs{
			TradeHistory: hclCfg.Analyze.TradeHistory,
			Output:       hclCfg.Analyze.Output,
		}
	}
	if hclCfg.Backup != nil {
		cfg.Backup = BackupArgs{
			Files: hclCfg.Backup.Files,
			Store: hclCfg.Backup.Store,
			Dir:   hclCfg.Backup.Dir,
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}
