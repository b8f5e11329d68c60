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
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📋 ReportArgs configures the report pipeline's inputs and output
type ReportArgs struct {
	LogFile      string `json:"log_file,omitempty" yaml:"log_file,omitempty"`           // Backtest run log
	TradeHistory string `json:"trade_history,omitempty" yaml:"trade_history,omitempty"` // Trade history CSV
	Conditions   string `json:"conditions,omitempty" yaml:"conditions,omitempty"`       // Partial conditions log
	Analysis     string `json:"analysis,omitempty" yaml:"analysis,omitempty"`           // Optional trade analysis text
	Output       string `json:"output,omitempty" yaml:"output,omitempty"`               // Composed report destination
}

// 📈 AnalyzeArgs configures the trade analysis pipeline
type AnalyzeArgs struct {
	TradeHistory string `json:"trade_history,omitempty" yaml:"trade_history,omitempty"` // Trade history CSV
	Output       string `json:"output,omitempty" yaml:"output,omitempty"`               // Analysis text destination
}

// 💾 BackupArgs configures the snapshot pipeline
type BackupArgs struct {
	Files []string `json:"files,omitempty" yaml:"files,omitempty"` // Tracked file paths or globs
	Store string   `json:"store,omitempty" yaml:"store,omitempty"` // Checksum store path
	Dir   string   `json:"dir,omitempty" yaml:"dir,omitempty"`     // Root directory for snapshot dirs
}

// 📚 Config represents the complete configuration
type Config struct {
	Report  ReportArgs  `json:"report,omitempty" yaml:"report,omitempty"`
	Analyze AnalyzeArgs `json:"analyze,omitempty" yaml:"analyze,omitempty"`
	Backup  BackupArgs  `json:"backup,omitempty" yaml:"backup,omitempty"`
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file at all is fine, everything has a default
			cfg := &Config{}
			if err := cfg.Validate(); err != nil {
				return nil, errors.Errorf("validating default config: %w", err)
			}
			return cfg, nil
		}
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks the configuration and fills in defaults
func (cfg *Config) Validate() error {
	if cfg.Report.LogFile == "" {
		cfg.Report.LogFile = "backtest.log"
	}
	if cfg.Report.TradeHistory == "" {
		cfg.Report.TradeHistory = "trade_history.csv"
	}
	if cfg.Report.Conditions == "" {
		cfg.Report.Conditions = "partial_conditions.txt"
	}
	if cfg.Report.Analysis == "" {
		cfg.Report.Analysis = "trade_analysis.txt"
	}
	if cfg.Report.Output == "" {
		cfg.Report.Output = "backtest_report.txt"
	}

	if cfg.Analyze.TradeHistory == "" {
		cfg.Analyze.TradeHistory = cfg.Report.TradeHistory
	}
	if cfg.Analyze.Output == "" {
		cfg.Analyze.Output = cfg.Report.Analysis
	}

	if len(cfg.Backup.Files) == 0 {
		cfg.Backup.Files = []string{"backtest.py", "analysetradehistory.py", "fetch_data*.py"}
	}
	if cfg.Backup.Store == "" {
		cfg.Backup.Store = "checksums.txt"
	}
	if cfg.Backup.Dir == "" {
		cfg.Backup.Dir = "backups"
	}

	// Clean up paths
	cfg.Report.LogFile = filepath.Clean(cfg.Report.LogFile)
	cfg.Report.TradeHistory = filepath.Clean(cfg.Report.TradeHistory)
	cfg.Report.Conditions = filepath.Clean(cfg.Report.Conditions)
	cfg.Report.Analysis = filepath.Clean(cfg.Report.Analysis)
	cfg.Report.Output = filepath.Clean(cfg.Report.Output)
	cfg.Analyze.TradeHistory = filepath.Clean(cfg.Analyze.TradeHistory)
	cfg.Analyze.Output = filepath.Clean(cfg.Analyze.Output)
	cfg.Backup.Store = filepath.Clean(cfg.Backup.Store)
	cfg.Backup.Dir = filepath.Clean(cfg.Backup.Dir)

	return nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return cfg.Report.LogFile + " + " + cfg.Report.TradeHistory + " + " + cfg.Report.Conditions + " -> " + cfg.Report.Output
}
