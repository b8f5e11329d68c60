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

// Package backup snapshots tracked files into a timestamped directory
// when their content hash changes, naming each copy with the version
// label parsed from the file itself.
package backup

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/backtrack/pkg/fsutil"
	"github.com/walteh/backtrack/pkg/log"
)

// dirTimeLayout names one run's snapshot directory
const dirTimeLayout = "20060102_150405"

// 📋 Options configures one backup run
type Options struct {
	Files  []string         // Tracked file paths or doublestar globs
	Store  string           // Checksum store path
	Dir    string           // Root under which snapshot dirs are created
	Logger *log.Logger      // Console logger for per-file dispositions
	Now    func() time.Time // Clock, defaults to time.Now
}

// 📊 Result summarizes what a run did
type Result struct {
	SnapshotDir string   // Created directory, empty when nothing was copied
	Copied      []string // Destination paths of copies made this run
	Unchanged   int      // Files whose hash matched the store
	Missing     int      // Tracked files absent from disk
	Failed      int      // Files whose copy failed
}

// 🔧 Manager runs the snapshot pipeline
type Manager struct {
	opts Options
}

// 🏭 NewManager creates a backup manager
func NewManager(opts Options) *Manager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{opts: opts}
}

// 🏃 Run walks every tracked file once: hash it, compare against the
// stored checksum, copy on change into this run's timestamped
// directory and update the store entry. A missing file is a warning,
// a failed copy aborts only that file; the store is persisted once at
// the end.
func (m *Manager) Run(ctx context.Context) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	files, err := m.resolveFiles()
	if err != nil {
		return nil, errors.Errorf("resolving tracked files: %w", err)
	}

	store := LoadStore(ctx, m.opts.Store)
	result := &Result{}

	for _, path := range files {
		op := m.processFile(ctx, store, result, path)
		if m.opts.Logger != nil {
			m.opts.Logger.LogFileOperation(ctx, op)
		}
	}

	if err := store.Save(ctx, m.opts.Store); err != nil {
		return nil, errors.Errorf("persisting checksum store: %w", err)
	}

	logger.Info().
		Int("copied", len(result.Copied)).
		Int("unchanged", result.Unchanged).
		Int("missing", result.Missing).
		Int("failed", result.Failed).
		Msg("backup run complete")

	return result, nil
}

// processFile decides and executes one file's disposition
func (m *Manager) processFile(ctx context.Context, store *Store, result *Result, path string) log.FileOperation {
	logger := zerolog.Ctx(ctx)
	op := log.FileOperation{Path: path}

	exists, err := fsutil.FileExists(path)
	if err != nil || !exists {
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("cannot stat tracked file")
		}
		op.Disposition = log.DispositionMissing
		result.Missing++
		return op
	}

	hash, err := fsutil.ChecksumFile(path)
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("hashing tracked file")
		op.Disposition = log.DispositionFailed
		result.Failed++
		return op
	}

	stored, known := store.Get(path)
	if known && stored == hash {
		op.Disposition = log.DispositionUnchanged
		result.Unchanged++
		return op
	}

	if known {
		op.Disposition = log.DispositionChanged
	} else {
		op.Disposition = log.DispositionNew
	}

	version := ExtractVersion(path)
	op.Version = version

	// The run directory is created lazily and recorded only once a
	// copy lands in it, so an all-unchanged or all-failed run reports
	// no directory.
	dir := result.SnapshotDir
	if dir == "" {
		dir = filepath.Join(m.opts.Dir, "backup_"+m.opts.Now().Format(dirTimeLayout))
	}

	dest := filepath.Join(dir, versionedName(path, version))
	if err := fsutil.CopyFile(path, dest); err != nil {
		logger.Error().Err(err).Str("path", path).Str("dest", dest).Msg("copying tracked file")
		op.Disposition = log.DispositionFailed
		result.Failed++
		return op
	}

	result.SnapshotDir = dir
	store.Put(path, hash)
	op.Copied = dest
	result.Copied = append(result.Copied, dest)
	return op
}

// resolveFiles expands glob patterns and keeps literal paths as-is so
// a missing literal still shows up as a warning
func (m *Manager) resolveFiles() ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, pattern := range m.opts.Files {
		if !hasGlobMeta(pattern) {
			add(pattern)
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, errors.Errorf("expanding glob %q: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, match := range matches {
			add(match)
		}
	}

	return out, nil
}

// versionedName builds `<basename>_v<version>.<original-extension>`
func versionedName(path, version string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s_v%s%s", stem, version, ext)
}

func hasGlobMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
