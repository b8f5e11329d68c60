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

package backup

import (
	"bufio"
	"context"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/backtrack/pkg/fsutil"
)

// 🗃️ Store is the persisted path → content hash mapping used to
// detect modifications between runs. Lines on disk read
// `<hash>  <path>`; unparseable lines are dropped on load rather than
// failing the run.
type Store struct {
	entries map[string]string
}

// 🏭 NewStore creates an empty store
func NewStore() *Store {
	return &Store{entries: make(map[string]string)}
}

// 📖 LoadStore reads the store file. A missing or corrupt file yields
// a fresh store, never an error.
func LoadStore(ctx context.Context, path string) *Store {
	logger := zerolog.Ctx(ctx)
	store := NewStore()

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("path", path).Msg("checksum store unreadable, starting fresh")
		}
		return store
	}
	defer f.Close()

	dropped := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		hash, file, ok := strings.Cut(line, "  ")
		if !ok || hash == "" || file == "" || strings.ContainsAny(hash, " \t") {
			dropped++
			continue
		}
		store.entries[file] = hash
	}
	if err := scanner.Err(); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("checksum store truncated, keeping parsed entries")
	}
	if dropped > 0 {
		logger.Warn().Int("lines", dropped).Str("path", path).Msg("dropped unparseable checksum entries")
	}

	return store
}

// 🔍 Get returns the stored hash for a path
func (s *Store) Get(path string) (string, bool) {
	hash, ok := s.entries[path]
	return hash, ok
}

// 📝 Put records the hash for a path
func (s *Store) Put(path, hash string) {
	s.entries[path] = hash
}

// 🔢 Len returns the number of tracked entries
func (s *Store) Len() int {
	return len(s.entries)
}

// 💾 Save rewrites the store file atomically, entries sorted by path
func (s *Store) Save(ctx context.Context, path string) error {
	paths := make([]string, 0, len(s.entries))
	for p := range s.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, p := range paths {
		b.WriteString(s.entries[p])
		b.WriteString("  ")
		b.WriteString(p)
		b.WriteByte('\n')
	}

	if err := fsutil.WriteFileAtomic(path, []byte(b.String())); err != nil {
		return errors.Errorf("saving checksum store: %w", err)
	}
	return nil
}
