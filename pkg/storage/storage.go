/*
Copyright The Gamebird Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package storage persists the client's local state: the installed-games
// record, the catalog cache, ratings and the parental-control PIN.
//
// Every write goes through write-to-temporary-then-rename, so a crash or
// power loss mid-write leaves either the old file or the new file, never a
// truncated one. The installed record's read-modify-write cycle is a
// critical section; Update serializes it behind an in-process mutex and an
// advisory file lock.
package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"

	"github.com/suntank/gamebird-os/internal/fileutil"
)

// ErrCorruptState indicates the installed-games record exists but cannot be
// parsed. It is surfaced loudly rather than silently reset: the record is
// the user's install history, and discarding it is a caller-level policy
// decision.
var ErrCorruptState = errors.New("corrupt installed-games record")

// InstalledGame is the authoritative local record of one title on disk.
type InstalledGame struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	InstalledVersion string   `json:"installed_version"`
	InstallPath      string   `json:"install_path"`
	// InstalledFiles lists the archive's files relative to InstallPath,
	// recorded when the install completed.
	InstalledFiles []string `json:"installed_files,omitempty"`
}

type installedRecord struct {
	Games []InstalledGame `json:"games"`
}

// Store owns the client's state directory.
type Store struct {
	dataHome string

	mu sync.Mutex
	fl *flock.Flock
}

// New builds a Store rooted at dataHome, creating the directory layout if
// needed.
func New(dataHome string) (*Store, error) {
	for _, dir := range []string{dataHome, filepath.Join(dataHome, "cache"), filepath.Join(dataHome, "downloads")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "initializing state directory %s", dir)
		}
	}
	return &Store{
		dataHome: dataHome,
		fl:       flock.New(filepath.Join(dataHome, ".state.lock")),
	}, nil
}

// DataHome returns the root of the state directory.
func (s *Store) DataHome() string { return s.dataHome }

func (s *Store) installedPath() string { return filepath.Join(s.dataHome, "installed_games.json") }
func (s *Store) cachePath() string     { return filepath.Join(s.dataHome, "cache", "catalog.json") }
func (s *Store) ratingsPath() string   { return filepath.Join(s.dataHome, "ratings.json") }
func (s *Store) pinPath() string       { return filepath.Join(s.dataHome, "parental_pin") }

// LoadInstalled returns the installed-games record keyed by id. A missing
// file is a first run and yields an empty map; an unparseable file yields
// ErrCorruptState.
func (s *Store) LoadInstalled() (map[string]InstalledGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadInstalled()
}

func (s *Store) loadInstalled() (map[string]InstalledGame, error) {
	data, err := os.ReadFile(s.installedPath())
	if os.IsNotExist(err) {
		return map[string]InstalledGame{}, nil
	}
	if err != nil {
		return nil, err
	}

	rec := installedRecord{}
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrapf(ErrCorruptState, "%s: %v", s.installedPath(), err)
	}

	games := make(map[string]InstalledGame, len(rec.Games))
	for _, g := range rec.Games {
		if g.ID == "" {
			return nil, errors.Wrapf(ErrCorruptState, "%s: entry with empty id", s.installedPath())
		}
		games[g.ID] = g
	}
	return games, nil
}

// SaveInstalled atomically replaces the installed-games record.
func (s *Store) SaveInstalled(games map[string]InstalledGame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveInstalled(games)
}

func (s *Store) saveInstalled(games map[string]InstalledGame) error {
	rec := installedRecord{Games: make([]InstalledGame, 0, len(games))}
	for _, g := range games {
		rec.Games = append(rec.Games, g)
	}
	// Stable order keeps the file diffable across writes.
	sort.Slice(rec.Games, func(i, j int) bool { return rec.Games[i].ID < rec.Games[j].ID })

	return writeJSON(s.installedPath(), rec)
}

// Update runs fn over the installed record inside the store's critical
// section: load, mutate, save, all under the in-process mutex and an
// advisory file lock. If fn returns an error nothing is written.
func (s *Store) Update(fn func(games map[string]InstalledGame) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fl.Lock(); err != nil {
		return errors.Wrap(err, "locking state directory")
	}
	defer s.fl.Unlock()

	games, err := s.loadInstalled()
	if err != nil {
		return err
	}
	if err := fn(games); err != nil {
		return err
	}
	return s.saveInstalled(games)
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return fileutil.AtomicWriteFile(path, bytes.NewReader(data), 0644)
}
