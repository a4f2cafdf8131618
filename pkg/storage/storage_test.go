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

package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func sampleGame(id string) InstalledGame {
	return InstalledGame{
		ID:               id,
		Title:            "Bloop",
		InstalledVersion: "1.0.0",
		InstallPath:      "/home/pi/gamebird/games/" + id,
		InstalledFiles:   []string{"bloop.sh", "assets/icon.png"},
	}
}

func TestLoadInstalledFirstRun(t *testing.T) {
	s := newTestStore(t)

	games, err := s.LoadInstalled()
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestSaveAndLoadInstalled(t *testing.T) {
	s := newTestStore(t)

	in := map[string]InstalledGame{
		"bloop": sampleGame("bloop"),
		"drift": sampleGame("drift"),
	}
	require.NoError(t, s.SaveInstalled(in))

	out, err := s.LoadInstalled()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadInstalledCorrupt(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, os.WriteFile(s.installedPath(), []byte(`{"games": [{`), 0644))

	_, err := s.LoadInstalled()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptState), "expected ErrCorruptState, got %v", err)
}

func TestLoadInstalledEntryWithoutID(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, os.WriteFile(s.installedPath(), []byte(`{"games": [{"title": "Bloop"}]}`), 0644))

	_, err := s.LoadInstalled()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptState))
}

func TestInterruptedWriteLeavesRecordIntact(t *testing.T) {
	s := newTestStore(t)

	before := map[string]InstalledGame{"bloop": sampleGame("bloop")}
	require.NoError(t, s.SaveInstalled(before))

	// Simulate a crash mid-write: a partially written temporary file next
	// to the record, the way an interrupted AtomicWriteFile would leave
	// one. The record itself must be unaffected.
	stale := filepath.Join(s.dataHome, "tmp123456")
	require.NoError(t, os.WriteFile(stale, []byte(`{"games": [{"id": "dr`), 0644))

	out, err := s.LoadInstalled()
	require.NoError(t, err)
	assert.Equal(t, before, out)
}

func TestUpdateUpsert(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveInstalled(map[string]InstalledGame{"bloop": sampleGame("bloop")}))

	err := s.Update(func(games map[string]InstalledGame) error {
		g := games["bloop"]
		g.InstalledVersion = "1.1.0"
		games["bloop"] = g
		games["drift"] = sampleGame("drift")
		return nil
	})
	require.NoError(t, err)

	out, err := s.LoadInstalled()
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", out["bloop"].InstalledVersion)
	assert.Contains(t, out, "drift")
}

func TestUpdateErrorWritesNothing(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveInstalled(map[string]InstalledGame{"bloop": sampleGame("bloop")}))

	boom := errors.New("boom")
	err := s.Update(func(games map[string]InstalledGame) error {
		delete(games, "bloop")
		return boom
	})
	assert.True(t, errors.Is(err, boom))

	out, err := s.LoadInstalled()
	require.NoError(t, err)
	assert.Contains(t, out, "bloop", "a failed update must not modify the record")
}

func TestUpdateSerializesConcurrentWriters(t *testing.T) {
	s := newTestStore(t)

	// Two install flows completing close together must not lose each
	// other's records.
	var wg sync.WaitGroup
	for _, id := range []string{"bloop", "drift", "waves", "turbo"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			err := s.Update(func(games map[string]InstalledGame) error {
				games[id] = sampleGame(id)
				return nil
			})
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	out, err := s.LoadInstalled()
	require.NoError(t, err)
	assert.Len(t, out, 4)
}

func TestInstalledRecordShape(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveInstalled(map[string]InstalledGame{"bloop": sampleGame("bloop")}))

	raw, err := os.ReadFile(s.installedPath())
	require.NoError(t, err)

	var rec struct {
		Games []map[string]interface{} `json:"games"`
	}
	require.NoError(t, json.Unmarshal(raw, &rec))
	require.Len(t, rec.Games, 1)
	for _, key := range []string{"id", "title", "installed_version", "install_path"} {
		assert.Contains(t, rec.Games[0], key)
	}
}
