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

package action

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suntank/gamebird-os/pkg/cli"
	"github.com/suntank/gamebird-os/pkg/getter"
	"github.com/suntank/gamebird-os/pkg/storage"
	"github.com/suntank/gamebird-os/pkg/store"
)

func catalogHandler(entries []store.CatalogEntry) http.Handler {
	if entries == nil {
		entries = []store.CatalogEntry{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/catalog") {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"games": entries})
	})
}

func recordInstalled(t *testing.T, cfg *Configuration, games ...storage.InstalledGame) {
	t.Helper()
	err := cfg.Storage.Update(func(m map[string]storage.InstalledGame) error {
		for _, g := range games {
			m[g.ID] = g
		}
		return nil
	})
	require.NoError(t, err)
}

func TestUpdateRun(t *testing.T) {
	cfg := newTestConfig(t, catalogHandler([]store.CatalogEntry{
		{ID: "g1", Slug: "bloop", Title: "Bloop", Version: "1.1.0"},
		{ID: "g2", Slug: "zorp", Title: "Zorp", Version: "2.0.0"},
		{ID: "g3", Slug: "quux", Title: "Quux", Version: "0.9.0"},
	}))
	recordInstalled(t, cfg,
		storage.InstalledGame{ID: "bloop", Title: "Bloop", InstalledVersion: "1.0.0"},
		storage.InstalledGame{ID: "zorp", Title: "Zorp", InstalledVersion: "2.0.0"},
		storage.InstalledGame{ID: "quux", Title: "Quux", InstalledVersion: "0.9.0"},
	)

	updates, err := NewUpdate(cfg).Run(context.Background())
	require.NoError(t, err)

	// Only the strictly newer title shows up.
	require.Len(t, updates, 1)
	assert.Equal(t, store.UpdateInfo{
		GameID:           "bloop",
		Title:            "Bloop",
		InstalledVersion: "1.0.0",
		LatestVersion:    "1.1.0",
	}, updates[0])
}

func TestUpdateRunMatchesByID(t *testing.T) {
	// Titles installed before slugs existed are recorded under their raw ID.
	cfg := newTestConfig(t, catalogHandler([]store.CatalogEntry{
		{ID: "g1", Slug: "bloop", Title: "Bloop", Version: "2.0.0"},
	}))
	recordInstalled(t, cfg,
		storage.InstalledGame{ID: "g1", Title: "Bloop", InstalledVersion: "1.0.0"},
	)

	updates, err := NewUpdate(cfg).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, "bloop", updates[0].GameID)
}

func TestUpdateRunSkipsUnorderableVersions(t *testing.T) {
	cfg := newTestConfig(t, catalogHandler([]store.CatalogEntry{
		{ID: "g1", Slug: "bloop", Title: "Bloop", Version: "latest"},
		{ID: "g2", Slug: "zorp", Title: "Zorp", Version: "2.0.0"},
	}))
	recordInstalled(t, cfg,
		storage.InstalledGame{ID: "bloop", Title: "Bloop", InstalledVersion: "1.0.0"},
		storage.InstalledGame{ID: "zorp", Title: "Zorp", InstalledVersion: "not-a-version"},
	)

	updates, err := NewUpdate(cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, updates)
}

func TestUpdateRunSkipsTitlesAbsentFromCatalog(t *testing.T) {
	cfg := newTestConfig(t, catalogHandler(nil))
	recordInstalled(t, cfg,
		storage.InstalledGame{ID: "sideloaded", Title: "Sideloaded", InstalledVersion: "1.0.0"},
	)

	updates, err := NewUpdate(cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, updates)
}

func TestUpdateRunSortsBySlug(t *testing.T) {
	cfg := newTestConfig(t, catalogHandler([]store.CatalogEntry{
		{ID: "g1", Slug: "zorp", Title: "Zorp", Version: "2.0.0"},
		{ID: "g2", Slug: "bloop", Title: "Bloop", Version: "2.0.0"},
	}))
	recordInstalled(t, cfg,
		storage.InstalledGame{ID: "zorp", Title: "Zorp", InstalledVersion: "1.0.0"},
		storage.InstalledGame{ID: "bloop", Title: "Bloop", InstalledVersion: "1.0.0"},
	)

	updates, err := NewUpdate(cfg).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, "bloop", updates[0].GameID)
	assert.Equal(t, "zorp", updates[1].GameID)
}

// newOfflineConfig points the configuration at a closed server so every
// request fails at the transport.
func newOfflineConfig(t *testing.T) *Configuration {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	root := t.TempDir()
	settings := &cli.EnvSettings{
		APIURL:     srv.URL,
		CDNURL:     srv.URL,
		DataHome:   filepath.Join(root, "store"),
		GamesDir:   filepath.Join(root, "games"),
		Timeout:    500 * time.Millisecond,
		MaxRetries: 0,
	}
	cfg, err := NewConfiguration(settings)
	require.NoError(t, err)
	return cfg
}

func TestUpdateRunUsesCachedCatalogWhenOffline(t *testing.T) {
	cfg := newOfflineConfig(t)
	require.NoError(t, cfg.Storage.CacheCatalog([]store.CatalogEntry{
		{ID: "g1", Slug: "bloop", Title: "Bloop", Version: "1.1.0"},
	}))
	recordInstalled(t, cfg,
		storage.InstalledGame{ID: "bloop", Title: "Bloop", InstalledVersion: "1.0.0"},
	)

	updates, err := NewUpdate(cfg).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, "1.1.0", updates[0].LatestVersion)
}

func TestUpdateRunOfflineWithoutCache(t *testing.T) {
	cfg := newOfflineConfig(t)
	recordInstalled(t, cfg,
		storage.InstalledGame{ID: "bloop", Title: "Bloop", InstalledVersion: "1.0.0"},
	)

	_, err := NewUpdate(cfg).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, getter.ErrNetworkUnavailable), "expected ErrNetworkUnavailable, got %v", err)
}
