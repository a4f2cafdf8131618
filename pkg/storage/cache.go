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

	"github.com/pkg/errors"

	"github.com/suntank/gamebird-os/pkg/store"
)

// The catalog cache is advisory: last successfully fetched, allowed to go
// stale, never authoritative when a live fetch is possible.

type catalogCache struct {
	Games []store.CatalogEntry `json:"games"`
}

// CacheCatalog atomically replaces the cached catalog snapshot.
func (s *Store) CacheCatalog(entries []store.CatalogEntry) error {
	return writeJSON(s.cachePath(), catalogCache{Games: entries})
}

// LoadCachedCatalog returns the last cached catalog, or nil if none has
// been cached yet.
func (s *Store) LoadCachedCatalog() ([]store.CatalogEntry, error) {
	data, err := os.ReadFile(s.cachePath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cache := catalogCache{}
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, errors.Wrapf(err, "parsing cached catalog %s", s.cachePath())
	}
	return cache.Games, nil
}
