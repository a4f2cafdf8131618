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
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"

	"github.com/suntank/gamebird-os/pkg/getter"
	"github.com/suntank/gamebird-os/pkg/store"
)

// Update computes which installed titles have a newer version in the
// catalog.
type Update struct {
	cfg *Configuration
}

// NewUpdate creates a new Update action with the given configuration.
func NewUpdate(cfg *Configuration) *Update {
	return &Update{cfg: cfg}
}

// Run fetches the catalog (falling back to the cached snapshot when the
// network is down) and returns an UpdateInfo for every installed title
// whose catalog version strictly exceeds the installed one under semver
// ordering. Titles with unorderable version strings are skipped.
func (u *Update) Run(ctx context.Context) ([]store.UpdateInfo, error) {
	entries, err := u.catalogEntries(ctx)
	if err != nil {
		return nil, err
	}

	installed, err := u.cfg.Storage.LoadInstalled()
	if err != nil {
		return nil, err
	}

	byID := make(map[string]store.CatalogEntry, len(entries))
	bySlug := make(map[string]store.CatalogEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
		bySlug[e.Slug] = e
	}

	var updates []store.UpdateInfo
	for id, game := range installed {
		entry, ok := byID[id]
		if !ok {
			if entry, ok = bySlug[id]; !ok {
				u.cfg.Log.WithField("slug", id).Debug("installed title absent from catalog")
				continue
			}
		}

		latest, err := semver.NewVersion(entry.Version)
		if err != nil {
			u.cfg.Log.WithField("slug", id).Debugf("unorderable catalog version %q", entry.Version)
			continue
		}
		current, err := semver.NewVersion(game.InstalledVersion)
		if err != nil {
			u.cfg.Log.WithField("slug", id).Debugf("unorderable installed version %q", game.InstalledVersion)
			continue
		}

		if latest.GreaterThan(current) {
			updates = append(updates, store.UpdateInfo{
				GameID:           entry.Slug,
				Title:            game.Title,
				InstalledVersion: game.InstalledVersion,
				LatestVersion:    entry.Version,
			})
		}
	}

	sort.Slice(updates, func(i, j int) bool { return updates[i].GameID < updates[j].GameID })
	return updates, nil
}

// catalogEntries prefers a live catalog and refreshes the cache from it;
// only when the network is unreachable does the stale cache stand in.
func (u *Update) catalogEntries(ctx context.Context) ([]store.CatalogEntry, error) {
	entries, err := u.cfg.Client.FetchAllEntries(ctx)
	if err == nil {
		if cerr := u.cfg.Storage.CacheCatalog(entries); cerr != nil {
			u.cfg.Log.Warnf("could not refresh catalog cache: %v", cerr)
		}
		return entries, nil
	}

	if !errors.Is(err, getter.ErrNetworkUnavailable) && !errors.Is(err, getter.ErrRateLimited) {
		return nil, err
	}

	cached, cerr := u.cfg.Storage.LoadCachedCatalog()
	if cerr != nil || cached == nil {
		// No usable cache; report the original network failure.
		return nil, err
	}
	u.cfg.Log.Warn("store unreachable, checking updates against cached catalog")
	return cached, nil
}
