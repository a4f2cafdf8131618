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
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/suntank/gamebird-os/internal/fileutil"
	"github.com/suntank/gamebird-os/pkg/integrity"
	"github.com/suntank/gamebird-os/pkg/storage"
	"github.com/suntank/gamebird-os/pkg/store"
)

// Install performs the install/update sequence for one title. The same
// action serves both first installs and updates; the staged directory swap
// makes an update indistinguishable from an install until the final rename.
type Install struct {
	cfg *Configuration

	// CatalogVersion, when known, is the version the catalog advertised
	// for this title. The manifest's own download version is authoritative
	// for what gets installed; a disagreement is logged, not resolved.
	CatalogVersion string
	// Progress, if set, is called as archive bytes arrive.
	Progress store.ProgressFunc
}

// NewInstall creates a new Install action with the given configuration.
func NewInstall(cfg *Configuration) *Install {
	return &Install{cfg: cfg}
}

// Run downloads, verifies, extracts and registers the title described by
// manifest. On any failure the title stays in its prior state: not
// installed, or installed at its previous version.
func (i *Install) Run(ctx context.Context, manifest *store.GameManifest) (*storage.InstalledGame, error) {
	slug := manifest.Slug
	if slug == "" {
		slug = manifest.ID
	}
	dl := manifest.Download
	log := i.cfg.Log.WithField("slug", slug)

	if i.CatalogVersion != "" && i.CatalogVersion != dl.Version {
		log.Warnf("catalog advertises %s but manifest downloads %s; installing %s",
			i.CatalogVersion, dl.Version, dl.Version)
	}

	archive := filepath.Join(i.cfg.Settings.DownloadDir(), slug+".zip")
	log.Infof("downloading %s", dl.Path)
	written, archive, err := i.cfg.Client.DownloadArchive(ctx, dl.Path, archive, i.Progress)
	if err != nil {
		return nil, err
	}
	log.Debugf("received %d bytes", written)

	if err := integrity.Validate(archive, dl.SHA256, dl.SizeBytes); err != nil {
		os.Remove(archive)
		return nil, errors.Wrapf(ErrIntegrityFailure, "%s: %v", slug, err)
	}

	staging, files, err := extractArchive(ctx, archive, i.cfg.Settings.GamesDir)
	if err != nil {
		return nil, errors.Wrapf(ErrExtractionFailure, "%s: %v", slug, err)
	}

	installPath := i.cfg.Settings.InstallPath(slug)
	if err := fileutil.SwapDir(staging, installPath); err != nil {
		os.RemoveAll(staging)
		return nil, errors.Wrapf(ErrExtractionFailure, "%s: %v", slug, err)
	}

	game := storage.InstalledGame{
		ID:               slug,
		Title:            manifest.Title,
		InstalledVersion: dl.Version,
		InstallPath:      installPath,
		InstalledFiles:   files,
	}
	err = i.cfg.Storage.Update(func(games map[string]storage.InstalledGame) error {
		games[slug] = game
		return nil
	})
	if err != nil {
		return nil, err
	}

	os.Remove(archive)
	log.Infof("installed %s %s", manifest.Title, dl.Version)
	return &game, nil
}
