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
	"os"

	"github.com/pkg/errors"

	"github.com/suntank/gamebird-os/pkg/storage"
)

// Uninstall removes an installed title and its record.
type Uninstall struct {
	cfg *Configuration
}

// NewUninstall creates a new Uninstall action with the given configuration.
func NewUninstall(cfg *Configuration) *Uninstall {
	return &Uninstall{cfg: cfg}
}

// Run deletes the title's install directory and drops it from the
// installed record. If the directory cannot be removed the record is kept,
// so the operation can be retried.
func (u *Uninstall) Run(slug string) (*storage.InstalledGame, error) {
	var removed storage.InstalledGame
	err := u.cfg.Storage.Update(func(games map[string]storage.InstalledGame) error {
		game, ok := games[slug]
		if !ok {
			return errors.Errorf("no installed game named %q", slug)
		}

		if game.InstallPath != "" {
			if err := os.RemoveAll(game.InstallPath); err != nil {
				return errors.Wrapf(err, "removing %s", game.InstallPath)
			}
		}

		delete(games, slug)
		removed = game
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.cfg.Log.WithField("slug", slug).Infof("uninstalled %s", removed.Title)
	return &removed, nil
}
