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

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/suntank/gamebird-os/pkg/action"
	"github.com/suntank/gamebird-os/pkg/cli/require"
)

const updateDesc = `
This command checks installed games against the store catalog and installs
any newer versions.

With --check the available updates are only listed. Updates apply one
title at a time; each goes through the same download, verify and atomic
swap sequence as a fresh install, so an update that fails partway leaves
the old version playable.
`

func newUpdateCmd(cfg *action.Configuration, out io.Writer) *cobra.Command {
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "update installed games",
		Long:  updateDesc,
		Args:  require.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			updates, err := action.NewUpdate(cfg).Run(cmd.Context())
			if err != nil {
				return err
			}
			if len(updates) == 0 {
				fmt.Fprintln(out, "everything is up to date")
				return nil
			}

			for _, u := range updates {
				fmt.Fprintf(out, "%s: %s -> %s\n", u.GameID, u.InstalledVersion, u.LatestVersion)
			}
			if checkOnly {
				return nil
			}

			client := action.NewInstall(cfg)
			for _, u := range updates {
				manifest, err := cfg.Client.FetchManifest(cmd.Context(), u.GameID)
				if err != nil {
					return err
				}
				client.Progress = progressPrinter(out)
				client.CatalogVersion = u.LatestVersion
				game, err := client.Run(cmd.Context(), manifest)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "updated %s to %s\n", game.Title, game.InstalledVersion)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "list available updates without installing")
	return cmd
}
