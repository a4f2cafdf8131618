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

const installDesc = `
This command installs one or more games from the store, or updates them if
already installed.

The archive is downloaded, its digest and size verified against the game's
manifest, and only then extracted. Extraction happens in a staging
directory that atomically replaces the install directory, so a failure at
any point leaves the previous install untouched. A verification failure
deletes the downloaded archive; rerun the command to retry.
`

func newInstallCmd(cfg *action.Configuration, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install SLUG [...]",
		Short: "install or update games",
		Long:  installDesc,
		Args:  require.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := action.NewInstall(cfg)

			for _, slug := range args {
				manifest, err := cfg.Client.FetchManifest(cmd.Context(), slug)
				if err != nil {
					return err
				}
				client.Progress = progressPrinter(out)
				game, err := client.Run(cmd.Context(), manifest)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "installed %s %s\n", game.Title, game.InstalledVersion)
			}
			return nil
		},
	}
	return cmd
}

// progressPrinter reports download progress at 10% steps, or not at all
// when the total size is unknown.
func progressPrinter(out io.Writer) func(written, total int64) {
	lastDecile := -1
	return func(written, total int64) {
		if total <= 0 {
			return
		}
		decile := int(written * 10 / total)
		if decile > lastDecile {
			lastDecile = decile
			fmt.Fprintf(out, "  %d%%\n", decile*10)
		}
	}
}
