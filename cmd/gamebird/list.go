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
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/suntank/gamebird-os/pkg/action"
	"github.com/suntank/gamebird-os/pkg/cli/require"
)

func newListCmd(cfg *action.Configuration, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "list installed games",
		Args:    require.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			installed, err := cfg.Storage.LoadInstalled()
			if err != nil {
				return err
			}
			if len(installed) == 0 {
				fmt.Fprintln(out, "no games installed")
				return nil
			}

			ids := make([]string, 0, len(installed))
			for id := range installed {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "SLUG\tTITLE\tVERSION\tPATH")
			for _, id := range ids {
				g := installed[id]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.ID, g.Title, g.InstalledVersion, g.InstallPath)
			}
			return w.Flush()
		},
	}
	return cmd
}
