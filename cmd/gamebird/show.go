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
	"strings"

	"github.com/spf13/cobra"

	"github.com/suntank/gamebird-os/pkg/action"
	"github.com/suntank/gamebird-os/pkg/cli/require"
)

func newShowCmd(cfg *action.Configuration, out io.Writer) *cobra.Command {
	var changelogOnly bool

	cmd := &cobra.Command{
		Use:   "show SLUG",
		Short: "show a game's manifest and changelog",
		Args:  require.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := cfg.Client.FetchManifest(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !changelogOnly {
				fmt.Fprintf(out, "%s (%s)\n", m.Title, m.Slug)
				fmt.Fprintf(out, "version:  %s\n", m.Version)
				fmt.Fprintf(out, "size:     %d bytes\n", m.Download.SizeBytes)
				fmt.Fprintf(out, "sha256:   %s\n", m.Download.SHA256)
				if len(m.Tags) > 0 {
					fmt.Fprintf(out, "tags:     %s\n", strings.Join(m.Tags, ", "))
				}
				if m.Description != "" {
					fmt.Fprintf(out, "\n%s\n", m.Description)
				}
			}

			if len(m.Changelog) > 0 {
				fmt.Fprintln(out, "\nchangelog:")
				for _, entry := range m.Changelog {
					fmt.Fprintf(out, "  %s (%s)\n", entry.Version, entry.Date)
					for _, note := range entry.Notes {
						fmt.Fprintf(out, "    - %s\n", note)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&changelogOnly, "changelog", false, "only print the changelog")
	return cmd
}
