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
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/suntank/gamebird-os/pkg/action"
	"github.com/suntank/gamebird-os/pkg/cli/require"
)

const rateDesc = `
This command rates a game 1-5 stars, recording the rating locally and
submitting it to the store under this device's identity. With --remove the
rating is withdrawn instead.

A failed submission keeps the local rating; it is resent the next time the
game is rated.
`

func newRateCmd(cfg *action.Configuration, out io.Writer) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "rate SLUG [STARS]",
		Short: "rate a game 1-5 stars",
		Long:  rateDesc,
		Args:  require.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := args[0]
			device := deviceID()

			if remove {
				if _, err := cfg.Storage.RemoveRating(slug); err != nil {
					return err
				}
				if err := cfg.Client.RemoveRating(cmd.Context(), device, slug); err != nil {
					cfg.Log.Warnf("rating removed locally but not on server: %v", err)
				}
				fmt.Fprintf(out, "rating for %s removed\n", slug)
				return nil
			}

			if len(args) < 2 {
				return errors.Errorf("rating requires STARS (1-5), e.g. 'gamebird rate %s 4'", slug)
			}
			stars, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.Errorf("invalid rating %q, expected 1-5", args[1])
			}

			if err := cfg.Storage.SetRating(slug, stars); err != nil {
				return err
			}
			if err := cfg.Client.RateGame(cmd.Context(), device, slug, stars); err != nil {
				cfg.Log.Warnf("rating saved locally but not on server: %v", err)
			}
			fmt.Fprintf(out, "rated %s %d stars\n", slug, stars)
			return nil
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "withdraw this device's rating")
	return cmd
}

// deviceID identifies this device to the ratings endpoint: 16 hex chars,
// from the environment or derived from the machine id.
func deviceID() string {
	if id := os.Getenv("GAMEBIRD_DEVICE_ID"); id != "" {
		return id
	}
	raw, err := os.ReadFile("/etc/machine-id")
	if err != nil {
		return "0000000000000000"
	}
	id := strings.TrimSpace(string(raw))
	if len(id) > 16 {
		id = id[:16]
	}
	return id
}
