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
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/suntank/gamebird-os/pkg/action"
	"github.com/suntank/gamebird-os/pkg/cli/require"
	"github.com/suntank/gamebird-os/pkg/getter"
	"github.com/suntank/gamebird-os/pkg/store"
)

const catalogDesc = `
This command lists the games available in the store.

When the store is unreachable the last successfully fetched catalog is
shown instead, marked as cached; a cached listing may be stale.
`

func newCatalogCmd(cfg *action.Configuration, out io.Writer) *cobra.Command {
	query := store.CatalogQuery{}
	var minRating float64

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "list games available in the store",
		Long:  catalogDesc,
		Args:  require.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("min-rating") {
				query.MinRating = &minRating
			}
			if !query.HideMature && cfg.Storage.ParentalPINSet() {
				query.HideMature = true
			}

			page, err := cfg.Client.FetchCatalog(cmd.Context(), query)
			if err == nil {
				// Only a full, unfiltered listing may refresh the cache;
				// a filtered or paginated page would shrink the offline
				// snapshot to the subset just browsed.
				if coversWholeCatalog(query, page) {
					if cerr := cfg.Storage.CacheCatalog(page.Games); cerr != nil {
						cfg.Log.Warnf("could not refresh catalog cache: %v", cerr)
					}
				}
				return printEntries(out, page.Games, fmt.Sprintf("page %d of %d", page.Page, page.TotalPages))
			}

			if !errors.Is(err, getter.ErrNetworkUnavailable) && !errors.Is(err, getter.ErrRateLimited) {
				return err
			}
			cached, cerr := cfg.Storage.LoadCachedCatalog()
			if cerr != nil || cached == nil {
				return err
			}
			return printEntries(out, cached, "cached, possibly stale")
		},
	}

	f := cmd.Flags()
	f.IntVar(&query.Page, "page", 1, "page number")
	f.IntVar(&query.PerPage, "per-page", 20, "games per page")
	f.StringArrayVar(&query.Tags, "tag", nil, "only list games carrying this tag (repeatable)")
	f.Float64Var(&minRating, "min-rating", 0, "only list games rated at least this highly")
	f.BoolVar(&query.HideMature, "hide-mature", false, "exclude mature-rated games")
	f.StringVar(&query.SortBy, "sort", "title", "sort order: title, rating or release_date")

	return cmd
}

func coversWholeCatalog(q store.CatalogQuery, page *store.CatalogPage) bool {
	return len(q.Tags) == 0 && q.MinRating == nil && !q.HideMature &&
		page.Page == 1 && page.TotalPages == 1
}

func printEntries(out io.Writer, entries []store.CatalogEntry, note string) error {
	if len(entries) == 0 {
		fmt.Fprintln(out, "no games found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tTITLE\tVERSION\tRATING")
	for _, e := range entries {
		rating := "-"
		if e.Rating != nil {
			rating = fmt.Sprintf("%.1f", *e.Rating)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Slug, e.Title, e.Version, rating)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "(%s)\n", note)
	return nil
}
