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

package store

// CatalogEntry is one game as listed by the catalog endpoint. Entries are
// ephemeral: re-fetched or read from cache each session, replaced wholesale,
// never mutated.
type CatalogEntry struct {
	ID             string   `json:"id"`
	Slug           string   `json:"slug"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	Version        string   `json:"version"`
	IconURL        string   `json:"icon_url,omitempty"`
	ScreenshotURLs []string `json:"screenshot_urls,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Rating         *float64 `json:"rating,omitempty"`
	MatureContent  bool     `json:"mature_content,omitempty"`
	SizeBytes      int64    `json:"size_bytes,omitempty"`
	SHA256         string   `json:"sha256,omitempty"`
	DownloadPath   string   `json:"download_path,omitempty"`
}

// CatalogPage is a paginated catalog response.
type CatalogPage struct {
	Games      []CatalogEntry `json:"games"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
}

// DownloadInfo describes the archive a manifest offers for download. Its
// Version is authoritative for what actually gets installed; the catalog's
// version may lag behind it.
type DownloadInfo struct {
	Version   string `json:"version"`
	SizeBytes int64  `json:"size_bytes"`
	SHA256    string `json:"sha256"`
	Path      string `json:"path"`
}

// ChangelogEntry is one release note in a manifest's changelog.
type ChangelogEntry struct {
	Version string   `json:"version"`
	Date    string   `json:"date"`
	Notes   []string `json:"notes"`
}

// GameManifest is the full per-title record from the manifest endpoint.
type GameManifest struct {
	ID             string           `json:"id"`
	Slug           string           `json:"slug"`
	Title          string           `json:"title"`
	Description    string           `json:"description,omitempty"`
	Version        string           `json:"version"`
	Tags           []string         `json:"tags,omitempty"`
	IconURL        string           `json:"icon_url,omitempty"`
	ScreenshotURLs []string         `json:"screenshot_urls,omitempty"`
	Download       DownloadInfo     `json:"download"`
	Changelog      []ChangelogEntry `json:"changelog,omitempty"`
	Rating         *float64         `json:"rating,omitempty"`
	RatingCount    int              `json:"rating_count,omitempty"`
	MatureContent  bool             `json:"mature_content,omitempty"`
	ReleaseDate    string           `json:"release_date,omitempty"`
}

// Tag is one entry of the grouped tag listing.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UpdateInfo pairs an installed version with a newer catalog version for one
// title. Derived, never persisted.
type UpdateInfo struct {
	GameID           string `json:"game_id"`
	Title            string `json:"title"`
	InstalledVersion string `json:"installed_version"`
	LatestVersion    string `json:"latest_version"`
}
