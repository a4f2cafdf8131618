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

/*Package cli describes the operating environment for the Gamebird store
client.

The environment encapsulates everything the engine needs to know about the
device it runs on: where the catalog and CDN endpoints live, where state and
games are kept on disk, and how patient the network layer should be. It is
built once at startup and passed into every component at construction; no
component reads ambient globals.
*/
package cli

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

const (
	defaultAPIURL = "https://dbworker.suntank.workers.dev"
	defaultCDNURL = "https://cdn.gamebird.games"

	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 3
)

// EnvSettings describes all of the environment settings.
type EnvSettings struct {
	// APIURL is the base URL of the catalog/manifest API.
	APIURL string
	// CDNURL is the base URL of the archive and image CDN.
	CDNURL string
	// DataHome is the directory holding the installed record, caches and
	// in-flight downloads.
	DataHome string
	// GamesDir is the root directory games are installed under.
	GamesDir string
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration
	// MaxRetries is the transport-level retry budget per request.
	MaxRetries int
	// Debug indicates whether the client is running in debug mode.
	Debug bool
	// LogFile, if set, is a rotating log file the client tees its output to.
	LogFile string
}

func New() *EnvSettings {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	env := &EnvSettings{
		APIURL:     envOr("GAMEBIRD_API_URL", defaultAPIURL),
		CDNURL:     envOr("GAMEBIRD_CDN_URL", defaultCDNURL),
		DataHome:   envOr("GAMEBIRD_DATA_HOME", filepath.Join(home, "gamebird", "store")),
		GamesDir:   envOr("GAMEBIRD_GAMES_DIR", filepath.Join(home, "gamebird", "games")),
		LogFile:    os.Getenv("GAMEBIRD_LOG_FILE"),
		Timeout:    defaultTimeout,
		MaxRetries: defaultMaxRetries,
	}
	if v, err := time.ParseDuration(os.Getenv("GAMEBIRD_TIMEOUT")); err == nil {
		env.Timeout = v
	}
	if v, err := strconv.Atoi(os.Getenv("GAMEBIRD_MAX_RETRIES")); err == nil {
		env.MaxRetries = v
	}
	env.Debug, _ = strconv.ParseBool(os.Getenv("GAMEBIRD_DEBUG"))
	return env
}

// AddFlags binds flags to the given flagset.
func (s *EnvSettings) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&s.APIURL, "api-url", s.APIURL, "base URL of the catalog API")
	fs.StringVar(&s.CDNURL, "cdn-url", s.CDNURL, "base URL of the download CDN")
	fs.StringVar(&s.DataHome, "data-home", s.DataHome, "directory for client state and caches")
	fs.StringVar(&s.GamesDir, "games-dir", s.GamesDir, "root directory games are installed under")
	fs.DurationVar(&s.Timeout, "timeout", s.Timeout, "per-request HTTP timeout")
	fs.IntVar(&s.MaxRetries, "max-retries", s.MaxRetries, "retry budget for failed requests")
	fs.BoolVar(&s.Debug, "debug", s.Debug, "enable verbose output")
	fs.StringVar(&s.LogFile, "log-file", s.LogFile, "rotating log file (empty logs to stderr only)")
}

// DownloadDir is where archives are staged before verification.
func (s *EnvSettings) DownloadDir() string {
	return filepath.Join(s.DataHome, "downloads")
}

// InstallPath is the final install directory for a title.
func (s *EnvSettings) InstallPath(slug string) string {
	return filepath.Join(s.GamesDir, slug)
}

func envOr(name, def string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return def
}
