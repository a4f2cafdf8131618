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
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/suntank/gamebird-os/internal/version"
	"github.com/suntank/gamebird-os/pkg/action"
	"github.com/suntank/gamebird-os/pkg/cli"
)

var globalUsage = `The Gamebird store client.

Browse the game catalog, install and update games, and manage the titles
installed on this device. Archives are verified against their manifest
digest before anything touches the games directory, and installs are
applied atomically: an interrupted download or a power loss mid-update
leaves the previous install exactly as it was.

Environment variables:

| Name                 | Description                                     |
|----------------------|-------------------------------------------------|
| GAMEBIRD_API_URL     | base URL of the catalog API                     |
| GAMEBIRD_CDN_URL     | base URL of the download CDN                    |
| GAMEBIRD_DATA_HOME   | directory for client state and caches           |
| GAMEBIRD_GAMES_DIR   | root directory games are installed under        |
| GAMEBIRD_DEBUG       | enable verbose output                           |
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings := cli.New()
	cfg := &action.Configuration{}

	cmd := newRootCmd(cfg, settings, os.Stdout)
	if err := cmd.ExecuteContext(ctx); err != nil {
		logrus.Debugf("%+v", err)
		os.Exit(1)
	}
}

func newRootCmd(cfg *action.Configuration, settings *cli.EnvSettings, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "gamebird",
		Short:        "the Gamebird store client",
		Long:         globalUsage,
		Version:      version.GetVersion(),
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			initLogging(settings)
			c, err := action.NewConfiguration(settings)
			if err != nil {
				return err
			}
			*cfg = *c
			return nil
		},
	}
	settings.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newCatalogCmd(cfg, out),
		newShowCmd(cfg, out),
		newInstallCmd(cfg, out),
		newUninstallCmd(cfg, out),
		newUpdateCmd(cfg, out),
		newListCmd(cfg, out),
		newRateCmd(cfg, out),
	)
	return cmd
}

func initLogging(settings *cli.EnvSettings) {
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: false})
	if settings.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if settings.LogFile != "" {
		rotated := &lumberjack.Logger{
			Filename:   settings.LogFile,
			MaxSize:    5, // megabytes; the device has a small flash
			MaxBackups: 2,
			MaxAge:     28, // days
		}
		logrus.SetOutput(io.MultiWriter(os.Stderr, rotated))
	}
}
