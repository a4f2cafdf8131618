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

// Package action holds the operations the store client performs: install,
// uninstall, and update resolution.
//
// Each operation is a struct built over a shared Configuration, with a Run
// method. Install drives the full state machine: download into a staging
// file, verify digest and size, extract into a staging directory, swap it
// over the install path, then record the new version. Every failure path
// leaves the prior durable state untouched.
package action

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/suntank/gamebird-os/pkg/cli"
	"github.com/suntank/gamebird-os/pkg/getter"
	"github.com/suntank/gamebird-os/pkg/storage"
	"github.com/suntank/gamebird-os/pkg/store"
)

var (
	// ErrIntegrityFailure indicates a downloaded archive did not match its
	// manifest-declared digest or size. The archive has already been
	// deleted when this surfaces; the operation is retry-eligible.
	ErrIntegrityFailure = errors.New("archive failed integrity verification")
	// ErrExtractionFailure indicates the verified archive could not be
	// unpacked. The previous install, if any, is untouched.
	ErrExtractionFailure = errors.New("archive extraction failed")
)

// Configuration injects the dependencies an action needs.
type Configuration struct {
	// Settings is the immutable device environment.
	Settings *cli.EnvSettings
	// Client talks to the catalog, manifest and archive endpoints.
	Client *store.Client
	// Storage persists the installed record and caches.
	Storage *storage.Store
	// Log receives operation chatter.
	Log logrus.FieldLogger
}

// NewConfiguration wires up a Configuration from environment settings.
func NewConfiguration(settings *cli.EnvSettings) (*Configuration, error) {
	log := logrus.StandardLogger()

	api := getter.New(settings.APIURL,
		getter.WithTimeout(settings.Timeout),
		getter.WithMaxRetries(settings.MaxRetries),
		getter.WithLogger(log),
	)
	cdn := getter.New(settings.CDNURL,
		getter.WithTimeout(settings.Timeout),
		getter.WithMaxRetries(settings.MaxRetries),
		getter.WithLogger(log),
	)

	st, err := storage.New(settings.DataHome)
	if err != nil {
		return nil, err
	}

	return &Configuration{
		Settings: settings,
		Client:   store.NewClient(api, cdn),
		Storage:  st,
		Log:      log,
	}, nil
}
