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

// Package version represents the current version of the project.
package version

import "fmt"

// version is the current version of the store client.
//
// Increment major version for breaking changes to the on-disk state layout,
// minor for new commands or endpoints, patch otherwise.
var version = "1.4.0"

// GetVersion returns the semver string of the version.
func GetVersion() string {
	return version
}

// GetUserAgent returns a user agent for HTTP requests against the catalog
// and CDN endpoints.
func GetUserAgent() string {
	return fmt.Sprintf("Gamebird/%s", version)
}
