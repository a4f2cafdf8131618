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

// Package integrity verifies downloaded archives against their
// manifest-declared digest and size.
//
// A failed validation is an expected outcome for a truncated or corrupted
// download, not a program error; the caller decides what to do with the bad
// artifact.
package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// digestChunkSize keeps memory use independent of archive size.
const digestChunkSize = 64 * 1024

// DigestFile computes the SHA-256 digest of the file at path, returned as a
// lowercase hex string.
func DigestFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, digestChunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", errors.Wrapf(err, "digesting %s", path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Validate checks the file at path against the expected SHA-256 digest and
// byte size. The size check runs first so an obviously truncated download
// fails without paying for a digest pass. The digest comparison is
// case-insensitive.
func Validate(path, expectedDigest string, expectedSize int64) error {
	fi, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "cannot stat %s", path)
	}
	if fi.Size() != expectedSize {
		return errors.Errorf("size mismatch for %s: expected %d bytes, got %d", path, expectedSize, fi.Size())
	}

	digest, err := DigestFile(path)
	if err != nil {
		return err
	}
	if !strings.EqualFold(digest, expectedDigest) {
		return errors.Errorf("digest mismatch for %s: expected %s, got %s", path, expectedDigest, digest)
	}
	return nil
}
