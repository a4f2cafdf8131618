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

package fileutil

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// AtomicWriteFile atomically (as atomic as os.Rename allows) writes a file to
// disk. The temporary file is created in the target's directory so the final
// rename never crosses a filesystem boundary.
func AtomicWriteFile(filename string, reader io.Reader, mode os.FileMode) error {
	tempFile, err := os.CreateTemp(filepath.Split(filename))
	if err != nil {
		return err
	}
	tempName := tempFile.Name()

	if _, err := io.Copy(tempFile, reader); err != nil {
		tempFile.Close() // return value is ignored as we are already on error path
		os.Remove(tempName)
		return err
	}

	if err := tempFile.Close(); err != nil {
		os.Remove(tempName)
		return err
	}

	if err := os.Chmod(tempName, mode); err != nil {
		os.Remove(tempName)
		return err
	}

	return os.Rename(tempName, filename)
}

// SwapDir atomically replaces dst with src. The previous dst, if any, is
// moved aside first and removed only after the swap succeeds, so a failure
// partway through leaves the old directory recoverable under its original
// name.
func SwapDir(src, dst string) error {
	old := dst + ".old"
	// A stale .old left by an interrupted prior swap is dead weight. It is
	// cleared even when dst itself is gone: a crash between the move-aside
	// and the final rename leaves only the .old behind.
	if err := os.RemoveAll(old); err != nil {
		return errors.Wrapf(err, "cannot clear %s", old)
	}

	moved := false
	if _, err := os.Lstat(dst); err == nil {
		if err := os.Rename(dst, old); err != nil {
			return errors.Wrapf(err, "cannot move %s aside", dst)
		}
		moved = true
	}

	if err := os.Rename(src, dst); err != nil {
		if moved {
			// Best effort: put the previous directory back.
			os.Rename(old, dst)
		}
		return errors.Wrapf(err, "cannot rename %s to %s", src, dst)
	}

	if moved {
		return os.RemoveAll(old)
	}
	return nil
}
