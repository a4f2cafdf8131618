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

package action

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// wrapperDir is a folder name some packagers wrap their archive contents
// in; it is flattened away during extraction.
const wrapperDir = "game"

// extractArchive unpacks the zip at archive into a fresh staging directory
// under gamesRoot and returns the staging path plus the relative paths of
// the extracted files. The caller swaps the staging directory over the
// final install path; on error the staging directory is already gone.
//
// Keeping the staging directory under gamesRoot guarantees the final
// rename stays on one filesystem.
func extractArchive(ctx context.Context, archive, gamesRoot string) (string, []string, error) {
	if err := os.MkdirAll(gamesRoot, 0755); err != nil {
		return "", nil, err
	}
	staging, err := os.MkdirTemp(gamesRoot, ".staging-")
	if err != nil {
		return "", nil, err
	}

	files, err := unpack(ctx, archive, staging)
	if err != nil {
		os.RemoveAll(staging)
		return "", nil, err
	}
	return staging, files, nil
}

func unpack(ctx context.Context, archive, dest string) ([]string, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", archive)
	}
	defer zr.Close()

	var files []string
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := flatten(f.Name)
		if name == "" {
			continue
		}
		if !validRelPath(name) {
			return nil, errors.Errorf("archive entry %q escapes the install directory", f.Name)
		}

		target := filepath.Join(dest, filepath.FromSlash(name))
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return nil, err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return nil, err
		}
		if err := writeEntry(f, target); err != nil {
			return nil, errors.Wrapf(err, "extracting %s", f.Name)
		}
		files = append(files, name)
	}

	sort.Strings(files)
	return files, nil
}

func writeEntry(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	// Launcher scripts must stay executable.
	if strings.HasSuffix(target, ".sh") {
		mode |= 0755
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// flatten strips the wrapper folder some archives carry, so both wrapped
// and unwrapped archives install identically.
func flatten(name string) string {
	name = strings.TrimPrefix(path2slash(name), wrapperDir+"/")
	if name == wrapperDir || name == wrapperDir+"/" {
		return ""
	}
	return strings.TrimSuffix(name, "/")
}

func path2slash(name string) string {
	return strings.ReplaceAll(name, `\`, "/")
}

func validRelPath(name string) bool {
	if name == "" || strings.HasPrefix(name, "/") {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}
