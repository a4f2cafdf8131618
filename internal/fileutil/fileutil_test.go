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
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()

	testpath := filepath.Join(dir, "test")
	stringContent := "Test content"
	reader := bytes.NewReader([]byte(stringContent))
	mode := os.FileMode(0644)

	err := AtomicWriteFile(testpath, reader, mode)
	if err != nil {
		t.Errorf("AtomicWriteFile error: %s", err)
	}

	got, err := os.ReadFile(testpath)
	if err != nil {
		t.Fatal(err)
	}

	if stringContent != string(got) {
		t.Fatalf("expected: %s, got: %s", stringContent, string(got))
	}

	gotinfo, err := os.Stat(testpath)
	if err != nil {
		t.Fatal(err)
	}

	if mode != gotinfo.Mode() {
		t.Fatalf("expected %s: to be the same mode as %s",
			mode, gotinfo.Mode())
	}
}

func TestAtomicWriteFileReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	testpath := filepath.Join(dir, "test")

	if err := AtomicWriteFile(testpath, bytes.NewReader([]byte("old")), 0644); err != nil {
		t.Fatal(err)
	}
	if err := AtomicWriteFile(testpath, bytes.NewReader([]byte("new")), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(testpath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Fatalf("expected: new, got: %s", string(got))
	}

	// No temporary files may survive the write.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the target file in %s, found %d entries", dir, len(entries))
	}
}

func TestSwapDir(t *testing.T) {
	root := t.TempDir()

	mkdirWithFile := func(dir, content string) string {
		path := filepath.Join(root, dir)
		if err := os.MkdirAll(path, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(path, "data"), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	dst := filepath.Join(root, "final")

	// Swap into a path that does not exist yet.
	src := mkdirWithFile("staging1", "v1")
	if err := SwapDir(src, dst); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(filepath.Join(dst, "data"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v1" {
		t.Fatalf("expected v1, got %s", string(got))
	}

	// Swap over the existing directory.
	src = mkdirWithFile("staging2", "v2")
	if err := SwapDir(src, dst); err != nil {
		t.Fatal(err)
	}
	got, err = os.ReadFile(filepath.Join(dst, "data"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v2" {
		t.Fatalf("expected v2, got %s", string(got))
	}

	if _, err := os.Stat(dst + ".old"); !os.IsNotExist(err) {
		t.Fatalf("expected the moved-aside directory to be removed, stat err: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected the staging directory to be gone, stat err: %v", err)
	}
}

func TestSwapDirReclaimsOrphanedOld(t *testing.T) {
	// A crash between moving dst aside and renaming src into place leaves
	// an .old directory with no dst. The next swap must reclaim it.
	root := t.TempDir()
	dst := filepath.Join(root, "final")

	orphan := dst + ".old"
	if err := os.MkdirAll(orphan, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(orphan, "data"), []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	src := filepath.Join(root, "staging")
	if err := os.MkdirAll(src, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "data"), []byte("fresh"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := SwapDir(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(filepath.Join(dst, "data"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "fresh" {
		t.Fatalf("expected fresh, got %s", string(got))
	}
	if _, err := os.Stat(orphan); !os.IsNotExist(err) {
		t.Fatalf("expected the orphaned directory to be removed, stat err: %v", err)
	}
}

func TestSwapDirMissingSourceKeepsOld(t *testing.T) {
	root := t.TempDir()

	dst := filepath.Join(root, "final")
	if err := os.MkdirAll(dst, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dst, "data"), []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := SwapDir(filepath.Join(root, "does-not-exist"), dst); err == nil {
		t.Fatal("expected an error for a missing source")
	}

	// The previous directory must be back under its original name.
	got, err := os.ReadFile(filepath.Join(dst, "data"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "old" {
		t.Fatalf("expected old content restored, got %s", string(got))
	}
}
