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

package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, content []byte) (string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.zip")
	require.NoError(t, os.WriteFile(path, content, 0644))
	sum := sha256.Sum256(content)
	return path, hex.EncodeToString(sum[:])
}

func TestDigestFile(t *testing.T) {
	path, digest := writeFixture(t, []byte("the archive body"))

	got, err := DigestFile(path)
	require.NoError(t, err)
	assert.Equal(t, digest, got)
}

func TestDigestFileMissing(t *testing.T) {
	_, err := DigestFile(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	content := []byte("some perfectly fine archive content")
	path, digest := writeFixture(t, content)

	assert.NoError(t, Validate(path, digest, int64(len(content))))
}

func TestValidateIsCaseInsensitive(t *testing.T) {
	content := []byte("content")
	path, digest := writeFixture(t, content)

	assert.NoError(t, Validate(path, strings.ToUpper(digest), int64(len(content))))
}

func TestValidateSizeMismatch(t *testing.T) {
	content := []byte("content")
	path, digest := writeFixture(t, content)

	err := Validate(path, digest, int64(len(content))+1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "size mismatch")
}

func TestValidateSingleByteMutation(t *testing.T) {
	content := []byte("a body whose every byte matters")
	path, digest := writeFixture(t, content)

	for i := range content {
		mutated := append([]byte(nil), content...)
		mutated[i] ^= 0x01
		require.NoError(t, os.WriteFile(path, mutated, 0644))

		err := Validate(path, digest, int64(len(mutated)))
		assert.Errorf(t, err, "mutation at byte %d must fail validation", i)
	}
}

func TestValidateMissingFile(t *testing.T) {
	err := Validate(filepath.Join(t.TempDir(), "gone.zip"), "ab", 2)
	assert.Error(t, err)
}
