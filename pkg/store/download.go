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

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const downloadChunkSize = 64 * 1024

// ProgressFunc is called as archive bytes arrive. total is -1 when the
// server did not declare a content length.
type ProgressFunc func(written, total int64)

// DownloadArchive streams the archive at remotePath from the CDN into dest.
// Bytes land in a sibling temporary file which is renamed over dest only
// once the stream completes, so dest either does not exist or holds a fully
// received archive. On any error, including cancellation, the temporary
// file is removed and nothing is left at dest.
//
// Returns the number of bytes written and the on-disk path.
func (c *Client) DownloadArchive(ctx context.Context, remotePath, dest string, progress ProgressFunc) (int64, string, error) {
	body, total, err := c.CDN.GetStream(ctx, remotePath)
	if err != nil {
		return 0, "", err
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, "", err
	}

	tmp := dest + ".partial"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, "", err
	}

	written, err := copyChunks(ctx, f, body, total, progress)
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return 0, "", errors.Wrapf(err, "downloading %s", remotePath)
	}

	// Flush to stable storage before the rename; a power loss must not
	// leave a fully-named archive with half its bytes.
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return 0, "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return 0, "", err
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return 0, "", err
	}

	c.Log.WithField("path", dest).Debugf("downloaded %d bytes", written)
	return written, dest, nil
}

func copyChunks(ctx context.Context, dst io.Writer, src io.Reader, total int64, progress ProgressFunc) (int64, error) {
	var written int64
	buf := make([]byte, downloadChunkSize)
	for {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return written, werr
			}
			written += int64(n)
			if progress != nil {
				progress(written, total)
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}
