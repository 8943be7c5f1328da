/*
Copyright © 2019 the ThawScape authors.
This file is part of ThawScape.

ThawScape is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ThawScape is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ThawScape.  If not, see <http://www.gnu.org/licenses/>.
*/


package thawscapeutil

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/chrisdjscott/ThawScape/cloud"
)

// maybeDownload checks if the input is an existing file locally.
// If not, it checks if the file is a URL or a blob storage location.
// If it is, it downloads the file and returns the path to the
// downloaded file. Otherwise, or if the download fails, path is
// returned unchanged.
// c, if not nil, is a channel across which error and
// logging messages will be sent.
func maybeDownload(ctx context.Context, path string, c chan string) string {
	// Check if local file exists. If it does, return the given path.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path
	}

	// If the path starts with one of these prefixes, download the file and
	// return the location it was downloaded to.
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return download(path, c, func(w io.Writer) error {
			resp, err := http.Get(path)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("downloading %s: %s", path, resp.Status)
			}
			_, err = io.Copy(w, resp.Body)
			return err
		})
	}

	if IsBlob(path) {
		return download(path, c, func(w io.Writer) error {
			return cloud.ReadBlob(ctx, w, path)
		})
	}

	return path
}

// download creates a file in a temporary directory with the same name
// as the last element of p, fills it using get, and returns its path.
func download(p string, c chan string, get func(w io.Writer) error) string {
	// Prepare a temporary directory for the downloads.
	dir, err := ioutil.TempDir("", "thawscape")
	if err != nil {
		report(c, fmt.Errorf("thawscape: failed creating temporary download directory: %v", err))
		return p
	}
	local := filepath.Join(dir, path.Base(p))
	w, err := os.Create(local)
	if err != nil {
		report(c, fmt.Errorf("thawscape: failed creating file for download: %v", err))
		return p
	}
	if err := get(w); err != nil {
		w.Close()
		report(c, err)
		return p
	}
	if err := w.Close(); err != nil {
		report(c, err)
		return p
	}
	return local
}

func report(c chan string, err error) {
	if c != nil {
		c <- err.Error()
	}
}

// IsBlob returns whether the given filename represents a blob.
// (i.e., if it starts with `gs://`, 's3://', or 'file://').
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}
