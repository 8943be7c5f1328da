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
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/chrisdjscott/ThawScape"
	"github.com/chrisdjscott/ThawScape/cloud"
	"github.com/sirupsen/logrus"
)

// uploadRetries is the number of times a failed upload is retried.
const uploadRetries = 5

type uploader struct {
	// files is a set of file path pairs. The first of each pair
	// is a local file path and the second is a blob storage
	// path where it should be uploaded to.
	files [][2]string

	// dirs is a set of directory pairs. Every file in the first
	// of each pair is uploaded under the blob storage prefix given
	// by the second.
	dirs [][2]string

	err error
	dir string
}

// uploadOutput uploads the files and directories registered with
// maybeUpload and maybeUploadDir. d is used for logging and may be nil.
func (u *uploader) uploadOutput(d *thawscape.Model) error {
	if u.err != nil {
		return u.err
	}
	var log logrus.FieldLogger = logrus.StandardLogger()
	if d != nil && d.Log != nil {
		log = d.Log
	}
	ctx := context.TODO()
	files := append([][2]string{}, u.files...)
	for _, dir := range u.dirs {
		err := filepath.Walk(dir[0], func(p string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return err
			}
			rel, err := filepath.Rel(dir[0], p)
			if err != nil {
				return err
			}
			files = append(files, [2]string{p, strings.TrimSuffix(dir[1], "/") + "/" + filepath.ToSlash(rel)})
			return nil
		})
		if err != nil {
			return fmt.Errorf("thawscape: listing files in '%s' for upload: %v", dir[0], err)
		}
	}
	for _, f := range files {
		if _, err := os.Stat(f[0]); err != nil {
			return fmt.Errorf("thawscape: opening file '%s' for upload: %s", f[0], err)
		}
		err := backoff.RetryNotify(
			func() error { return uploadFile(ctx, f[0], f[1]) },
			backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uploadRetries),
			func(err error, d time.Duration) {
				log.WithError(err).WithField("file", f[1]).Warnf("upload failed: retrying in %v", d)
			},
		)
		if err != nil {
			return err
		}
		log.WithField("file", f[1]).Info("uploaded output")
	}
	return nil
}

// uploadFile copies the local file at src to the blob at dst.
func uploadFile(ctx context.Context, src, dst string) error {
	r, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("thawscape: opening file '%s' for upload: %s", src, err)
	}
	defer r.Close()
	if err := cloud.WriteBlob(ctx, dst, r); err != nil {
		return fmt.Errorf("thawscape: uploading file '%s': %v", src, err)
	}
	return nil
}

// tempDir returns the local directory that output is staged in before
// it is uploaded, creating it if necessary.
func (u *uploader) tempDir() string {
	if u.dir == "" {
		u.dir, u.err = ioutil.TempDir("", "thawscape")
	}
	return u.dir
}

// maybeUpload checks whether the given output file path refers to
// a blob storage location. If it does, then a temporary file location
// is returned. The file will then be uploaded to blob storage when
// uploadOutput method is run.
func (u *uploader) maybeUpload(p string) string {
	if u.err != nil {
		return ""
	}
	if !IsBlob(p) {
		return p
	}
	dir := u.tempDir()
	if u.err != nil {
		return ""
	}
	local := filepath.Join(dir, path.Base(p))
	u.files = append(u.files, [2]string{local, p})
	return local
}

// maybeUploadDir is like maybeUpload, but for an output directory. Every
// file in the returned local directory will be uploaded.
func (u *uploader) maybeUploadDir(p string) string {
	if u.err != nil {
		return ""
	}
	if !IsBlob(p) {
		return p
	}
	dir := u.tempDir()
	if u.err != nil {
		return ""
	}
	local := filepath.Join(dir, path.Base(strings.TrimSuffix(p, "/")))
	u.dirs = append(u.dirs, [2]string{local, p})
	return local
}
