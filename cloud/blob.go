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


package cloud

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"gocloud.dev/blob"
)

// splitURL splits a blob location in the format 'provider://bucket/key'
// into its bucket and key.
func splitURL(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("thawscape/cloud: parsing blob location: %v", err)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("thawscape/cloud: blob location %s has no key", location)
	}
	return u.Scheme + "://" + u.Host, key, nil
}

// ReadBlob copies the blob at the given location, in the format
// 'provider://bucket/key', to w.
func ReadBlob(ctx context.Context, w io.Writer, location string) error {
	bucketName, key, err := splitURL(location)
	if err != nil {
		return err
	}
	bucket, err := OpenBucket(ctx, bucketName)
	if err != nil {
		return err
	}
	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		return fmt.Errorf("thawscape/cloud: reading blob key %s: %v", key, err)
	}
	defer r.Close()
	if _, err = io.Copy(w, r); err != nil {
		return fmt.Errorf("thawscape/cloud: reading blob key %s: %v", key, err)
	}
	return nil
}

// WriteBlob writes the contents of r to a blob at the given location,
// in the format 'provider://bucket/key'.
func WriteBlob(ctx context.Context, location string, r io.Reader) error {
	bucketName, key, err := splitURL(location)
	if err != nil {
		return err
	}
	bucket, err := OpenBucket(ctx, bucketName)
	if err != nil {
		return err
	}
	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{})
	if err != nil {
		return fmt.Errorf("thawscape/cloud: creating writer for blob %s: %v", key, err)
	}
	if _, err = io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("thawscape/cloud: copying blob %s: %v", key, err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("thawscape/cloud: writing blob %s: %v", key, err)
	}
	return nil
}
