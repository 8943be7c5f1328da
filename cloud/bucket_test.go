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
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
)

func TestOpenBucketInvalid(t *testing.T) {
	ctx := context.Background()
	if _, err := OpenBucket(ctx, "ftp://bucket"); err == nil {
		t.Error("expected an error for an invalid provider")
	}
	if _, err := OpenBucket(ctx, "file://no_such_bucket"); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestSplitURL(t *testing.T) {
	for _, test := range []struct {
		location, bucket, key string
		err                   bool
	}{
		{location: "gs://bucket/dir/topo.asc", bucket: "gs://bucket", key: "dir/topo.asc"},
		{location: "file://testbucket/topo.asc", bucket: "file://testbucket", key: "topo.asc"},
		{location: "s3://bucket", err: true},
		{location: "s3://bucket/", err: true},
	} {
		bucket, key, err := splitURL(test.location)
		if (err != nil) != test.err {
			t.Errorf("%s: error %v", test.location, err)
			continue
		}
		if bucket != test.bucket || key != test.key {
			t.Errorf("%s: got %s, %s; want %s, %s", test.location, bucket, key, test.bucket, test.key)
		}
	}
}

func TestBlobRoundTrip(t *testing.T) {
	const bucket = "testbucket_cloud"
	if err := os.Mkdir(bucket, os.ModePerm); err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(bucket)
	ctx := context.Background()

	const content = "ncols 1\nnrows 1\n"
	loc := "file://" + bucket + "/run1/grid.asc"
	if err := WriteBlob(ctx, loc, strings.NewReader(content)); err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err := ReadBlob(ctx, &b, loc); err != nil {
		t.Fatal(err)
	}
	if b.String() != content {
		t.Errorf("got %q, want %q", b.String(), content)
	}
	if err := ReadBlob(ctx, &b, "file://"+bucket+"/missing.asc"); err == nil {
		t.Error("expected an error for a missing blob")
	}
}
