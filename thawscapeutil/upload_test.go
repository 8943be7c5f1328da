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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/chrisdjscott/ThawScape/cloud"
)

func TestMaybeUploadLocal(t *testing.T) {
	var u uploader
	if p := u.maybeUpload("out/topo.asc"); p != "out/topo.asc" {
		t.Errorf("maybeUpload: %s", p)
	}
	if p := u.maybeUploadDir("out"); p != "out" {
		t.Errorf("maybeUploadDir: %s", p)
	}
	if len(u.files) != 0 || len(u.dirs) != 0 || u.dir != "" {
		t.Errorf("nothing should be registered for upload: %+v", u)
	}
}

func TestUploadOutput(t *testing.T) {
	const bucket = "testbucket_upload"
	if err := os.Mkdir(bucket, os.ModePerm); err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(bucket)

	var u uploader
	logPath := u.maybeUpload("file://" + bucket + "/run1.log")
	dir := u.maybeUploadDir("file://" + bucket + "/run1/")
	if u.err != nil {
		t.Fatal(u.err)
	}
	defer os.RemoveAll(u.dir)
	if filepath.Base(logPath) != "run1.log" || filepath.Base(dir) != "run1" {
		t.Fatalf("local paths: %s, %s", logPath, dir)
	}

	files := map[string]string{
		logPath:                            "log",
		filepath.Join(dir, "a.asc"):        "a",
		filepath.Join(dir, "sub", "b.asc"): "b",
		filepath.Join(dir, "params.toml"):  "params",
	}
	for path, content := range files {
		if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
			t.Fatal(err)
		}
		if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := u.uploadOutput(nil); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	b, err := cloud.OpenBucket(ctx, "file://"+bucket)
	if err != nil {
		t.Fatal(err)
	}
	for key, want := range map[string]string{
		"run1.log":         "log",
		"run1/a.asc":       "a",
		"run1/sub/b.asc":   "b",
		"run1/params.toml": "params",
	} {
		r, err := b.NewReader(ctx, key, nil)
		if err != nil {
			t.Errorf("%s: %v", key, err)
			continue
		}
		got, err := ioutil.ReadAll(r)
		r.Close()
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != want {
			t.Errorf("%s: got %q, want %q", key, got, want)
		}
	}
}

func TestUploadOutputMissingFile(t *testing.T) {
	var u uploader
	u.files = [][2]string{{"testdata/missing.asc", "file://nobucket/missing.asc"}}
	if err := u.uploadOutput(nil); err == nil {
		t.Error("expected an error for a missing local file")
	}
}
