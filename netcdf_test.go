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

package thawscape

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/kr/pretty"
)

func TestNetCDFRoundTrip(t *testing.T) {
	dir, err := ioutil.TempDir("", "thawscape")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	topo := RandomField(5, 3, 4)
	topo.XLLCorner, topo.YLLCorner, topo.CellSize = 10, 20, 5
	flow := NewRasterLike(topo, 2)

	path := filepath.Join(dir, "out.nc")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	err = WriteNetCDF(f, map[string]*Raster{"topo": topo, "flow": flow}, map[string]string{"run_id": "abc"})
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	f, err = os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := ReadNetCDF(f, "topo")
	if err != nil {
		t.Fatal(err)
	}
	if got.SizeX() != 5 || got.SizeY() != 3 {
		t.Fatalf("size = %d×%d", got.SizeX(), got.SizeY())
	}
	if diff := pretty.Diff(topo.Elements(), got.Elements()); len(diff) > 0 {
		t.Errorf("topo differs: %v", diff)
	}
	if got.XLLCorner != 10 || got.YLLCorner != 20 || got.CellSize != 5 {
		t.Errorf("georeferencing: %v %v %v", got.XLLCorner, got.YLLCorner, got.CellSize)
	}

	gotFlow, err := ReadNetCDF(f, "flow")
	if err != nil {
		t.Fatal(err)
	}
	if gotFlow.Sum() != 30 {
		t.Errorf("flow sum = %g; want 30", gotFlow.Sum())
	}

	if _, err := ReadNetCDF(f, "missing"); err == nil {
		t.Error("reading a missing variable should fail")
	}
}

func TestWriteNetCDFSizeMismatch(t *testing.T) {
	dir, err := ioutil.TempDir("", "thawscape")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	f, err := os.Create(filepath.Join(dir, "bad.nc"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	err = WriteNetCDF(f, map[string]*Raster{"a": NewRaster(2, 2, 0), "b": NewRaster(2, 3, 0)}, nil)
	if err == nil {
		t.Error("layers of different sizes should fail")
	}
}
