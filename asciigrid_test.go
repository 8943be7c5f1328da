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
	"bytes"
	"strings"
	"testing"

	"github.com/kr/pretty"
)

const testASCIIGrid = `ncols 3
NROWS 2
xllcorner 500.5
yllcorner 1000
cellsize 10
nodata_value -9999
1 2 3
4.5 -9999 6
`

func TestReadASCIIGrid(t *testing.T) {
	r, err := ReadASCIIGrid(strings.NewReader(testASCIIGrid))
	if err != nil {
		t.Fatal(err)
	}
	if r.SizeX() != 2 || r.SizeY() != 3 {
		t.Fatalf("size = %d×%d; want 2×3", r.SizeX(), r.SizeY())
	}
	if r.XLLCorner != 500.5 || r.YLLCorner != 1000 || r.CellSize != 10 || r.NoData != -9999 {
		t.Errorf("header: %# v", pretty.Formatter(r))
	}
	if r.Get(0, 2) != 3 || r.Get(1, 0) != 4.5 || r.Get(1, 1) != -9999 {
		t.Errorf("data = %v", r.Elements())
	}
}

func TestASCIIGridRoundTrip(t *testing.T) {
	r := RandomField(4, 7, 9)
	r.XLLCorner, r.YLLCorner, r.CellSize = 12, -3.25, 2.5
	var b bytes.Buffer
	if err := WriteASCIIGrid(&b, r); err != nil {
		t.Fatal(err)
	}
	r2, err := ReadASCIIGrid(&b)
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(r.Elements(), r2.Elements()); len(diff) > 0 {
		t.Errorf("data differ: %v", diff)
	}
	if r2.XLLCorner != 12 || r2.YLLCorner != -3.25 || r2.CellSize != 2.5 || r2.NoData != r.NoData {
		t.Errorf("header: %# v", pretty.Formatter(r2))
	}
}

func TestReadASCIIGridErrors(t *testing.T) {
	tests := map[string]string{
		"missing key":   "ncols 3\nnrows 2\nxllcorner 0\n",
		"wrong key":     strings.Replace(testASCIIGrid, "cellsize", "dx", 1),
		"bad header":    strings.Replace(testASCIIGrid, "ncols 3", "ncols three", 1),
		"bad size":      strings.Replace(testASCIIGrid, "ncols 3", "ncols 0", 1),
		"short data":    strings.Replace(testASCIIGrid, "4.5 -9999 6\n", "4.5\n", 1),
		"non-numeric":   strings.Replace(testASCIIGrid, "4.5", "x", 1),
		"empty":         "",
		"partial count": strings.Replace(testASCIIGrid, "NROWS 2", "NROWS 2.5", 1),
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ReadASCIIGrid(strings.NewReader(in)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
