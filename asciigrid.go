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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// asciiHeader lists the ASCII grid header keys in the order they are
// written.
var asciiHeader = []string{"ncols", "nrows", "xllcorner", "yllcorner", "cellsize", "NODATA_value"}

// ReadASCIIGrid reads a raster in ESRI ASCII grid format. Each of the
// nrows data lines becomes one row of the raster.
func ReadASCIIGrid(r io.Reader) (*Raster, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1<<30)
	s.Split(bufio.ScanWords)

	header := make(map[string]float64, len(asciiHeader))
	for _, key := range asciiHeader {
		if !s.Scan() {
			return nil, fmt.Errorf("thawscape: reading ASCII grid: missing header key %s: %v", key, scanErr(s))
		}
		if !strings.EqualFold(s.Text(), key) {
			return nil, fmt.Errorf("thawscape: reading ASCII grid: expected header key %s but got %q", key, s.Text())
		}
		if !s.Scan() {
			return nil, fmt.Errorf("thawscape: reading ASCII grid: missing value for %s: %v", key, scanErr(s))
		}
		v, err := strconv.ParseFloat(s.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("thawscape: reading ASCII grid: header key %s: %v", key, err)
		}
		header[key] = v
	}
	ncols, nrows := int(header["ncols"]), int(header["nrows"])
	if ncols < 1 || nrows < 1 || float64(ncols) != header["ncols"] || float64(nrows) != header["nrows"] {
		return nil, fmt.Errorf("thawscape: reading ASCII grid: invalid size %g×%g", header["nrows"], header["ncols"])
	}

	g := NewRaster(nrows, ncols, 0)
	g.XLLCorner = header["xllcorner"]
	g.YLLCorner = header["yllcorner"]
	g.CellSize = header["cellsize"]
	g.NoData = header["NODATA_value"]
	for k := range g.data.Elements {
		if !s.Scan() {
			return nil, fmt.Errorf("thawscape: reading ASCII grid: got %d values but expected %d: %v",
				k, len(g.data.Elements), scanErr(s))
		}
		v, err := strconv.ParseFloat(s.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("thawscape: reading ASCII grid: row %d column %d: %v", k/ncols, k%ncols, err)
		}
		g.data.Elements[k] = v
	}
	return g, nil
}

func scanErr(s *bufio.Scanner) error {
	if err := s.Err(); err != nil {
		return err
	}
	return io.ErrUnexpectedEOF
}

// WriteASCIIGrid writes r to w in ESRI ASCII grid format.
func WriteASCIIGrid(w io.Writer, r *Raster) error {
	b := bufio.NewWriter(w)
	vals := []string{
		strconv.Itoa(r.SizeY()),
		strconv.Itoa(r.SizeX()),
		formatFloat(r.XLLCorner),
		formatFloat(r.YLLCorner),
		formatFloat(r.CellSize),
		formatFloat(r.NoData),
	}
	for i, key := range asciiHeader {
		fmt.Fprintf(b, "%-14s%s\n", key, vals[i])
	}
	ny := r.SizeY()
	for i := 0; i < r.SizeX(); i++ {
		row := r.data.Elements[i*ny : (i+1)*ny]
		for j, v := range row {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(formatFloat(v))
		}
		b.WriteByte('\n')
	}
	if err := b.Flush(); err != nil {
		return fmt.Errorf("thawscape: writing ASCII grid: %v", err)
	}
	return nil
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
