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
	"fmt"
	"sort"

	"github.com/ctessum/cdf"
)

// Georeferencing is stored in these global attributes.
var georefAttributes = []string{"xllcorner", "yllcorner", "cellsize", "nodata"}

// WriteNetCDF writes the given layers to w as variables of a netCDF
// file. All layers must be the same size. The values in attrs are
// written as global attributes.
func WriteNetCDF(w cdf.ReaderWriterAt, layers map[string]*Raster, attrs map[string]string) error {
	names := make([]string, 0, len(layers))
	for name := range layers {
		names = append(names, name)
	}
	if len(names) == 0 {
		return fmt.Errorf("thawscape: writing netCDF: no layers")
	}
	sort.Strings(names)
	first := layers[names[0]]
	for _, name := range names[1:] {
		if !first.SameSize(layers[name]) {
			return fmt.Errorf("thawscape: writing netCDF: layer %s: %v", name, ErrSizeMismatch)
		}
	}

	h := cdf.NewHeader([]string{"y", "x"}, []int{first.SizeX(), first.SizeY()})
	h.AddAttribute("", "comment", "ThawScape model output")
	georef := []float64{first.XLLCorner, first.YLLCorner, first.CellSize, first.NoData}
	for i, a := range georefAttributes {
		h.AddAttribute("", a, []float64{georef[i]})
	}
	attrNames := make([]string, 0, len(attrs))
	for a := range attrs {
		attrNames = append(attrNames, a)
	}
	sort.Strings(attrNames)
	for _, a := range attrNames {
		h.AddAttribute("", a, attrs[a])
	}
	for _, name := range names {
		h.AddVariable(name, []string{"y", "x"}, []float64{0})
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("thawscape: writing netCDF: %v", err)
	}
	for _, name := range names {
		end := f.Header.Lengths(name)
		start := make([]int, len(end))
		vw := f.Writer(name, start, end)
		if _, err := vw.Write(layers[name].data.Elements); err != nil {
			return fmt.Errorf("thawscape: writing netCDF variable %s: %v", name, err)
		}
	}
	return nil
}

// ReadNetCDF reads the named variable from a netCDF file written by
// WriteNetCDF, or any file with a two-dimensional double precision
// variable and the same georeferencing attributes.
func ReadNetCDF(r cdf.ReaderWriterAt, variable string) (*Raster, error) {
	f, err := cdf.Open(r)
	if err != nil {
		return nil, fmt.Errorf("thawscape: reading netCDF: %v", err)
	}
	var found bool
	for _, v := range f.Header.Variables() {
		if v == variable {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("thawscape: reading netCDF: no variable %q", variable)
	}
	dims := f.Header.Lengths(variable)
	if len(dims) != 2 {
		return nil, fmt.Errorf("thawscape: reading netCDF: variable %s has %d dimensions but should have 2", variable, len(dims))
	}

	g := NewRaster(dims[0], dims[1], 0)
	georef := []*float64{&g.XLLCorner, &g.YLLCorner, &g.CellSize, &g.NoData}
	for i, a := range georefAttributes {
		v, ok := f.Header.GetAttribute("", a).([]float64)
		if !ok || len(v) != 1 {
			return nil, fmt.Errorf("thawscape: reading netCDF: missing or invalid attribute %s", a)
		}
		*georef[i] = v[0]
	}

	vr := f.Reader(variable, nil, nil)
	buf := vr.Zero(g.Len())
	if _, err := vr.Read(buf); err != nil {
		return nil, fmt.Errorf("thawscape: reading netCDF variable %s: %v", variable, err)
	}
	data, ok := buf.([]float64)
	if !ok {
		return nil, fmt.Errorf("thawscape: reading netCDF: variable %s is %T but should be double precision", variable, buf)
	}
	copy(g.data.Elements, data)
	return g, nil
}
