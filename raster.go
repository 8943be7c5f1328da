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
	"errors"
	"fmt"
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// ErrStaleOrder is returned when an algorithm that traverses cells in
// elevation order is run on a raster that has changed since it was
// last sorted.
var ErrStaleOrder = errors.New("thawscape: elevation order is out of date; sort the raster first")

// Raster is a dense two-dimensional grid of values with ASCII-grid
// style georeferencing. Row i runs over [0, SizeX) and column j over
// [0, SizeY); values are stored row-major so the flat index of
// cell (i, j) is i*SizeY+j.
type Raster struct {
	data *sparse.DenseArray

	XLLCorner float64 // x coordinate of the lower left corner
	YLLCorner float64 // y coordinate of the lower left corner
	CellSize  float64 // grid resolution [m]
	NoData    float64 // value representing missing data

	// order holds the flat indices of the cells sorted ascending by value.
	order []int

	// gen is incremented every time the data changes; sortedGen is the
	// value of gen when order was last built.
	gen, sortedGen uint64
}

// NewRaster creates a raster with sizeX rows and sizeY columns where
// every cell is set to val.
func NewRaster(sizeX, sizeY int, val float64) *Raster {
	r := &Raster{
		data:     sparse.ZerosDense(sizeX, sizeY),
		CellSize: 1,
		NoData:   -9999,
	}
	if val != 0 {
		for k := range r.data.Elements {
			r.data.Elements[k] = val
		}
	}
	return r
}

// NewRasterLike creates a raster with the same size and georeferencing
// as r, with every cell set to val.
func NewRasterLike(r *Raster, val float64) *Raster {
	o := NewRaster(r.SizeX(), r.SizeY(), val)
	o.XLLCorner, o.YLLCorner = r.XLLCorner, r.YLLCorner
	o.CellSize, o.NoData = r.CellSize, r.NoData
	return o
}

// SizeX returns the number of rows.
func (r *Raster) SizeX() int { return r.data.Shape[0] }

// SizeY returns the number of columns.
func (r *Raster) SizeY() int { return r.data.Shape[1] }

// Len returns the number of cells.
func (r *Raster) Len() int { return len(r.data.Elements) }

// Get returns the value at cell (i, j).
func (r *Raster) Get(i, j int) float64 {
	return r.data.Elements[i*r.data.Shape[1]+j]
}

// Set sets the value at cell (i, j).
func (r *Raster) Set(val float64, i, j int) {
	r.data.Elements[i*r.data.Shape[1]+j] = val
	r.gen++
}

// Add adds val to the value at cell (i, j).
func (r *Raster) Add(val float64, i, j int) {
	r.data.Elements[i*r.data.Shape[1]+j] += val
	r.gen++
}

// ptr returns a pointer to the value at cell (i, j). Writes through it
// are not recorded until touch is called, so concurrent writers to
// different cells do not contend.
func (r *Raster) ptr(i, j int) *float64 {
	return &r.data.Elements[i*r.data.Shape[1]+j]
}

// touch marks the raster as changed.
func (r *Raster) touch() { r.gen++ }

// SetAll sets every cell to val.
func (r *Raster) SetAll(val float64) {
	for k := range r.data.Elements {
		r.data.Elements[k] = val
	}
	r.gen++
}

// Elements returns the underlying row-major values. The returned slice
// must not be modified; use Set or CopyFrom instead.
func (r *Raster) Elements() []float64 { return r.data.Elements }

// Array returns a copy of the data as a sparse.DenseArray.
func (r *Raster) Array() *sparse.DenseArray { return r.data.Copy() }

// Copy returns a deep copy of r. The elevation order is not copied.
func (r *Raster) Copy() *Raster {
	o := NewRasterLike(r, 0)
	copy(o.data.Elements, r.data.Elements)
	return o
}

// CopyFrom overwrites the values in r with the values in src.
func (r *Raster) CopyFrom(src *Raster) error {
	if !r.SameSize(src) {
		return fmt.Errorf("thawscape: copying %d×%d raster into %d×%d raster: %v",
			src.SizeX(), src.SizeY(), r.SizeX(), r.SizeY(), ErrSizeMismatch)
	}
	copy(r.data.Elements, src.data.Elements)
	r.gen++
	return nil
}

// SameSize returns whether r and o have the same dimensions.
func (r *Raster) SameSize(o *Raster) bool {
	return o != nil && r.SizeX() == o.SizeX() && r.SizeY() == o.SizeY()
}

// IsEdge returns whether cell (i, j) is on the outer edge of the grid.
func (r *Raster) IsEdge(i, j int) bool {
	return i == 0 || j == 0 || i == r.SizeX()-1 || j == r.SizeY()-1
}

// Sort builds the elevation order: the flat indices of all cells sorted
// ascending by value, with ties kept in flat-index order.
func (r *Raster) Sort() {
	n := r.Len()
	if cap(r.order) < n {
		r.order = make([]int, n)
	}
	r.order = r.order[:n]
	for k := range r.order {
		r.order[k] = k
	}
	vals := r.data.Elements
	sort.Stable(byValue{idx: r.order, vals: vals})
	r.sortedGen = r.gen
}

// SortedIJ returns the row and column of the t'th lowest cell as of the
// last call to Sort.
func (r *Raster) SortedIJ(t int) (i, j int) {
	k := r.order[t]
	return k / r.data.Shape[1], k % r.data.Shape[1]
}

// checkOrder returns ErrStaleOrder if the raster has not been sorted
// since its values last changed.
func (r *Raster) checkOrder() error {
	if len(r.order) != r.Len() || r.sortedGen != r.gen {
		return ErrStaleOrder
	}
	return nil
}

type byValue struct {
	idx  []int
	vals []float64
}

func (b byValue) Len() int           { return len(b.idx) }
func (b byValue) Less(i, j int) bool { return b.vals[b.idx[i]] < b.vals[b.idx[j]] }
func (b byValue) Swap(i, j int)      { b.idx[i], b.idx[j] = b.idx[j], b.idx[i] }

// Bounds returns the spatial extent of the raster. As in an ASCII grid
// the first row is the northern edge and the first column the western edge.
func (r *Raster) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: r.XLLCorner, Y: r.YLLCorner},
		Max: geom.Point{
			X: r.XLLCorner + float64(r.SizeY())*r.CellSize,
			Y: r.YLLCorner + float64(r.SizeX())*r.CellSize,
		},
	}
}

// Min returns the smallest value in the raster.
func (r *Raster) Min() float64 { return floats.Min(r.data.Elements) }

// Max returns the largest value in the raster.
func (r *Raster) Max() float64 { return floats.Max(r.data.Elements) }

// Sum returns the sum of all values in the raster.
func (r *Raster) Sum() float64 { return floats.Sum(r.data.Elements) }
