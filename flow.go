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
	"math"
)

// FlowExponent controls how strongly multiple-direction flow is
// concentrated toward the steepest descent direction.
const FlowExponent = 1.1

const oneOverSqrt2 = 1 / math.Sqrt2

// FlowRouter accumulates flow over a grid using a multiple flow direction
// algorithm: each cell passes its flow on to all of its lower neighbours in
// proportion to the height drop to each one. The flow raster therefore holds
// the number of contributing unit cells upstream of each cell.
type FlowRouter struct {
	nbrs *Neighbours

	// inflow holds flow entering the domain across its edges; it is
	// only used if enableInflow is true.
	inflow       *Raster
	enableInflow bool
}

// NewFlowRouter creates a new flow router. If enableInflow is true,
// inflow must be non-nil and is used to seed the edge cells each time
// the flow is reset; values in its interior cells are ignored. Edge
// cells holding the inflow raster's NoData value add no flow, and any
// other negative edge value is an error.
func NewFlowRouter(nbrs *Neighbours, inflow *Raster, enableInflow bool) (*FlowRouter, error) {
	if enableInflow {
		if inflow == nil {
			return nil, fmt.Errorf("thawscape: boundary inflow is enabled but no inflow raster was provided")
		}
		if inflow.SizeX() != nbrs.SizeX() || inflow.SizeY() != nbrs.SizeY() {
			return nil, fmt.Errorf("thawscape: inflow raster is %d×%d but grid is %d×%d: %v",
				inflow.SizeX(), inflow.SizeY(), nbrs.SizeX(), nbrs.SizeY(), ErrSizeMismatch)
		}
		for i := 0; i < inflow.SizeX(); i++ {
			for j := 0; j < inflow.SizeY(); j++ {
				if !inflow.IsEdge(i, j) {
					continue
				}
				if v := inflow.Get(i, j); v != inflow.NoData && !(v >= 0) {
					return nil, fmt.Errorf("thawscape: inflow at (%d, %d) is %g but must not be negative", i, j, v)
				}
			}
		}
	}
	return &FlowRouter{nbrs: nbrs, inflow: inflow, enableInflow: enableInflow}, nil
}

// Reset sets every cell of flow to baseline and, if boundary inflow is
// enabled, adds the inflow values to the edge cells.
func (f *FlowRouter) Reset(flow *Raster, baseline float64) {
	flow.SetAll(baseline)
	if !f.enableInflow {
		return
	}
	nx, ny := flow.SizeX(), flow.SizeY()
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			if !flow.IsEdge(i, j) {
				continue
			}
			if v := f.inflow.Get(i, j); v != f.inflow.NoData {
				flow.Add(v, i, j)
			}
		}
	}
}

// Weights returns the share of the flow at cell (i, j) that goes to each
// of its eight neighbours, in the order they are returned by
// Neighbours.around. The weights sum to one if the cell has any lower
// neighbour and are all zero otherwise.
func (f *FlowRouter) Weights(topo *Raster, i, j int) [8]float64 {
	var w [8]float64
	h := topo.Get(i, j)
	var tot float64
	for k, n := range f.nbrs.around(i, j) {
		drop := h - topo.Get(n.i, n.j)
		if !(drop > 0) {
			continue
		}
		if n.diagonal {
			drop *= oneOverSqrt2
		}
		w[k] = math.Pow(drop, FlowExponent)
		tot += w[k]
	}
	if tot == 0 {
		return w
	}
	for k := range w {
		w[k] /= tot
	}
	return w
}

// Run routes flow from every cell to its lower neighbours, starting from
// the highest cell so that each cell has received everything from upslope
// before it passes its own flow on. Only neighbouring cells are written
// to. topo must have been sorted since it last changed.
func (f *FlowRouter) Run(topo, flow *Raster) error {
	if err := topo.checkOrder(); err != nil {
		return err
	}
	if !topo.SameSize(flow) {
		return fmt.Errorf("thawscape: routing flow: %v", ErrSizeMismatch)
	}
	for t := topo.Len() - 1; t >= 0; t-- {
		i, j := topo.SortedIJ(t)
		w := f.Weights(topo, i, j)
		fij := flow.Get(i, j)
		for k, n := range f.nbrs.around(i, j) {
			if w[k] > 0 {
				flow.Add(fij*w[k], n.i, n.j)
			}
		}
	}
	return nil
}
