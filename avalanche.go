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

import "math"

// Avalanche relaxes slopes that are steeper than a critical height
// difference between neighbouring cells.
type Avalanche struct {
	Thresh     float64 // critical height difference between orthogonal neighbours [m]
	ThreshDiag float64 // critical height difference between diagonal neighbours [m]
}

// NewAvalanche returns an Avalanche for the given orthogonal critical
// height difference; the diagonal threshold is scaled by √2.
func NewAvalanche(thresh float64) *Avalanche {
	return &Avalanche{Thresh: thresh, ThreshDiag: thresh * math.Sqrt2}
}

// Run makes a single pass over topo from the highest to the lowest cell.
// Any neighbour of the current cell that stands more than the critical
// height above it is lowered to exactly that height. Neighbours lowered
// late in the pass are not revisited. topo must have been sorted since it
// last changed.
func (a *Avalanche) Run(topo *Raster, nbrs *Neighbours) error {
	if err := topo.checkOrder(); err != nil {
		return err
	}
	for t := topo.Len() - 1; t >= 0; t-- {
		i, j := topo.SortedIJ(t)
		h := topo.Get(i, j)
		for _, n := range nbrs.around(i, j) {
			thresh := a.Thresh
			if n.diagonal {
				thresh = a.ThreshDiag
			}
			if topo.Get(n.i, n.j)-h > thresh {
				topo.Set(h+thresh, n.i, n.j)
			}
		}
	}
	return nil
}
