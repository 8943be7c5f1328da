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

import "fmt"

// Neighbours holds precomputed neighbour indices for the four orthogonal
// directions of a regular grid. Cells on the edge of the grid are
// their own neighbours in the direction that would leave the grid, so
// lookups never wrap around and never go out of range.
type Neighbours struct {
	iup, idown []int
	jup, jdown []int
}

// NewNeighbours sets up neighbour indexing for a grid with sizeX rows
// and sizeY columns.
func NewNeighbours(sizeX, sizeY int) (*Neighbours, error) {
	if sizeX < 1 || sizeY < 1 {
		return nil, fmt.Errorf("thawscape: invalid grid size %d×%d", sizeX, sizeY)
	}
	n := &Neighbours{
		iup:   make([]int, sizeX),
		idown: make([]int, sizeX),
		jup:   make([]int, sizeY),
		jdown: make([]int, sizeY),
	}
	clampedLine(n.iup, n.idown)
	clampedLine(n.jup, n.jdown)
	return n, nil
}

// clampedLine fills the up and down index vectors of one grid axis.
func clampedLine(up, down []int) {
	last := len(up) - 1
	for k := range up {
		up[k] = k + 1
		down[k] = k - 1
	}
	up[last] = last
	down[0] = 0
}

// IUp returns the index of the next row.
func (n *Neighbours) IUp(i int) int { return n.iup[i] }

// IDown returns the index of the previous row.
func (n *Neighbours) IDown(i int) int { return n.idown[i] }

// JUp returns the index of the next column.
func (n *Neighbours) JUp(j int) int { return n.jup[j] }

// JDown returns the index of the previous column.
func (n *Neighbours) JDown(j int) int { return n.jdown[j] }

// SizeX is the number of rows the neighbours were set up for.
func (n *Neighbours) SizeX() int { return len(n.iup) }

// SizeY is the number of columns the neighbours were set up for.
func (n *Neighbours) SizeY() int { return len(n.jup) }

// neighbour is one of the eight cells surrounding a grid cell.
type neighbour struct {
	i, j     int
	diagonal bool
}

// around returns the eight neighbours of cell (i, j), orthogonal
// neighbours first. Cells on the grid edge will have themselves among
// their neighbours.
func (n *Neighbours) around(i, j int) [8]neighbour {
	iu, id, ju, jd := n.iup[i], n.idown[i], n.jup[j], n.jdown[j]
	return [8]neighbour{
		{i: iu, j: j},
		{i: id, j: j},
		{i: i, j: ju},
		{i: i, j: jd},
		{i: iu, j: ju, diagonal: true},
		{i: iu, j: jd, diagonal: true},
		{i: id, j: ju, diagonal: true},
		{i: id, j: jd, diagonal: true},
	}
}
