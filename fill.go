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

import "container/heap"

// Fill raises every depression in topo to the height of its spill point,
// so that every cell has a non-ascending path to the edge of the grid.
// Filled depressions are left flat. It uses the improved Priority-Flood
// algorithm of Barnes, Lehman and Mulla (2014), which processes cells
// reached at or below the current spill height in a plain FIFO queue
// instead of the priority queue.
func Fill(topo *Raster) {
	nx, ny := topo.SizeX(), topo.SizeY()
	if nx == 0 || ny == 0 {
		return
	}
	h := topo.data.Elements
	closed := make([]bool, len(h))
	open := &cellQueue{}
	var pit []int
	var seq int

	push := func(k int) {
		heap.Push(open, queuedCell{k: k, h: h[k], seq: seq})
		seq++
	}

	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			if topo.IsEdge(i, j) {
				k := i*ny + j
				closed[k] = true
				push(k)
			}
		}
	}

	for open.Len() > 0 || len(pit) > 0 {
		var c int
		if len(pit) > 0 {
			c, pit = pit[0], pit[1:]
		} else {
			c = heap.Pop(open).(queuedCell).k
		}
		ci, cj := c/ny, c%ny
		for di := -1; di <= 1; di++ {
			for dj := -1; dj <= 1; dj++ {
				ni, nj := ci+di, cj+dj
				if (di == 0 && dj == 0) || ni < 0 || nj < 0 || ni >= nx || nj >= ny {
					continue
				}
				n := ni*ny + nj
				if closed[n] {
					continue
				}
				closed[n] = true
				if h[n] <= h[c] {
					h[n] = h[c]
					pit = append(pit, n)
				} else {
					push(n)
				}
			}
		}
	}
	topo.gen++
}

// queuedCell is a cell waiting in the Priority-Flood queue. seq breaks
// ties between equal heights in the order cells were queued.
type queuedCell struct {
	k   int
	h   float64
	seq int
}

type cellQueue []queuedCell

func (q cellQueue) Len() int { return len(q) }
func (q cellQueue) Less(a, b int) bool {
	if q[a].h == q[b].h {
		return q[a].seq < q[b].seq
	}
	return q[a].h < q[b].h
}
func (q cellQueue) Swap(a, b int)       { q[a], q[b] = q[b], q[a] }
func (q *cellQueue) Push(x interface{}) { *q = append(*q, x.(queuedCell)) }
func (q *cellQueue) Pop() interface{} {
	old := *q
	n := len(old)
	c := old[n-1]
	*q = old[:n-1]
	return c
}
