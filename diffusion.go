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
	"runtime"
	"sync"
)

// ErrZeroPivot is returned when a tridiagonal solve encounters a zero
// pivot. With the coefficients used for hillslope diffusion this can
// only happen if the model is misconfigured.
var ErrZeroPivot = errors.New("thawscape: zero pivot in tridiagonal solve")

// DiffusionSweeps is the number of alternating-direction sweeps made
// each time hillslope diffusion is run.
const DiffusionSweeps = 5

// HillslopeDiffuser smooths the landscape using an alternating direction
// implicit scheme. Cells where the flow exceeds ThresholdArea are treated
// as channels and are not diffused.
type HillslopeDiffuser struct {
	D             float64 // diffusivity [m²/yr]
	Dt            float64 // timestep [yr]
	Deltax        float64 // grid spacing [m]
	ThresholdArea float64 // flow above which a cell is a channel

	old *Raster
}

// line holds the coefficients of one tridiagonal system and the scratch
// space needed to solve it.
type line struct {
	a, b, c, r, u, gam []float64
}

func newLine(n int) *line {
	return &line{
		a: make([]float64, n), b: make([]float64, n), c: make([]float64, n),
		r: make([]float64, n), u: make([]float64, n), gam: make([]float64, n),
	}
}

// Run carries out DiffusionSweeps sweeps of diffusion on topo, using flow
// to identify channel cells.
func (h *HillslopeDiffuser) Run(topo, flow *Raster) error {
	if !topo.SameSize(flow) {
		return fmt.Errorf("thawscape: hillslope diffusion: %v", ErrSizeMismatch)
	}
	if h.old == nil || !h.old.SameSize(topo) {
		h.old = NewRasterLike(topo, 0)
	}
	term1 := h.D * h.Dt / (h.Deltax * h.Deltax)
	nx, ny := topo.SizeX(), topo.SizeY()
	for sweep := 0; sweep < DiffusionSweeps; sweep++ {
		// Rows: solve along j for each i.
		if err := h.old.CopyFrom(topo); err != nil {
			return err
		}
		err := h.solveLines(nx, ny, func(i, j int) (int, int) { return i, j },
			term1, topo, flow)
		if err != nil {
			return err
		}
		// Columns: solve along i for each j.
		if err = h.old.CopyFrom(topo); err != nil {
			return err
		}
		err = h.solveLines(ny, nx, func(j, i int) (int, int) { return i, j },
			term1, topo, flow)
		if err != nil {
			return err
		}
	}
	return nil
}

// solveLines solves nLines independent tridiagonal systems of length n
// concurrently. cell maps a line index and a position along the line
// to a grid cell. Coupling to the neighbouring lines is taken from the
// copy of the elevations made before the sweep started, so the lines
// can be solved in any order.
func (h *HillslopeDiffuser) solveLines(nLines, n int, cell func(l, k int) (int, int),
	term1 float64, topo, flow *Raster) error {

	nprocs := runtime.GOMAXPROCS(0)
	errs := make([]error, nprocs)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			ln := newLine(n)
			for l := pp; l < nLines; l += nprocs {
				h.setup(ln, l, nLines, n, cell, term1, flow)
				if err := tridag(ln.a, ln.b, ln.c, ln.r, ln.u, ln.gam); err != nil {
					errs[pp] = fmt.Errorf("thawscape: hillslope diffusion line %d: %v", l, err)
					return
				}
				for k := 0; k < n; k++ {
					i, j := cell(l, k)
					topo.data.Elements[i*topo.SizeY()+j] = ln.u[k]
				}
			}
		}(pp)
	}
	wg.Wait()
	topo.gen++
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// setup fills in the coefficients for line l.
func (h *HillslopeDiffuser) setup(ln *line, l, nLines, n int, cell func(l, k int) (int, int),
	term1 float64, flow *Raster) {

	// Lines on the edge of the grid are their own neighbours.
	lu, ld := l+1, l-1
	if lu == nLines {
		lu = l
	}
	if ld < 0 {
		ld = 0
	}
	for k := 0; k < n; k++ {
		i, j := cell(l, k)
		old := h.old.Get(i, j)
		if k == 0 || k == n-1 || flow.Get(i, j) > h.ThresholdArea {
			ln.a[k], ln.b[k], ln.c[k], ln.r[k] = 0, 1, 0, old
			continue
		}
		// The neighbours across the line are the cells of the adjacent
		// lines at the same position along the line.
		iu, ju := cell(lu, k)
		id, jd := cell(ld, k)
		across := h.old.Get(iu, ju) + h.old.Get(id, jd)
		ln.a[k], ln.c[k] = -term1, -term1
		ln.b[k] = 4*term1 + 1
		ln.r[k] = term1*across + old
	}
}

// tridag solves the tridiagonal system with sub-diagonal a, diagonal b,
// super-diagonal c and right hand side r, storing the result in u.
// gam is scratch space with the same length as the system.
// a[0] and c[len-1] are not used.
func tridag(a, b, c, r, u, gam []float64) error {
	n := len(b)
	if n == 0 {
		return nil
	}
	bet := b[0]
	if bet == 0 {
		return ErrZeroPivot
	}
	u[0] = r[0] / bet
	for j := 1; j < n; j++ {
		gam[j] = c[j-1] / bet
		bet = b[j] - a[j]*gam[j]
		if bet == 0 {
			return ErrZeroPivot
		}
		u[j] = (r[j] - a[j]*u[j-1]) / bet
	}
	for j := n - 2; j >= 0; j-- {
		u[j] -= gam[j+1] * u[j+1]
	}
	return nil
}
