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

// Package thawscape is a landscape evolution model for thawing terrain.
// It evolves a regular elevation grid through slope failure, multiple
// flow direction routing, hillslope diffusion, uplift and fluvial erosion.
package thawscape

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Version gives the version number.
const Version = "0.3.0"

// ErrSizeMismatch is returned when grids that must share a topology
// have different dimensions.
var ErrSizeMismatch = errors.New("thawscape: grid size mismatch")

// Model holds the current state of the simulation.
type Model struct {
	// InitFuncs are functions to be called in the given order
	// at the beginning of the simulation.
	InitFuncs []DomainManipulator

	// RunFuncs are functions to be called in the given order repeatedly
	// until "Done" is true. Therefore, the simulation will not end until
	// one of the RunFuncs sets "Done" to true.
	RunFuncs []DomainManipulator

	// CleanupFuncs are functions to be called in the given order
	// at the end of the simulation.
	CleanupFuncs []DomainManipulator

	// Params are the simulation parameters. DefaultParams are used if
	// Params is nil when the model is set up.
	Params *Params

	Topo    *Raster // elevation [m]
	TopoOld *Raster // elevation after slope failure in the current timestep [m]
	Flow    *Raster // accumulated unit cells upstream
	Inflow  *Raster // flow entering across the grid edges; may be nil

	Slope  *Raster // [radians]
	Aspect *Raster // [radians]; N = 0, E = -π/2, S = ±π, W = π/2
	Shade  *Raster // 1 where the sun reaches the surface, 0 otherwise
	Solar  *Raster // incoming solar flux [W/m²]

	ExposureAge *Raster
	SedTrack    *Raster // sediment track depth [m]
	Veg         *Raster

	Time ModelTime
	Sun  SolarGeometry

	// Log receives status messages.
	Log logrus.FieldLogger

	nbrs      *Neighbours
	avalanche *Avalanche
	router    *FlowRouter
	diffuser  *HillslopeDiffuser

	phase     Phase
	iteration int

	// Done specifies whether the simulation is finished.
	Done bool
}

// DomainManipulator is a class of functions that operate on the entire model.
type DomainManipulator func(d *Model) error

// CellManipulator is a class of functions that operate on a single grid
// cell (i, j) of the model.
type CellManipulator func(d *Model, i, j int)

// Init initializes the simulation by running d.InitFuncs.
func (d *Model) Init() error {
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	for i, f := range d.InitFuncs {
		if err := f(d); err != nil {
			return fmt.Errorf("thawscape: initialization step %d: %v", i, err)
		}
	}
	return nil
}

// Run carries out the simulation by running d.RunFuncs until d.Done is true.
func (d *Model) Run() error {
	for !d.Done {
		for _, f := range d.RunFuncs {
			if err := f(d); err != nil {
				return fmt.Errorf("thawscape: %s (%s): %v", d.phase, d.Time, err)
			}
		}
		d.iteration++
	}
	return nil
}

// Cleanup finishes the simulation by running d.CleanupFuncs.
func (d *Model) Cleanup() error {
	for _, f := range d.CleanupFuncs {
		if err := f(d); err != nil {
			return err
		}
	}
	return nil
}

// Phase returns the step of the timestep the model is currently in.
func (d *Model) Phase() Phase { return d.phase }

// Iteration returns the number of completed timesteps.
func (d *Model) Iteration() int { return d.iteration }

// Neighbours returns the neighbour indexing of the model grid. It is nil
// before the model has been set up.
func (d *Model) Neighbours() *Neighbours { return d.nbrs }

// rasters returns all of the grids held by the model.
func (d *Model) rasters() []*Raster {
	return []*Raster{d.Topo, d.TopoOld, d.Flow, d.Slope, d.Aspect, d.Shade,
		d.Solar, d.ExposureAge, d.SedTrack, d.Veg}
}

// touch marks all grids as changed after they have been written cell
// by cell.
func (d *Model) touch() {
	for _, r := range d.rasters() {
		if r != nil {
			r.touch()
		}
	}
}

// SetTopography returns a function that sets the initial elevation.
func SetTopography(topo *Raster) DomainManipulator {
	return func(d *Model) error {
		if topo == nil {
			return fmt.Errorf("thawscape: no initial topography")
		}
		d.Topo = topo
		return nil
	}
}

// SetInflow returns a function that sets the boundary inflow. Values are
// in contributing unit cells; only the edge cells are used.
func SetInflow(inflow *Raster) DomainManipulator {
	return func(d *Model) error {
		d.Inflow = inflow
		return nil
	}
}

// Setup returns a function that checks the model configuration and
// allocates the grids and components needed to run it. The elevation
// must have been set, and any flow or inflow grids that have been set
// must be the same size as the elevation grid.
func Setup() DomainManipulator {
	return func(d *Model) error {
		if d.Params == nil {
			d.Params = DefaultParams()
		}
		p := d.Params
		if d.Topo == nil {
			return fmt.Errorf("thawscape: no initial topography")
		}
		if p.Deltax == 0 {
			p.Deltax = d.Topo.CellSize
		}
		if err := p.Validate(); err != nil {
			return err
		}
		if !(p.Deltax > 0) {
			return fmt.Errorf("thawscape: grid spacing must be >0 but is %g", p.Deltax)
		}
		if d.Flow != nil && !d.Topo.SameSize(d.Flow) {
			return fmt.Errorf("thawscape: flow grid is %d×%d but elevation grid is %d×%d: %v",
				d.Flow.SizeX(), d.Flow.SizeY(), d.Topo.SizeX(), d.Topo.SizeY(), ErrSizeMismatch)
		}
		if d.Inflow != nil && !d.Topo.SameSize(d.Inflow) {
			return fmt.Errorf("thawscape: inflow grid is %d×%d but elevation grid is %d×%d: %v",
				d.Inflow.SizeX(), d.Inflow.SizeY(), d.Topo.SizeX(), d.Topo.SizeY(), ErrSizeMismatch)
		}

		var err error
		d.nbrs, err = NewNeighbours(d.Topo.SizeX(), d.Topo.SizeY())
		if err != nil {
			return err
		}
		d.avalanche = NewAvalanche(p.Thresh())
		d.router, err = NewFlowRouter(d.nbrs, d.Inflow, p.BoundaryInflow)
		if err != nil {
			return err
		}
		d.diffuser = &HillslopeDiffuser{
			D:             p.D,
			Dt:            p.AnnualTimestep(),
			Deltax:        p.Deltax,
			ThresholdArea: p.ThresholdArea,
		}

		d.TopoOld = d.Topo.Copy()
		if d.Flow == nil {
			d.Flow = NewRasterLike(d.Topo, 1)
		}
		d.Slope = NewRasterLike(d.Topo, 0)
		d.Aspect = NewRasterLike(d.Topo, 0)
		d.Shade = NewRasterLike(d.Topo, 0)
		d.Solar = NewRasterLike(d.Topo, 0)
		d.ExposureAge = NewRasterLike(d.Topo, p.InitExposureAge)
		d.SedTrack = NewRasterLike(d.Topo, p.InitSedTrack)
		d.Veg = NewRasterLike(d.Topo, p.InitVeg)

		d.Time = p.StartTime()
		d.Done = !d.Time.KeepGoing()
		d.phase = ReorderForAvalanche
		if d.Done {
			d.phase = Finished
		}
		d.Log.WithFields(logrus.Fields{
			"rows":      d.Topo.SizeX(),
			"columns":   d.Topo.SizeY(),
			"deltax":    p.Deltax,
			"thresh":    d.avalanche.Thresh,
			"inflow":    p.BoundaryInflow,
			"startTime": d.Time.String(),
		}).Info("model set up")
		return nil
	}
}

// InitDiffusion returns a function that builds a diffusive landscape to
// start from, by alternately diffusing the elevation and raising the
// interior cells.
func InitDiffusion() DomainManipulator {
	const (
		steps = 10
		raise = 0.1 // m
	)
	return func(d *Model) error {
		if !d.Params.InitDiffusion {
			return nil
		}
		for step := 0; step < steps; step++ {
			if err := d.diffuser.Run(d.Topo, d.Flow); err != nil {
				return err
			}
			nx, ny := d.Topo.SizeX(), d.Topo.SizeY()
			for i := 1; i < nx-1; i++ {
				for j := 1; j < ny-1; j++ {
					d.Topo.Add(raise, i, j)
				}
			}
		}
		return d.TopoOld.CopyFrom(d.Topo)
	}
}
