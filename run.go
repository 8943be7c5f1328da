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
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// Phase is a step within a simulation timestep.
type Phase int

// The phases of a timestep, in the order they are carried out.
const (
	ReorderForAvalanche Phase = iota
	AvalanchePhase
	SyncPrevious
	PitFill
	ReorderForFlow
	RouteFlow
	Diffuse
	UpliftAndGeometry
	SolarAndErosion
	AdvanceTime
	Finished
)

var phaseNames = [...]string{
	"reorder for avalanche", "avalanche", "sync previous", "pit fill",
	"reorder for flow", "route flow", "diffuse", "uplift and geometry",
	"solar and erosion", "advance time", "finished",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown phase"
	}
	return phaseNames[p]
}

// inPhase wraps f so that the model records which phase it is in
// while f runs.
func inPhase(p Phase, f DomainManipulator) DomainManipulator {
	return func(d *Model) error {
		d.phase = p
		return f(d)
	}
}

// TimestepFuncs returns the functions that make up one simulation
// timestep, in the order they must be run. The last of them sets
// d.Done once the end time has been reached.
func TimestepFuncs() []DomainManipulator {
	return []DomainManipulator{
		inPhase(ReorderForAvalanche, func(d *Model) error {
			d.Topo.Sort()
			return nil
		}),
		inPhase(AvalanchePhase, func(d *Model) error {
			return d.avalanche.Run(d.Topo, d.nbrs)
		}),
		inPhase(SyncPrevious, func(d *Model) error {
			return d.TopoOld.CopyFrom(d.Topo)
		}),
		inPhase(PitFill, func(d *Model) error {
			Fill(d.Topo)
			return nil
		}),
		inPhase(ReorderForFlow, func(d *Model) error {
			d.Topo.Sort()
			return nil
		}),
		inPhase(RouteFlow, func(d *Model) error {
			d.router.Reset(d.Flow, 1)
			return d.router.Run(d.Topo, d.Flow)
		}),
		inPhase(Diffuse, func(d *Model) error {
			return d.diffuser.Run(d.Topo, d.Flow)
		}),
		inPhase(UpliftAndGeometry, func(d *Model) error {
			if err := Calculations(Uplift())(d); err != nil {
				return err
			}
			return Calculations(SlopeAspect())(d)
		}),
		inPhase(SolarAndErosion, func(d *Model) error {
			d.Sun = SunPosition(d.Time, d.Params.Latitude, d.Params.Longitude, d.Params.StdMeridian)
			return Calculations(SolarInflux(), FluvialErosion())(d)
		}),
		inPhase(AdvanceTime, func(d *Model) error {
			d.Time.Increment(d.Params.Timestep)
			if !d.Time.KeepGoing() {
				d.Done = true
				d.phase = Finished
			}
			return nil
		}),
	}
}

// Calculations returns a function that concurrently runs a series of
// calculations on all of the interior cells of the grid. Each calculator
// may only write to the cell it is given.
func Calculations(calculators ...CellManipulator) DomainManipulator {
	nprocs := runtime.GOMAXPROCS(0)
	return func(d *Model) error {
		nx, ny := d.Topo.SizeX(), d.Topo.SizeY()
		if nx < 3 || ny < 3 {
			return nil
		}
		ni, nj := nx-2, ny-2
		n := ni * nj
		var wg sync.WaitGroup
		wg.Add(nprocs)
		for pp := 0; pp < nprocs; pp++ {
			go func(pp int) {
				for ii := pp; ii < n; ii += nprocs {
					i, j := ii/nj+1, ii%nj+1
					for _, f := range calculators {
						f(d, i, j)
					}
				}
				wg.Done()
			}(pp)
		}
		wg.Wait()
		d.touch()
		return nil
	}
}

// RunPeriodically runs f when the simulated time since it last ran
// reaches interval hours.
func RunPeriodically(interval int, f DomainManipulator) DomainManipulator {
	var hours int
	return func(d *Model) error {
		hours += d.Params.Timestep
		if hours < interval {
			return nil
		}
		hours = 0
		return f(d)
	}
}

// Log returns a function that writes simulation status messages to d.Log.
func Log() DomainManipulator {
	startTime := time.Now()
	timeStepTime := time.Now()
	return func(d *Model) error {
		d.Log.WithFields(logrus.Fields{
			"iteration":   d.iteration + 1,
			"time":        d.Time.String(),
			"walltime":    time.Since(startTime).Round(time.Millisecond).String(),
			"Δwalltime":   time.Since(timeStepTime).Round(time.Millisecond).String(),
			"meanElev":    stat.Mean(d.Topo.Elements(), nil),
			"minElev":     d.Topo.Min(),
			"maxElev":     d.Topo.Max(),
			"maxFlow":     d.Flow.Max(),
			"sunAltitude": d.Sun.Altitude,
		}).Info("timestep complete")
		timeStepTime = time.Now()
		return nil
	}
}
