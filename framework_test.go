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
	"bytes"
	"io/ioutil"
	"math"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = ioutil.Discard
	return l
}

// newTestModel sets up a model with the given initial elevation and
// parameters, which may be nil to use the defaults.
func newTestModel(t *testing.T, topo *Raster, p *Params) *Model {
	d := &Model{
		Params:    p,
		Log:       discardLogger(),
		InitFuncs: []DomainManipulator{SetTopography(topo), Setup()},
	}
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	return d
}

// shortRunParams finishes after two four-hour timesteps.
func shortRunParams() *Params {
	p := DefaultParams()
	p.StartYear, p.StartDay, p.StartHour = 2010, 150, 20
	p.EndYear, p.EndDay = 2010, 151
	p.Timestep = 4
	return p
}

func TestSizeMismatch(t *testing.T) {
	p := DefaultParams()
	p.BoundaryInflow = true
	tests := []struct {
		name         string
		flow, inflow *Raster
	}{
		{name: "flow", flow: NewRaster(5, 6, 1), inflow: NewRaster(5, 5, 0)},
		{name: "inflow", inflow: NewRaster(4, 5, 0)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var ran bool
			d := &Model{
				Params: p,
				Log:    discardLogger(),
				Flow:   test.flow,
				InitFuncs: []DomainManipulator{
					SetTopography(NewRaster(5, 5, 1)),
					SetInflow(test.inflow),
					Setup(),
				},
				RunFuncs: []DomainManipulator{func(d *Model) error {
					ran = true
					d.Done = true
					return nil
				}},
			}
			err := d.Init()
			if err == nil || !strings.Contains(err.Error(), ErrSizeMismatch.Error()) {
				t.Fatalf("err = %v; want size mismatch", err)
			}
			if ran {
				t.Error("timestep ran after a failed set up")
			}
		})
	}
}

func TestSetupNoTopography(t *testing.T) {
	d := &Model{Log: discardLogger(), InitFuncs: []DomainManipulator{Setup()}}
	if err := d.Init(); err == nil {
		t.Error("set up without an elevation grid should fail")
	}
}

func TestSetupInvalidParams(t *testing.T) {
	p := DefaultParams()
	p.Timestep = 0
	d := &Model{
		Params:    p,
		Log:       discardLogger(),
		InitFuncs: []DomainManipulator{SetTopography(NewRaster(3, 3, 0)), Setup()},
	}
	if err := d.Init(); err == nil {
		t.Error("a zero timestep should fail")
	}
}

func TestPhases(t *testing.T) {
	d := newTestModel(t, NewRaster(8, 8, 0), DefaultParams())
	if d.Phase() != ReorderForAvalanche {
		t.Errorf("initial phase = %v", d.Phase())
	}
	want := []Phase{ReorderForAvalanche, AvalanchePhase, SyncPrevious, PitFill,
		ReorderForFlow, RouteFlow, Diffuse, UpliftAndGeometry, SolarAndErosion, AdvanceTime}
	funcs := TimestepFuncs()
	if len(funcs) != len(want) {
		t.Fatalf("%d timestep functions; want %d", len(funcs), len(want))
	}
	for i, f := range funcs {
		if err := f(d); err != nil {
			t.Fatal(err)
		}
		if d.Phase() != want[i] {
			t.Errorf("step %d: phase = %v; want %v", i, d.Phase(), want[i])
		}
	}
	if d.Done {
		t.Error("should not be done after one step")
	}
}

func TestRun(t *testing.T) {
	topo := RandomField(10, 8, 2)
	for k := range topo.data.Elements {
		topo.data.Elements[k] += 5
	}
	var logs bytes.Buffer
	log := logrus.New()
	log.Out = &logs
	d := &Model{
		Params:    shortRunParams(),
		Log:       log,
		InitFuncs: []DomainManipulator{SetTopography(topo), Setup(), InitDiffusion()},
		RunFuncs:  append(TimestepFuncs(), Log()),
	}
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	if err := d.Run(); err != nil {
		t.Fatal(err)
	}
	if d.Iteration() != 2 {
		t.Errorf("ran %d timesteps; want 2", d.Iteration())
	}
	if d.Phase() != Finished || !d.Done {
		t.Errorf("phase = %v, done = %v", d.Phase(), d.Done)
	}
	for k, v := range d.Topo.Elements() {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			t.Errorf("cell %d: elevation %g", k, v)
		}
	}
	if d.Flow.Max() <= 1 {
		t.Errorf("flow was not routed: max = %g", d.Flow.Max())
	}
	if n := strings.Count(logs.String(), "timestep complete"); n != 2 {
		t.Errorf("logged %d timesteps; want 2", n)
	}
}

func TestRunAlreadyFinished(t *testing.T) {
	p := shortRunParams()
	p.EndDay = p.StartDay
	d := newTestModel(t, NewRaster(4, 4, 1), p)
	d.RunFuncs = TimestepFuncs()
	if err := d.Run(); err != nil {
		t.Fatal(err)
	}
	if d.Iteration() != 0 || d.Phase() != Finished {
		t.Errorf("iteration = %d, phase = %v", d.Iteration(), d.Phase())
	}
}

func TestInitDiffusion(t *testing.T) {
	p := DefaultParams()
	p.InitDiffusion = true
	d := &Model{
		Params:    p,
		Log:       discardLogger(),
		InitFuncs: []DomainManipulator{SetTopography(NewRaster(6, 6, 0)), Setup(), InitDiffusion()},
	}
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	if d.Topo.Get(0, 0) != 0 {
		t.Errorf("edge raised to %g", d.Topo.Get(0, 0))
	}
	if v := d.Topo.Get(3, 3); v <= 0 || v > 1+1e-9 {
		t.Errorf("interior = %g; want in (0, 1]", v)
	}
	if d.TopoOld.Get(3, 3) != d.Topo.Get(3, 3) {
		t.Error("previous elevation not synchronised")
	}
}

func TestRunPeriodically(t *testing.T) {
	d := &Model{Params: DefaultParams()}
	d.Params.Timestep = 3
	var n int
	f := RunPeriodically(10, func(*Model) error {
		n++
		return nil
	})
	for i := 0; i < 12; i++ {
		if err := f(d); err != nil {
			t.Fatal(err)
		}
	}
	// Runs at 12, 24 and 36 hours.
	if n != 3 {
		t.Errorf("ran %d times; want 3", n)
	}
}

func TestPhaseString(t *testing.T) {
	if s := RouteFlow.String(); s != "route flow" {
		t.Errorf("got %q", s)
	}
	if s := Phase(99).String(); s != "unknown phase" {
		t.Errorf("got %q", s)
	}
}
