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
	"testing"
)

func TestSaveLoad(t *testing.T) {
	stop := func(d *Model) error {
		d.Done = true
		return nil
	}

	// Reference run without interruption.
	ref := newTestModel(t, RandomField(8, 9, 2), shortRunParams())
	ref.RunFuncs = TimestepFuncs()
	if err := ref.Run(); err != nil {
		t.Fatal(err)
	}

	d := newTestModel(t, RandomField(8, 9, 2), shortRunParams())
	d.RunFuncs = append(TimestepFuncs(), stop)
	if err := d.Run(); err != nil {
		t.Fatal(err)
	}
	buf := new(bytes.Buffer)
	if err := Save(buf)(d); err != nil {
		t.Fatal(err)
	}

	d2 := &Model{
		Log:       discardLogger(),
		InitFuncs: []DomainManipulator{Load(buf)},
		RunFuncs:  TimestepFuncs(),
	}
	if err := d2.Init(); err != nil {
		t.Fatal(err)
	}
	if d2.Time != d.Time || d2.Iteration() != 1 || d2.Done {
		t.Fatalf("restored time %v, iteration %d, done %v", d2.Time, d2.Iteration(), d2.Done)
	}
	if err := d2.Run(); err != nil {
		t.Fatal(err)
	}
	if d2.Iteration() != ref.Iteration() || d2.Time != ref.Time {
		t.Errorf("restarted run ended at iteration %d, %v; want %d, %v",
			d2.Iteration(), d2.Time, ref.Iteration(), ref.Time)
	}
	for k, v := range ref.Topo.Elements() {
		if d2.Topo.Elements()[k] != v {
			t.Fatalf("topography element %d: %g != %g", k, d2.Topo.Elements()[k], v)
		}
	}
}

func TestLoadInvalid(t *testing.T) {
	d := &Model{
		Log:       discardLogger(),
		InitFuncs: []DomainManipulator{Load(bytes.NewBufferString("not a checkpoint"))},
	}
	if err := d.Init(); err == nil {
		t.Error("expected an error for an invalid checkpoint")
	}
}

func TestRasterGob(t *testing.T) {
	r := RandomField(3, 4, 1)
	r.XLLCorner, r.CellSize = 100, 2
	b, err := r.GobEncode()
	if err != nil {
		t.Fatal(err)
	}
	var r2 Raster
	if err := r2.GobDecode(b); err != nil {
		t.Fatal(err)
	}
	if !r.SameSize(&r2) || r2.XLLCorner != 100 || r2.CellSize != 2 {
		t.Errorf("decoded raster %d×%d at %g with cell size %g", r2.SizeX(), r2.SizeY(), r2.XLLCorner, r2.CellSize)
	}
	for k, v := range r.Elements() {
		if r2.Elements()[k] != v {
			t.Errorf("element %d: %g != %g", k, r2.Elements()[k], v)
		}
	}
}
