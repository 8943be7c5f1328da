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
	"encoding/gob"
	"fmt"
	"io"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// checkpoint holds the model state needed to restart a simulation.
type checkpoint struct {
	Params    *Params
	Time      ModelTime
	Iteration int

	Topo, TopoOld, Flow, Inflow *Raster
	ExposureAge, SedTrack, Veg  *Raster
}

// rasterGob is the serialized form of a Raster.
type rasterGob struct {
	SizeX, SizeY                           int
	XLLCorner, YLLCorner, CellSize, NoData float64
	Elements                               []float64
}

// GobEncode implements the gob.GobEncoder interface.
func (r *Raster) GobEncode() ([]byte, error) {
	var b bytes.Buffer
	err := gob.NewEncoder(&b).Encode(rasterGob{
		SizeX: r.SizeX(), SizeY: r.SizeY(),
		XLLCorner: r.XLLCorner, YLLCorner: r.YLLCorner,
		CellSize: r.CellSize, NoData: r.NoData,
		Elements: r.data.Elements,
	})
	return b.Bytes(), err
}

// GobDecode implements the gob.GobDecoder interface.
func (r *Raster) GobDecode(b []byte) error {
	var g rasterGob
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&g); err != nil {
		return err
	}
	if g.SizeX < 1 || g.SizeY < 1 || len(g.Elements) != g.SizeX*g.SizeY {
		return fmt.Errorf("thawscape: raster is %d×%d but has %d values", g.SizeX, g.SizeY, len(g.Elements))
	}
	*r = Raster{
		data:      sparse.ZerosDense(g.SizeX, g.SizeY),
		XLLCorner: g.XLLCorner,
		YLLCorner: g.YLLCorner,
		CellSize:  g.CellSize,
		NoData:    g.NoData,
	}
	copy(r.data.Elements, g.Elements)
	return nil
}

// Save returns a function that writes the current state of the model to
// w so that the simulation can later be restarted with Load.
func Save(w io.Writer) DomainManipulator {
	return func(d *Model) error {
		c := checkpoint{
			Params:      d.Params,
			Time:        d.Time,
			Iteration:   d.iteration,
			Topo:        d.Topo,
			TopoOld:     d.TopoOld,
			Flow:        d.Flow,
			Inflow:      d.Inflow,
			ExposureAge: d.ExposureAge,
			SedTrack:    d.SedTrack,
			Veg:         d.Veg,
		}
		if err := gob.NewEncoder(w).Encode(c); err != nil {
			return fmt.Errorf("thawscape: saving checkpoint: %v", err)
		}
		return nil
	}
}

// Load returns a function that restores a model from a checkpoint written
// by Save and sets it up to continue the simulation. It takes the place
// of SetTopography, SetInflow and Setup. If d.Params is nil the saved
// parameters are used; otherwise only the saved state is restored and
// the simulation runs until the end time in d.Params.
func Load(r io.Reader) DomainManipulator {
	return func(d *Model) error {
		var c checkpoint
		if err := gob.NewDecoder(r).Decode(&c); err != nil {
			return fmt.Errorf("thawscape: loading checkpoint: %v", err)
		}
		if c.Topo == nil {
			return fmt.Errorf("thawscape: loading checkpoint: no topography")
		}
		if d.Params == nil {
			d.Params = c.Params
		}
		d.Topo, d.Flow, d.Inflow = c.Topo, c.Flow, c.Inflow
		if err := Setup()(d); err != nil {
			return err
		}
		restore := []struct {
			name     string
			dst, src *Raster
		}{
			{"topoold", d.TopoOld, c.TopoOld},
			{"exposureage", d.ExposureAge, c.ExposureAge},
			{"sedtrack", d.SedTrack, c.SedTrack},
			{"veg", d.Veg, c.Veg},
		}
		for _, l := range restore {
			if l.src == nil {
				continue
			}
			if err := l.dst.CopyFrom(l.src); err != nil {
				return fmt.Errorf("thawscape: loading checkpoint: %s: %v", l.name, err)
			}
		}

		d.Time = c.Time
		d.Time.EndYear, d.Time.EndDay = d.Params.EndYear, d.Params.EndDay
		d.iteration = c.Iteration
		d.Done = !d.Time.KeepGoing()
		if d.Done {
			d.phase = Finished
		}
		d.Log.WithFields(logrus.Fields{
			"time":      d.Time.String(),
			"iteration": d.iteration,
		}).Info("restarted from checkpoint")
		return nil
	}
}
