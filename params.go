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
	"io"
	"math"

	"github.com/BurntSushi/toml"
)

const hoursPerYear = 8760.

// Params holds the physical and run-control parameters of a simulation.
type Params struct {
	U    float64 `toml:"U" desc:"Uplift rate" units:"m/yr"`
	K    float64 `toml:"K" desc:"Stream power erosion coefficient"`
	D    float64 `toml:"D" desc:"Hillslope diffusivity" units:"m²/yr"`
	Melt float64 `toml:"Melt" desc:"Reciprocal melt rate for a given radiation input"`

	// Deltax is the grid spacing. If it is zero it is taken from the
	// cell size of the elevation raster.
	Deltax float64 `toml:"Deltax" units:"m"`

	Timestep      int `toml:"Timestep" units:"hours"`
	PrintInterval int `toml:"PrintInterval" units:"hours"`

	// CriticalSlope is the tangent of the slope failure angle.
	CriticalSlope float64 `toml:"CriticalSlope"`

	// ThresholdArea is the flow above which a cell is treated as a
	// channel and excluded from hillslope diffusion.
	ThresholdArea float64 `toml:"ThresholdArea"`

	// BoundaryInflow specifies whether flow enters the domain across
	// its edges.
	BoundaryInflow bool `toml:"BoundaryInflow"`

	Latitude    float64 `toml:"Latitude" units:"degrees"`
	Longitude   float64 `toml:"Longitude" units:"degrees"`
	StdMeridian float64 `toml:"StdMeridian" desc:"Standard meridian of the time zone" units:"degrees"`

	StartYear, StartDay, StartHour int
	EndYear, EndDay                int

	InitExposureAge float64 `toml:"InitExposureAge"`
	InitSedTrack    float64 `toml:"InitSedTrack" units:"m"`
	InitVeg         float64 `toml:"InitVeg"`

	// InitDiffusion specifies whether to build a diffusive landscape
	// before the simulation starts.
	InitDiffusion bool `toml:"InitDiffusion"`
}

// DefaultParams returns the parameters used when none are specified.
func DefaultParams() *Params {
	return &Params{
		U:               0.010,
		K:               0.050,
		D:               1.5,
		Melt:            250,
		Timestep:        1,
		PrintInterval:   96,
		CriticalSlope:   0.577,
		ThresholdArea:   0.1,
		StartYear:       2010,
		StartDay:        78,
		StartHour:       12,
		EndYear:         2015,
		InitExposureAge: 0,
		InitSedTrack:    2,
		InitVeg:         8,
	}
}

// Validate checks that the parameters are usable.
func (p *Params) Validate() error {
	if p.Timestep < 1 || p.Timestep > 24 {
		return fmt.Errorf("thawscape: Timestep must be between 1 and 24 hours but is %d", p.Timestep)
	}
	if p.PrintInterval < 1 {
		return fmt.Errorf("thawscape: PrintInterval must be >0 but is %d", p.PrintInterval)
	}
	if p.Deltax < 0 || math.IsNaN(p.Deltax) {
		return fmt.Errorf("thawscape: Deltax must be >0 but is %g", p.Deltax)
	}
	vars := []float64{p.U, p.K, p.D, p.CriticalSlope, p.ThresholdArea}
	names := []string{"U", "K", "D", "CriticalSlope", "ThresholdArea"}
	for i, v := range vars {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("thawscape: %s must be ≥0 but is %g", names[i], v)
		}
	}
	return nil
}

// AnnualTimestep returns the timestep as a fraction of a year, for use
// with rates given per year.
func (p *Params) AnnualTimestep() float64 {
	return float64(p.Timestep) / hoursPerYear
}

// Thresh returns the critical height difference between orthogonal
// neighbours.
func (p *Params) Thresh() float64 { return p.CriticalSlope * p.Deltax }

// StartTime returns the simulated time at the start of the run.
func (p *Params) StartTime() ModelTime {
	return ModelTime{
		Year: p.StartYear, Day: p.StartDay, Hour: p.StartHour,
		EndYear: p.EndYear, EndDay: p.EndDay,
	}
}

// WriteTOML writes the parameters to w in TOML format.
func (p *Params) WriteTOML(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(p); err != nil {
		return fmt.Errorf("thawscape: writing parameters: %v", err)
	}
	return nil
}

// ReadParams reads parameters in TOML format from r. Parameters
// missing from r keep their default values.
func ReadParams(r io.Reader) (*Params, error) {
	p := DefaultParams()
	if _, err := toml.DecodeReader(r, p); err != nil {
		return nil, fmt.Errorf("thawscape: reading parameters: %v", err)
	}
	return p, nil
}
