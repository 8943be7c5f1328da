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

// Uplift returns a function that raises a cell at the uplift rate U
// over one timestep. The elevation after slope failure is raised by the
// same amount.
func Uplift() CellManipulator {
	return func(d *Model, i, j int) {
		dz := d.Params.U * d.Params.AnnualTimestep()
		*d.Topo.ptr(i, j) += dz
		*d.TopoOld.ptr(i, j) += dz
	}
}

// SlopeAspect returns a function that calculates the slope and aspect
// of a cell from a 3×3 Sobel gradient of the elevation. Both are in
// radians; aspect is 0 to the north, -π/2 to the east, ±π to the south
// and π/2 to the west.
func SlopeAspect() CellManipulator {
	return func(d *Model, i, j int) {
		n := d.nbrs
		iu, id, ju, jd := n.iup[i], n.idown[i], n.jup[j], n.jdown[j]
		z := d.Topo.Get
		dx := 8 * d.Params.Deltax
		dzdx := ((z(iu, jd) + 2*z(iu, j) + z(iu, ju)) -
			(z(id, jd) + 2*z(id, j) + z(id, ju))) / dx
		dzdy := ((z(id, ju) + 2*z(i, ju) + z(iu, ju)) -
			(z(id, jd) + 2*z(i, jd) + z(iu, jd))) / dx
		*d.Aspect.ptr(i, j) = math.Atan2(dzdy, dzdx)
		*d.Slope.ptr(i, j) = math.Hypot(dzdx, dzdy)
	}
}

// Clear-day solar flux constants (ASHRAE).
const (
	apparentSolarFlux  = 1085.  // W/m²
	opticalDepth       = 0.207  // atmospheric extinction coefficient
	diffuseSkyFraction = 0.134  // diffuse to direct normal flux ratio
)

// SolarInflux returns a function that calculates whether a cell faces
// the sun and the solar flux reaching it. The sun position must have
// been calculated for the current time.
func SolarInflux() CellManipulator {
	return func(d *Model, i, j int) {
		alt := d.Sun.Altitude * degToRad
		azm := d.Sun.Azimuth * degToRad
		slope := d.Slope.Get(i, j)
		cosTheta := math.Cos(alt)*math.Cos(azm-d.Aspect.Get(i, j))*math.Sin(slope) +
			math.Sin(alt)*math.Cos(slope)

		var shade float64
		if cosTheta >= 0 {
			shade = 1
		}
		*d.Shade.ptr(i, j) = shade

		var direct float64
		if alt > 0 {
			direct = apparentSolarFlux * math.Exp(-opticalDepth/math.Sin(alt))
		}
		*d.Solar.ptr(i, j) = direct*cosTheta*shade + diffuseSkyFraction*direct
	}
}

// FluvialErosion returns a function that lowers a cell by stream power
// erosion, K·√flow·Δx·slope per year. Elevations are not lowered below
// zero.
func FluvialErosion() CellManipulator {
	return func(d *Model, i, j int) {
		p := d.Params
		dz := p.AnnualTimestep() * p.K * math.Sqrt(d.Flow.Get(i, j)) * p.Deltax * d.Slope.Get(i, j)
		z := d.Topo.ptr(i, j)
		*z -= dz
		if *z < 0 {
			*z = 0
		}
	}
}
