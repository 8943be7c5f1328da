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
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// RandomFieldSigma is the standard deviation of the noise in a random
// field [m].
const RandomFieldSigma = 0.5

// RandomField returns a sizeX×sizeY raster of normally distributed noise
// with mean zero and standard deviation RandomFieldSigma, for use as a
// synthetic starting topography. The same seed always gives the same
// field.
func RandomField(sizeX, sizeY int, seed int64) *Raster {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: RandomFieldSigma,
		Src:   rand.NewSource(uint64(seed)),
	}
	r := NewRaster(sizeX, sizeY, 0)
	for k := range r.data.Elements {
		r.data.Elements[k] = dist.Rand()
	}
	return r
}
