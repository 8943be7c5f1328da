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
	"math"
	"testing"
)

func TestSunPosition(t *testing.T) {
	noon := SunPosition(ModelTime{Day: 81, Hour: 12}, 0, 0, 0)
	if noon.Altitude < 85 {
		t.Errorf("equinox noon altitude at the equator = %g; want > 85", noon.Altitude)
	}
	midnight := SunPosition(ModelTime{Day: 81, Hour: 0}, 0, 0, 0)
	if midnight.Altitude > 0 {
		t.Errorf("midnight altitude = %g; want < 0", midnight.Altitude)
	}
	solstice := SunPosition(ModelTime{Day: 172, Hour: 12}, 67.3, 134.9, 135)
	if math.Abs(solstice.Declination-23.45) > 0.01 {
		t.Errorf("solstice declination = %g", solstice.Declination)
	}
	if want := 90 - 67.3 + 23.45; math.Abs(solstice.Altitude-want) > 1 {
		t.Errorf("solstice noon altitude = %g; want about %g", solstice.Altitude, want)
	}
	for _, hour := range []int{0, 6, 9, 12, 15, 18} {
		s := SunPosition(ModelTime{Day: 200, Hour: hour}, 60, 0, 0)
		if math.IsNaN(s.Azimuth) || s.Azimuth < -180 || s.Azimuth > 180 {
			t.Errorf("hour %d: azimuth = %g", hour, s.Azimuth)
		}
	}
}

func TestSunPositionMinutes(t *testing.T) {
	a := SunPosition(ModelTime{Day: 150, Hour: 10, Minute: 30}, 45, 0, 0)
	b := SunPosition(ModelTime{Day: 150, Hour: 10}, 45, 0, 0)
	if math.Abs(a.LST-b.LST-0.5) > 1e-12 {
		t.Errorf("30 minutes moved local solar time by %g hours", a.LST-b.LST)
	}
}
