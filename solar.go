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

const degToRad = math.Pi / 180

// SolarGeometry is the position of the sun at a given place and time.
// All angles are in degrees.
type SolarGeometry struct {
	Declination float64

	// Altitude is the angle of the sun above the horizon.
	Altitude float64

	// Azimuth is the compass direction of the sun: N = 0, E = -90,
	// S = ±180, W = 90.
	Azimuth float64

	// SHA is the solar hour angle.
	SHA float64

	// LST is the local solar time [hours].
	LST float64
}

// SunPosition calculates the position of the sun at time t for an
// observer at the given latitude and longitude, where stdMeridian is the
// standard meridian of the local time zone. Longitudes are degrees west.
func SunPosition(t ModelTime, latitude, longitude, stdMeridian float64) SolarGeometry {
	var s SolarGeometry
	day := float64(t.Day)
	s.Declination = 23.45 * math.Sin(360./365.*(284.+day)*degToRad)

	// Equation of time [hours].
	b := 360. / 364. * (day - 81.) * degToRad
	eot := 0.165*math.Sin(2*b) - 0.126*math.Cos(b) - 0.025*math.Sin(b)

	s.LST = float64(t.Hour) + float64(t.Minute)/60 + (stdMeridian-longitude)/15 + eot
	s.SHA = 15 * (s.LST - 12)

	lat := latitude * degToRad
	dec := s.Declination * degToRad
	sha := s.SHA * degToRad
	s.Altitude = math.Asin(math.Sin(lat)*math.Sin(dec)+math.Cos(lat)*math.Cos(dec)*math.Cos(sha)) / degToRad

	cosAz := (math.Sin(lat)*math.Cos(dec)*math.Cos(sha) - math.Cos(lat)*math.Sin(dec)) /
		math.Cos(s.Altitude*degToRad)
	// Rounding can push the ratio just past ±1, and it is undefined
	// with the sun directly overhead.
	if math.IsNaN(cosAz) {
		cosAz = 1
	}
	cosAz = math.Max(-1, math.Min(1, cosAz))
	s.Azimuth = math.Acos(cosAz)/degToRad - 180
	if s.LST > 12 {
		s.Azimuth = -s.Azimuth
	}
	return s
}
