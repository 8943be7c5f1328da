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

import "fmt"

// The simulated year only covers the thaw season: when the day passes
// LastDay the year rolls over and the day restarts at FirstDay.
const (
	FirstDay = 144 // May 25th
	LastDay  = 282 // Oct 10th, freeze-up
)

// ModelTime keeps track of simulated time.
type ModelTime struct {
	Year, Day, Hour, Minute int

	// The simulation finishes at the start of EndDay in EndYear.
	EndYear, EndDay int
}

// KeepGoing returns whether the end time has not yet been reached.
func (t *ModelTime) KeepGoing() bool {
	if t.Year != t.EndYear {
		return t.Year < t.EndYear
	}
	return t.Day < t.EndDay
}

// Increment advances time by the given number of hours. The hour of day
// may reach 24 before the day changes.
func (t *ModelTime) Increment(hours int) {
	if t.Hour+hours <= 24 {
		t.Hour += hours
		return
	}
	if t.Day+1 > LastDay {
		t.Year++
		t.Day = FirstDay
	} else {
		t.Day++
	}
	t.Hour += hours - 24
}

func (t ModelTime) String() string {
	return fmt.Sprintf("year=%d day=%d hour=%d", t.Year, t.Day, t.Hour)
}
