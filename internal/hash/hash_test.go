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
along with ThawScape.  If not, see <http://www.gnu.org/licenses/>.*/

package hash

import (
	"math"
	"testing"
)

type config struct {
	A    float64
	B    map[string]int
	Next *config
}

func TestID(t *testing.T) {
	a := &config{A: math.NaN(), B: map[string]int{"x": 1, "y": 2, "z": 3}, Next: &config{A: 1}}
	b := &config{A: math.NaN(), B: map[string]int{"z": 3, "y": 2, "x": 1}, Next: &config{A: 1}}
	c := &config{A: math.NaN(), B: map[string]int{"x": 1, "y": 2, "z": 3}, Next: &config{A: 2}}

	ida, idb, idc := ID(a), ID(b), ID(c)
	if len(ida) != 16 {
		t.Errorf("id %q should have 16 characters", ida)
	}
	if ida != idb {
		t.Errorf("equal configurations have different ids: %s != %s", ida, idb)
	}
	if ida == idc {
		t.Errorf("different configurations have the same id %s", ida)
	}
}
