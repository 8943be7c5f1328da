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


package thawscapeutil

import (
	"context"
	"os"
	"reflect"
	"testing"

	"github.com/chrisdjscott/ThawScape"
	"github.com/kr/pretty"
	"github.com/lnashier/viper"
)

func TestGetStringMapString(t *testing.T) {
	want := map[string]string{"topo": "topo", "slope_deg": "degrees(slope)"}
	for name, val := range map[string]interface{}{
		"map":       map[string]string{"topo": "topo", "slope_deg": "degrees(slope)"},
		"interface": map[string]interface{}{"topo": "topo", "slope_deg": "degrees(slope)"},
		"json":      `{"topo":"topo","slope_deg":"degrees(slope)"}`,
	} {
		t.Run(name, func(t *testing.T) {
			cfg := viper.New()
			cfg.Set("OutputVariables", val)
			got := GetStringMapString("OutputVariables", cfg)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("got %v, want %v", got, want)
			}
		})
	}
}

func TestCheckOutputVars(t *testing.T) {
	os.Setenv("THAWSCAPE_TEST_VAR", "slope")
	defer os.Unsetenv("THAWSCAPE_TEST_VAR")
	got, err := checkOutputVars(map[string]string{"s": "degrees(\n$THAWSCAPE_TEST_VAR)"})
	if err != nil {
		t.Fatal(err)
	}
	if want := map[string]string{"s": "degrees( slope)"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if _, err := checkOutputVars(nil); err == nil {
		t.Error("expected an error for no output variables")
	}
}

func TestCheckLogFile(t *testing.T) {
	for _, test := range []struct{ logFile, outputDir, want string }{
		{"", "output", "output.log"},
		{"", "gs://bucket/run1/", "gs://bucket/run1.log"},
		{"my.log", "output", "my.log"},
	} {
		if got := checkLogFile(test.logFile, test.outputDir); got != test.want {
			t.Errorf("checkLogFile(%q, %q) = %q, want %q", test.logFile, test.outputDir, got, test.want)
		}
	}
}

func TestCheckOutputDir(t *testing.T) {
	ctx := context.Background()
	if _, err := checkOutputDir(ctx, ""); err == nil {
		t.Error("expected an error for an empty output directory")
	}
	got, err := checkOutputDir(ctx, "out/run1/")
	if err != nil {
		t.Fatal(err)
	}
	if got != "out/run1" {
		t.Errorf("got %s", got)
	}
	if _, err := checkOutputDir(ctx, "file://no_such_bucket/run1"); err == nil {
		t.Error("expected an error for a missing bucket")
	}
}

func TestCheckOutputFile(t *testing.T) {
	ctx := context.Background()
	if _, err := checkOutputFile(ctx, ""); err == nil {
		t.Error("expected an error for an empty output file")
	}
	if _, err := checkOutputFile(ctx, "no/such/dir/topo.asc"); err == nil {
		t.Error("expected an error for a missing directory")
	}
	if _, err := checkOutputFile(ctx, "testdata/new.asc"); err != nil {
		t.Error(err)
	}
}

func TestParamsFromConfig(t *testing.T) {
	want := thawscape.DefaultParams()
	want.Latitude = 68.5
	want.BoundaryInflow = true
	want.EndDay = 100

	cfg := viper.New()
	v := reflect.ValueOf(want).Elem()
	for i := 0; i < v.NumField(); i++ {
		cfg.Set(v.Type().Field(i).Name, v.Field(i).Interface())
	}
	got, err := ParamsFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("params differ: %v", pretty.Diff(got, want))
	}

	cfg.Set("Timestep", 25)
	if _, err := ParamsFromConfig(cfg); err == nil {
		t.Error("expected an error for an invalid timestep")
	}
}
