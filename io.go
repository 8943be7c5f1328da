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
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/Knetic/govaluate"
	"github.com/chrisdjscott/ThawScape/internal/hash"
)

// modelVariable is a grid held by the model that can be written out.
type modelVariable struct {
	name, desc, units string
	get               func(d *Model) *Raster
}

var modelVariables = []modelVariable{
	{"topo", "Elevation", "m", func(d *Model) *Raster { return d.Topo }},
	{"topoold", "Elevation after slope failure", "m", func(d *Model) *Raster { return d.TopoOld }},
	{"flow", "Accumulated flow", "cells", func(d *Model) *Raster { return d.Flow }},
	{"slope", "Slope", "radians", func(d *Model) *Raster { return d.Slope }},
	{"aspect", "Aspect", "radians", func(d *Model) *Raster { return d.Aspect }},
	{"shade", "Whether the surface faces the sun", "", func(d *Model) *Raster { return d.Shade }},
	{"solar", "Incoming solar flux", "W/m²", func(d *Model) *Raster { return d.Solar }},
	{"exposureage", "Exposure age", "", func(d *Model) *Raster { return d.ExposureAge }},
	{"sedtrack", "Sediment track depth", "m", func(d *Model) *Raster { return d.SedTrack }},
	{"veg", "Vegetation", "", func(d *Model) *Raster { return d.Veg }},
}

// OutputOptions returns the names of the model variables that can be
// used in output expressions, along with their descriptions and units.
func OutputOptions() (names, descriptions, units []string) {
	for _, v := range modelVariables {
		names = append(names, v.name)
		descriptions = append(descriptions, v.desc)
		units = append(units, v.units)
	}
	return
}

func lookupVariable(name string) (modelVariable, bool) {
	for _, v := range modelVariables {
		if v.name == name {
			return v, true
		}
	}
	return modelVariable{}, false
}

// Output file formats.
const (
	FormatASCII  = "asc"
	FormatNetCDF = "nc"
	FormatPNG    = "png"
)

// Outputter writes snapshots of the model state. It holds the
// expressions that define each output variable in terms of the model
// variables and the functions available to those expressions.
type Outputter struct {
	dir             string
	formats         []string
	outputVariables map[string]string
	expressions     map[string]*govaluate.EvaluableExpression
	modelVariables  []string
	outputFunctions map[string]govaluate.ExpressionFunction

	files []string
}

// NewOutputter initializes a new Outputter that writes files to dir in
// each of the given formats. If outputVariables is empty, only the
// elevation is written. Default functions available to expressions
// include:
//
// 'exp(x)' which applies the exponential function e^x.
//
// 'sqrt(x)' which takes the square root of x.
//
// 'abs(x)' which returns the absolute value of x.
//
// 'degrees(x)' which converts x from radians to degrees.
func NewOutputter(dir string, formats []string, outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	oneArg := func(name string, f func(float64) float64) govaluate.ExpressionFunction {
		return func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("thawscape: got %d arguments for function '%s', but needs 1", len(arg), name)
			}
			x, ok := arg[0].(float64)
			if !ok {
				return nil, fmt.Errorf("thawscape: argument to function '%s' is %T but should be a number", name, arg[0])
			}
			return f(x), nil
		}
	}
	funcs := map[string]govaluate.ExpressionFunction{
		"exp":     oneArg("exp", math.Exp),
		"sqrt":    oneArg("sqrt", math.Sqrt),
		"abs":     oneArg("abs", math.Abs),
		"degrees": oneArg("degrees", func(x float64) float64 { return x / degToRad }),
	}
	for key, val := range outputFunctions {
		funcs[key] = val
	}

	if len(formats) == 0 {
		formats = []string{FormatASCII}
	}
	for _, f := range formats {
		switch f {
		case FormatASCII, FormatNetCDF, FormatPNG:
		default:
			return nil, fmt.Errorf("thawscape: invalid output format '%s'", f)
		}
	}
	if len(outputVariables) == 0 {
		outputVariables = map[string]string{"topo": "topo"}
	}

	o := &Outputter{
		dir:             dir,
		formats:         formats,
		outputVariables: outputVariables,
		expressions:     make(map[string]*govaluate.EvaluableExpression, len(outputVariables)),
		outputFunctions: funcs,
	}
	if err := checkOutputNames(outputVariables); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for name, expr := range outputVariables {
		e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, funcs)
		if err != nil {
			return nil, fmt.Errorf("thawscape: output variable '%s': %v", name, err)
		}
		for _, v := range e.Vars() {
			if _, ok := lookupVariable(v); !ok {
				return nil, fmt.Errorf("thawscape: output variable '%s': undefined variable name '%s'", name, v)
			}
			if !seen[v] {
				o.modelVariables = append(o.modelVariables, v)
				seen[v] = true
			}
		}
		o.expressions[name] = e
	}
	sort.Strings(o.modelVariables)
	return o, nil
}

// checkOutputNames checks that output variable names can be used as
// file name suffixes and netCDF variable names.
func checkOutputNames(o map[string]string) error {
	valid := regexp.MustCompile(`^[A-Za-z]\w*$`)
	for key := range o {
		if !valid.MatchString(key) {
			return fmt.Errorf("thawscape: output variable name '%s' includes unsupported characters", key)
		}
	}
	return nil
}

// Files returns the paths of all files written so far.
func (o *Outputter) Files() []string { return o.files }

// Dir returns the directory files are written to.
func (o *Outputter) Dir() string { return o.dir }

// Results evaluates each output variable in every grid cell.
func (o *Outputter) Results(d *Model) (map[string]*Raster, error) {
	results := make(map[string]*Raster, len(o.expressions))
	inputs := make(map[string]*Raster, len(o.modelVariables))
	for _, name := range o.modelVariables {
		v, _ := lookupVariable(name)
		r := v.get(d)
		if r == nil {
			return nil, fmt.Errorf("thawscape: model variable '%s' has not been set up", name)
		}
		inputs[name] = r
	}
	params := make(map[string]interface{}, len(inputs))
	for name, e := range o.expressions {
		if r, ok := inputs[o.outputVariables[name]]; ok {
			results[name] = r.Copy()
			continue
		}
		out := NewRasterLike(d.Topo, 0)
		for k := range out.data.Elements {
			for v, r := range inputs {
				params[v] = r.data.Elements[k]
			}
			val, err := e.Evaluate(params)
			if err != nil {
				return nil, fmt.Errorf("thawscape: evaluating output variable '%s': %v", name, err)
			}
			f, ok := val.(float64)
			if !ok {
				return nil, fmt.Errorf("thawscape: output variable '%s' evaluates to %T but should be a number", name, val)
			}
			out.data.Elements[k] = f
		}
		results[name] = out
	}
	return results, nil
}

// InitialSnapshot names the snapshot written before the simulation starts.
func InitialSnapshot(d *Model) string { return "erosion_0" }

// TimeSnapshot names a snapshot after the current simulated time.
func TimeSnapshot(d *Model) string {
	return fmt.Sprintf("erosion_%d_%d_%d", d.Time.Year, d.Time.Day, d.Time.Hour)
}

// Output returns a function that writes the output variables to files
// whose names start with name(d). ASCII grid and PNG files hold one
// variable each; if there is more than one output variable, the
// variable name is appended to the file name. NetCDF files hold all of
// the variables.
func (o *Outputter) Output(name func(d *Model) string) DomainManipulator {
	return func(d *Model) error {
		results, err := o.Results(d)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(o.dir, os.ModePerm); err != nil {
			return fmt.Errorf("thawscape: creating output directory: %v", err)
		}
		base := filepath.Join(o.dir, name(d))
		vars := make([]string, 0, len(results))
		for v := range results {
			vars = append(vars, v)
		}
		sort.Strings(vars)

		for _, format := range o.formats {
			switch format {
			case FormatNetCDF:
				attrs := map[string]string{
					"run_id": hash.ID(d.Params),
					"year":   strconv.Itoa(d.Time.Year),
					"day":    strconv.Itoa(d.Time.Day),
					"hour":   strconv.Itoa(d.Time.Hour),
				}
				err = o.create(base+".nc", func(f *os.File) error {
					return WriteNetCDF(f, results, attrs)
				})
			default:
				for _, v := range vars {
					path := base
					if len(vars) > 1 {
						path += "_" + v
					}
					r := results[v]
					title := v + " " + d.Time.String()
					err = o.create(path+"."+format, func(f *os.File) error {
						if format == FormatPNG {
							return WritePNG(f, r, title)
						}
						return WriteASCIIGrid(f, r)
					})
					if err != nil {
						break
					}
				}
			}
			if err != nil {
				return err
			}
		}
		d.Log.WithField("file", base).Info("wrote output")
		return nil
	}
}

// WriteParams returns a function that writes the model parameters to
// params.toml in the output directory.
func (o *Outputter) WriteParams() DomainManipulator {
	return func(d *Model) error {
		if err := os.MkdirAll(o.dir, os.ModePerm); err != nil {
			return fmt.Errorf("thawscape: creating output directory: %v", err)
		}
		return o.create(filepath.Join(o.dir, "params.toml"), func(f *os.File) error {
			return d.Params.WriteTOML(f)
		})
	}
}

// create creates the file at path, passes it to write and records it.
func (o *Outputter) create(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("thawscape: creating output file: %v", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("thawscape: closing output file: %v", err)
	}
	o.files = append(o.files, path)
	return nil
}
