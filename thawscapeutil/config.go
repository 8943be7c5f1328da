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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/chrisdjscott/ThawScape"
	"github.com/chrisdjscott/ThawScape/cloud"
	"github.com/lnashier/viper"
	"github.com/spf13/cast"
)

// checkOutputVars removes end lines and expands environment
// variables in the output variables.
func checkOutputVars(vars map[string]string) (map[string]string, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("there are no variables specified for output. Please fill in " +
			"the OutputVariables configuration and try again.")
	}
	o := make(map[string]string, len(vars))
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		o[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return o, nil
}

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}

// checkBlob makes sure that the bucket of a blob storage location
// can be opened.
func checkBlob(ctx context.Context, varName, path string) error {
	url, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("thawscape: parsing %s location: %v", varName, err)
	}
	if _, err = cloud.OpenBucket(ctx, url.Scheme+"://"+url.Host); err != nil {
		return fmt.Errorf("thawscape: error when checking %s location: %v", varName, err)
	}
	return nil
}

// checkOutputDir makes sure that the output directory is specified,
// and expands any environment variables. The directory itself is created
// when the first output is written.
func checkOutputDir(ctx context.Context, dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf(`you need to specify an output directory configuration variable (for example: OutputDir="output"`)
	}
	dir = os.ExpandEnv(dir)
	if IsBlob(dir) {
		return dir, checkBlob(ctx, "OutputDir", dir)
	}
	return filepath.Clean(dir), nil
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expand any environment variables.
func checkOutputFile(ctx context.Context, f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file configuration variable (for example: OutputFile="topo.asc"`)
	}
	f = os.ExpandEnv(f)
	if IsBlob(f) {
		return f, checkBlob(ctx, "OutputFile", f)
	}
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("thawscape: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputDir string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputDir, "/") + ".log"
	}
	return logFile
}

// ParamsFromConfig returns the model parameters held in cfg.
func ParamsFromConfig(cfg *viper.Viper) (*thawscape.Params, error) {
	p := &thawscape.Params{
		U:               cfg.GetFloat64("U"),
		K:               cfg.GetFloat64("K"),
		D:               cfg.GetFloat64("D"),
		Melt:            cfg.GetFloat64("Melt"),
		Deltax:          cfg.GetFloat64("Deltax"),
		Timestep:        cfg.GetInt("Timestep"),
		PrintInterval:   cfg.GetInt("PrintInterval"),
		CriticalSlope:   cfg.GetFloat64("CriticalSlope"),
		ThresholdArea:   cfg.GetFloat64("ThresholdArea"),
		BoundaryInflow:  cfg.GetBool("BoundaryInflow"),
		Latitude:        cfg.GetFloat64("Latitude"),
		Longitude:       cfg.GetFloat64("Longitude"),
		StdMeridian:     cfg.GetFloat64("StdMeridian"),
		StartYear:       cfg.GetInt("StartYear"),
		StartDay:        cfg.GetInt("StartDay"),
		StartHour:       cfg.GetInt("StartHour"),
		EndYear:         cfg.GetInt("EndYear"),
		EndDay:          cfg.GetInt("EndDay"),
		InitExposureAge: cfg.GetFloat64("InitExposureAge"),
		InitSedTrack:    cfg.GetFloat64("InitSedTrack"),
		InitVeg:         cfg.GetFloat64("InitVeg"),
		InitDiffusion:   cfg.GetBool("InitDiffusion"),
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("parsing model parameters: %v", err)
	}
	return p, nil
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) map[string]string {
	i := cfg.Get(varName)
	switch i.(type) {
	case map[string]string:
		return i.(map[string]string)
	case map[string]interface{}:
		return cast.ToStringMapString(i)
	case string:
		b := bytes.NewBuffer(([]byte)(i.(string)))
		d := json.NewDecoder(b)
		o := make(map[string]string)
		if err := d.Decode(&o); err != nil {
			panic(err)
		}
		return o
	default:
		panic(fmt.Errorf("invalid type for getStringMapString variable %s: %#v", varName, i))
	}
}
