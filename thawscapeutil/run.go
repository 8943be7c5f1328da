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
	"fmt"
	"io"
	"os"
	"time"

	"github.com/chrisdjscott/ThawScape"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Run runs the model.
//
// CobraCommand is the cobra.Command instance where Run is called from.
// Log messages are written to its output as well as to LogFile.
//
// LogFile is the path to the desired logfile location.
//
// Topography is the path to the initial elevation grid, and
// TopographyVariable is the name of the elevation variable if it is a
// netCDF file. Inflow, if not empty, is the path to a grid of the flow
// entering across the domain edges; in netCDF files it is read from the
// "inflow" variable.
//
// OutputDir is the directory snapshots are written to, in each of
// OutputFormats. OutputVariables maps output names to expressions of
// the model variables. Both OutputDir and LogFile can be blob storage
// locations, in which case they are uploaded when the simulation ends.
//
// Restart, if not empty, is the path to a checkpoint written by a previous
// run to continue from instead of starting from Topography. Checkpoint, if
// not empty, is the path the final model state is saved to; it can be a
// blob storage location.
//
// p holds the model parameters. addInit, addRun, and addCleanup
// specify functions beyond the default functions to run at
// initialization, runtime, and cleanup, respectively.
func Run(CobraCommand *cobra.Command, LogFile, Topography, TopographyVariable, Inflow, OutputDir string,
	OutputFormats []string, OutputVariables map[string]string, Restart, Checkpoint string, p *thawscape.Params,
	addInit, addRun, addCleanup []thawscape.DomainManipulator) error {

	startTime := time.Now()

	// The log file is uploaded separately, after it is closed.
	var upload, logUpload uploader

	logPath := logUpload.maybeUpload(LogFile)
	if logUpload.err != nil {
		return logUpload.err
	}
	logfile, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("thawscape: problem creating log file: %v", err)
	}
	defer logfile.Close()
	log := logrus.New()
	log.Out = io.MultiWriter(CobraCommand.OutOrStdout(), logfile)
	log.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	}

	log.Info("parsing output variable expressions")
	o, err := thawscape.NewOutputter(upload.maybeUploadDir(OutputDir), OutputFormats, OutputVariables, nil)
	if err != nil {
		return err
	}
	if upload.err != nil {
		return upload.err
	}

	var initFuncs []thawscape.DomainManipulator
	if Restart != "" {
		log.WithField("file", Restart).Info("reading checkpoint")
		f, err := os.Open(Restart)
		if err != nil {
			return fmt.Errorf("thawscape: opening checkpoint: %v", err)
		}
		defer f.Close()
		initFuncs = []thawscape.DomainManipulator{thawscape.Load(f)}
	} else {
		log.WithField("file", Topography).Info("reading initial topography")
		topo, err := ReadGrid(Topography, TopographyVariable)
		if err != nil {
			return err
		}
		var inflow *thawscape.Raster
		if Inflow != "" {
			log.WithField("file", Inflow).Info("reading boundary inflow")
			if inflow, err = ReadGrid(Inflow, "inflow"); err != nil {
				return err
			}
		}
		initFuncs = []thawscape.DomainManipulator{
			thawscape.SetTopography(topo),
			thawscape.SetInflow(inflow),
			thawscape.Setup(),
			thawscape.InitDiffusion(),
		}
	}
	initFuncs = append(initFuncs, o.WriteParams())
	if Restart == "" {
		// A restarted run keeps the initial snapshot of the original run.
		initFuncs = append(initFuncs, o.Output(thawscape.InitialSnapshot))
	}
	runFuncs := append(thawscape.TimestepFuncs(),
		thawscape.Log(),
		thawscape.RunPeriodically(p.PrintInterval, o.Output(thawscape.TimeSnapshot)),
	)
	var cleanupFuncs []thawscape.DomainManipulator
	if Checkpoint != "" {
		cleanupFuncs = append(cleanupFuncs, saveCheckpoint(upload.maybeUpload(Checkpoint)))
		if upload.err != nil {
			return upload.err
		}
	}
	cleanupFuncs = append(cleanupFuncs, upload.uploadOutput)

	d := &thawscape.Model{
		Params:       p,
		Log:          log,
		InitFuncs:    append(initFuncs, addInit...),
		RunFuncs:     append(runFuncs, addRun...),
		CleanupFuncs: append(cleanupFuncs, addCleanup...),
	}

	if err = d.Init(); err != nil {
		return err
	}
	if err = d.Run(); err != nil {
		return err
	}
	if err = d.Cleanup(); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"iterations": d.Iteration(),
		"walltime":   time.Since(startTime).String(),
		"files":      len(o.Files()),
	}).Info("simulation complete")
	if err = logfile.Close(); err != nil {
		return fmt.Errorf("thawscape: problem closing log file: %v", err)
	}
	return logUpload.uploadOutput(nil)
}

// saveCheckpoint returns a function that saves the model state to the
// file at path.
func saveCheckpoint(path string) thawscape.DomainManipulator {
	return func(d *thawscape.Model) error {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("thawscape: creating checkpoint file: %v", err)
		}
		if err := thawscape.Save(f)(d); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("thawscape: closing checkpoint file: %v", err)
		}
		d.Log.WithField("file", path).Info("saved checkpoint")
		return nil
	}
}
