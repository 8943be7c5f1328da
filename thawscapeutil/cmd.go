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
	"os"

	"github.com/chrisdjscott/ThawScape"
	"github.com/lnashier/viper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	dp := thawscape.DefaultParams()

	// Options are the configuration options available to ThawScape.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.
              The params.toml file written to the output directory of
              a previous run can be used here to repeat it.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Topography",
			usage: `
              Topography is the path to the initial elevation grid,
              as an ESRI ASCII grid (.asc) or netCDF (.nc) file. It can
              include environment variables and can be a URL or a
              blob storage location (gs://, s3:// or file://).`,
			shorthand:  "t",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), plotCmd.Flags()},
		},
		{
			name: "TopographyVariable",
			usage: `
              TopographyVariable is the name of the variable holding the
              elevation when Topography is a netCDF file.`,
			defaultVal: "topo",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), plotCmd.Flags()},
		},
		{
			name: "Inflow",
			usage: `
              Inflow is the path to a grid of the flow entering the domain
              across its edges, in the same formats as Topography. It is
              only used if BoundaryInflow is true. If it is empty and
              BoundaryInflow is true, one unit of flow enters at every
              edge cell.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir is the directory that snapshots of the model state
              are written to. It will be created if it does not exist. It
              can include environment variables and can be a blob storage
              location, in which case the output is uploaded when the
              simulation finishes.`,
			shorthand:  "o",
			defaultVal: "thawscape_output",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputFormats",
			usage: `
              OutputFormats specifies the formats snapshots are written in.
              Options are "asc" for ESRI ASCII grids, "nc" for netCDF, and
              "png" for images.`,
			defaultVal: []string{thawscape.FormatASCII},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies which model variables should be
              included in the output. It is a map of output names to
              expressions of the model variables, for example
              {"topo":"topo","slope_deg":"degrees(slope)"}. Run
              'thawscape outputoptions' for the available variables.`,
			defaultVal: map[string]string{"topo": "topo"},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can
              include environment variables. If LogFile is left empty,
              the log will be written next to OutputDir.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Checkpoint",
			usage: `
              Checkpoint is the path the final model state is saved to so
              that the simulation can be continued later using Restart. It
              can include environment variables and can be a blob storage
              location. If it is empty no checkpoint is saved.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Restart",
			usage: `
              Restart is the path to a checkpoint saved by a previous run.
              If it is not empty, the simulation continues from the saved
              state instead of starting from Topography, and runs until
              the end time given by EndYear and EndDay. It can be a URL or
              a blob storage location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "U",
			usage: `
              U is the uplift rate [m/yr].`,
			defaultVal: dp.U,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "K",
			usage: `
              K is the stream power erosion coefficient.`,
			defaultVal: dp.K,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "D",
			usage: `
              D is the hillslope diffusivity [m²/yr].`,
			defaultVal: dp.D,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Melt",
			usage: `
              Melt is the reciprocal melt rate for a given radiation input.`,
			defaultVal: dp.Melt,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Deltax",
			usage: `
              Deltax is the grid spacing [m]. If it is zero the cell size
              of the Topography grid is used.`,
			defaultVal: dp.Deltax,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Timestep",
			usage: `
              Timestep is the length of a model timestep [hours]. It must
              be between 1 and 24.`,
			defaultVal: dp.Timestep,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "PrintInterval",
			usage: `
              PrintInterval is the simulated time between snapshots
              [hours].`,
			defaultVal: dp.PrintInterval,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "CriticalSlope",
			usage: `
              CriticalSlope is the tangent of the angle above which
              hillslopes fail.`,
			defaultVal: dp.CriticalSlope,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ThresholdArea",
			usage: `
              ThresholdArea is the accumulated flow above which a cell is
              treated as a channel and excluded from hillslope diffusion.`,
			defaultVal: dp.ThresholdArea,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "BoundaryInflow",
			usage: `
              BoundaryInflow specifies whether flow enters the domain
              across its edges.`,
			defaultVal: dp.BoundaryInflow,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Latitude",
			usage: `
              Latitude is the latitude of the domain [degrees].`,
			defaultVal: dp.Latitude,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Longitude",
			usage: `
              Longitude is the longitude of the domain [degrees].`,
			defaultVal: dp.Longitude,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "StdMeridian",
			usage: `
              StdMeridian is the standard meridian of the time zone the
              simulated clock is kept in [degrees].`,
			defaultVal: dp.StdMeridian,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "StartYear",
			usage: `
              StartYear is the year the simulation starts in.`,
			defaultVal: dp.StartYear,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "StartDay",
			usage: `
              StartDay is the day of the year the simulation starts on.`,
			defaultVal: dp.StartDay,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "StartHour",
			usage: `
              StartHour is the hour of the day the simulation starts at.`,
			defaultVal: dp.StartHour,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "EndYear",
			usage: `
              EndYear is the year the simulation ends in.`,
			defaultVal: dp.EndYear,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "EndDay",
			usage: `
              EndDay is the day of EndYear at the start of which the
              simulation ends.`,
			defaultVal: dp.EndDay,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "InitExposureAge",
			usage: `
              InitExposureAge is the initial exposure age.`,
			defaultVal: dp.InitExposureAge,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "InitSedTrack",
			usage: `
              InitSedTrack is the initial sediment track depth [m].`,
			defaultVal: dp.InitSedTrack,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "InitVeg",
			usage: `
              InitVeg is the initial vegetation.`,
			defaultVal: dp.InitVeg,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "InitDiffusion",
			usage: `
              InitDiffusion specifies whether to build a diffusive
              landscape from the initial topography before the simulation
              starts.`,
			defaultVal: dp.InitDiffusion,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Random.SizeX",
			usage: `
              Random.SizeX is the number of rows in the random topography.`,
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{randomCmd.Flags()},
		},
		{
			name: "Random.SizeY",
			usage: `
              Random.SizeY is the number of columns in the random topography.`,
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{randomCmd.Flags()},
		},
		{
			name: "Random.CellSize",
			usage: `
              Random.CellSize is the grid spacing of the random
              topography [m].`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{randomCmd.Flags()},
		},
		{
			name: "Random.Seed",
			usage: `
              Random.Seed seeds the random number generator. The same seed
              always gives the same topography.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{randomCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the file to write. The format is
              chosen by the file extension: .asc, .nc or .png. It can
              include environment variables and can be a blob storage
              location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{randomCmd.Flags(), plotCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("THAWSCAPE")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(randomCmd)
	Root.AddCommand(plotCmd)
	Root.AddCommand(outputOptionsCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("thawscape: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "thawscape",
	Short: "A landscape evolution model for thawing permafrost.",
	Long: `ThawScape simulates the evolution of a landscape on a regular grid under
uplift, slope failure, surface water flow, hillslope diffusion, solar
heating and fluvial erosion.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'THAWSCAPE_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of ThawScape.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("ThawScape v%s\n", thawscape.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd is a command that runs a simulation.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the model.",
	Long: `run runs a ThawScape simulation from the initial topography until the
end time, writing snapshots of the model state to the output directory
every PrintInterval hours.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.TODO()
		logC := logChan(cmd)
		defer close(logC)

		p, err := ParamsFromConfig(Cfg)
		if err != nil {
			return err
		}
		outputDir, err := checkOutputDir(ctx, Cfg.GetString("OutputDir"))
		if err != nil {
			return err
		}
		outputVars, err := checkOutputVars(GetStringMapString("OutputVariables", Cfg))
		if err != nil {
			return err
		}
		restart := os.ExpandEnv(Cfg.GetString("Restart"))
		if restart != "" {
			restart = maybeDownload(ctx, restart, logC)
		}
		topo := os.ExpandEnv(Cfg.GetString("Topography"))
		if topo == "" && restart == "" {
			return fmt.Errorf("thawscape: you need to specify the initial topography (for example: --Topography=topo.asc)")
		}
		if topo != "" {
			topo = maybeDownload(ctx, topo, logC)
		}
		inflow := os.ExpandEnv(Cfg.GetString("Inflow"))
		if inflow != "" {
			inflow = maybeDownload(ctx, inflow, logC)
		}
		return Run(cmd,
			checkLogFile(os.ExpandEnv(Cfg.GetString("LogFile")), outputDir),
			topo,
			os.ExpandEnv(Cfg.GetString("TopographyVariable")),
			inflow,
			outputDir,
			expandStringSlice(Cfg.GetStringSlice("OutputFormats")),
			outputVars,
			restart,
			os.ExpandEnv(Cfg.GetString("Checkpoint")),
			p, nil, nil, nil,
		)
	},
	DisableAutoGenTag: true,
}

// randomCmd is a command that creates a random topography.
var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Create a random initial topography.",
	Long: `random creates a grid of normally distributed noise for use as a
synthetic initial topography and writes it to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile, err := checkOutputFile(context.TODO(), Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		return RandomTopography(outputFile,
			Cfg.GetInt("Random.SizeX"), Cfg.GetInt("Random.SizeY"),
			Cfg.GetFloat64("Random.CellSize"), int64(Cfg.GetInt("Random.Seed")))
	},
	DisableAutoGenTag: true,
}

// plotCmd is a command that draws a grid file as an image.
var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Draw a grid as an image.",
	Long: `plot reads the grid in Topography (and TopographyVariable for netCDF
files) and writes it to OutputFile in the format given by the file
extension. It is mostly used to draw model output as PNG images.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.TODO()
		logC := logChan(cmd)
		defer close(logC)
		outputFile, err := checkOutputFile(ctx, Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		return ConvertGrid(
			maybeDownload(ctx, os.ExpandEnv(Cfg.GetString("Topography")), logC),
			os.ExpandEnv(Cfg.GetString("TopographyVariable")),
			outputFile,
		)
	},
	DisableAutoGenTag: true,
}

// outputOptionsCmd is a command that lists the model variables that can
// be used in OutputVariables.
var outputOptionsCmd = &cobra.Command{
	Use:   "outputoptions",
	Short: "List the variables that can be written out.",
	Long: `outputoptions lists the model variables that can be used in the
OutputVariables expressions, with their descriptions and units.`,
	Run: func(cmd *cobra.Command, args []string) {
		names, descriptions, units := thawscape.OutputOptions()
		for i, n := range names {
			cmd.Printf("%-12s %s [%s]\n", n, descriptions[i], units[i])
		}
	},
	DisableAutoGenTag: true,
}

// logChan returns a channel whose messages are printed to the output of
// cmd.
func logChan(cmd *cobra.Command) chan string {
	c := make(chan string)
	go func() {
		for msg := range c {
			cmd.Println(msg)
		}
	}()
	return c
}
