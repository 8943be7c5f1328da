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
	"os"
	"path/filepath"
	"strings"

	"github.com/chrisdjscott/ThawScape"
)

// ReadGrid reads the raster in the file at path. The format is chosen by
// the file extension: ".asc" for ESRI ASCII grids and ".nc" for netCDF,
// in which case variable names the variable to read.
func ReadGrid(path, variable string) (*thawscape.Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("thawscape: opening grid file: %v", err)
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case "." + thawscape.FormatASCII:
		return thawscape.ReadASCIIGrid(f)
	case "." + thawscape.FormatNetCDF:
		return thawscape.ReadNetCDF(f, variable)
	default:
		return nil, fmt.Errorf("thawscape: unsupported grid file type '%s'; should be .asc or .nc", filepath.Ext(path))
	}
}

// WriteGrid writes r to the file at path. The format is chosen by the
// file extension: ".asc", ".nc" or ".png". name is used as the netCDF
// variable name and the image title.
func WriteGrid(path, name string, r *thawscape.Raster) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case "." + thawscape.FormatASCII, "." + thawscape.FormatNetCDF, "." + thawscape.FormatPNG:
	default:
		return fmt.Errorf("thawscape: unsupported output file type '%s'; should be .asc, .nc or .png", filepath.Ext(path))
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("thawscape: creating output file: %v", err)
	}
	switch ext {
	case "." + thawscape.FormatASCII:
		err = thawscape.WriteASCIIGrid(f, r)
	case "." + thawscape.FormatNetCDF:
		err = thawscape.WriteNetCDF(f, map[string]*thawscape.Raster{name: r}, nil)
	default:
		err = thawscape.WritePNG(f, r, name)
	}
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RandomTopography writes a sizeX×sizeY grid of random noise with the
// given cell size to outputFile, which can be a blob storage location.
func RandomTopography(outputFile string, sizeX, sizeY int, cellSize float64, seed int64) error {
	if sizeX < 1 || sizeY < 1 {
		return fmt.Errorf("thawscape: random topography size must be >0 but is %d×%d", sizeX, sizeY)
	}
	if !(cellSize > 0) {
		return fmt.Errorf("thawscape: random topography cell size must be >0 but is %g", cellSize)
	}
	r := thawscape.RandomField(sizeX, sizeY, seed)
	r.CellSize = cellSize

	var upload uploader
	path := upload.maybeUpload(outputFile)
	if upload.err != nil {
		return upload.err
	}
	if err := WriteGrid(path, "topo", r); err != nil {
		return err
	}
	return upload.uploadOutput(nil)
}

// ConvertGrid reads the grid in inputFile and writes it to outputFile,
// converting between formats according to the file extensions.
func ConvertGrid(inputFile, variable, outputFile string) error {
	if inputFile == "" {
		return fmt.Errorf("thawscape: no input grid file specified")
	}
	r, err := ReadGrid(inputFile, variable)
	if err != nil {
		return err
	}
	var upload uploader
	path := upload.maybeUpload(outputFile)
	if upload.err != nil {
		return upload.err
	}
	name := variable
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
	}
	if err := WriteGrid(path, name, r); err != nil {
		return err
	}
	return upload.uploadOutput(nil)
}
