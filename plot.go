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
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Image dimensions.
const (
	ImageWidth  = 6 * vg.Inch
	ImageHeight = 6 * vg.Inch
)

// paletteColors is the number of colours in heat map palettes.
const paletteColors = 255

// colors is a palette.Palette.
type colors []color.Color

func (c colors) Colors() []color.Color { return c }

// heatPalette returns n colours spaced evenly between min and max.
// Rounding can push the spacing past max, so each value is clamped
// before it is looked up.
func heatPalette(min, max float64, n int) (colors, error) {
	cm := moreland.ExtendedBlackBody()
	cm.SetMin(min)
	cm.SetMax(max)
	delta := (max - min) / float64(n-1)
	c := make(colors, n)
	for i := range c {
		v := math.Max(min, math.Min(max, min+delta*float64(i)))
		var err error
		c[i], err = cm.At(v)
		if err != nil {
			return nil, fmt.Errorf("thawscape: creating colour palette: %v", err)
		}
	}
	return c, nil
}

// rasterGrid adapts a Raster to plotter.GridXYZ. Plot rows count up from
// the southern edge, so they are the raster rows in reverse.
type rasterGrid struct{ r *Raster }

func (g rasterGrid) Dims() (c, r int) { return g.r.SizeY(), g.r.SizeX() }
func (g rasterGrid) Z(c, r int) float64 {
	return g.r.Get(g.r.SizeX()-1-r, c)
}
func (g rasterGrid) X(c int) float64 {
	return g.r.XLLCorner + (float64(c)+0.5)*g.r.CellSize
}
func (g rasterGrid) Y(r int) float64 {
	return g.r.YLLCorner + (float64(r)+0.5)*g.r.CellSize
}

// WritePNG draws r as a heat map with the given title and writes it to w
// as a PNG image.
func WritePNG(w io.Writer, r *Raster, title string) error {
	p, err := plot.New()
	if err != nil {
		return fmt.Errorf("thawscape: creating plot: %v", err)
	}
	p.Title.Text = title
	p.X.Label.Text = "x [m]"
	p.Y.Label.Text = "y [m]"

	min, max := r.Min(), r.Max()
	if max <= min {
		max = min + 1
	}
	pal, err := heatPalette(min, max, paletteColors)
	if err != nil {
		return err
	}

	h := plotter.NewHeatMap(rasterGrid{r: r}, pal)
	h.Min, h.Max = min, max
	p.Add(h)

	b := r.Bounds()
	p.X.Min, p.X.Max = b.Min.X, b.Max.X
	p.Y.Min, p.Y.Max = b.Min.Y, b.Max.Y

	c := vgimg.New(ImageWidth, ImageHeight)
	p.Draw(draw.New(c))
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("thawscape: writing PNG: %v", err)
	}
	return nil
}
