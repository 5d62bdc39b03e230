// Package report renders computed variance tables for inspection: static
// PNG plots and self-contained HTML charts.
package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/cosmogrid/sigmar/internal/cosmo"
)

// SavePNG renders sigma²(R) as one line per redshift and writes a PNG to
// path.
func SavePNG(table *cosmo.VarianceTable, path string) error {
	if len(table.R) == 0 || len(table.Z) == 0 {
		return fmt.Errorf("empty variance table")
	}

	p := plot.New()
	p.Title.Text = "Smoothed density variance"
	p.X.Label.Text = "R (Mpc/h)"
	p.Y.Label.Text = "sigma²(R,z)"

	for j, z := range table.Z {
		pts := make(plotter.XYs, len(table.R))
		for i, r := range table.R {
			pts[i] = plotter.XY{X: r, Y: table.Sigma2[i][j]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("line for z=%g: %w", z, err)
		}
		line.Color = plotutil.Color(j)
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("z = %g", z), line)
	}

	p.Legend.Top = true
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save variance plot: %w", err)
	}
	return nil
}
