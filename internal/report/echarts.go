package report

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/cosmogrid/sigmar/internal/cosmo"
)

// SaveHTML renders sigma²(R) per redshift as an interactive line chart and
// writes a standalone HTML page to path.
func SaveHTML(table *cosmo.VarianceTable, path string) error {
	if len(table.R) == 0 || len(table.Z) == 0 {
		return fmt.Errorf("empty variance table")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Smoothed density variance",
			Subtitle: "sigma²(R,z) by smoothing scale",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "R (Mpc/h)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "sigma²"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	xLabels := make([]string, len(table.R))
	for i, r := range table.R {
		xLabels[i] = fmt.Sprintf("%g", r)
	}
	line.SetXAxis(xLabels)

	for j, z := range table.Z {
		data := make([]opts.LineData, len(table.R))
		for i := range table.R {
			data[i] = opts.LineData{Value: table.Sigma2[i][j]}
		}
		line.AddSeries(fmt.Sprintf("z = %g", z), data)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()

	if err := line.Render(f); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
