// Package report renders a pricing run's per-round trajectory as an HTML
// line chart: the same go-echarts chart construction and file-render call,
// applied to (round, lowerBound) and (round, columnsKept)
// series instead of a 2D objective-space Pareto front.
package report

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/scipgcg/pricing/pkg/pricer"
)

// PlotRounds renders stats as a line chart tracking the Lagrangian
// lower bound and the number of columns kept across rounds, writing it to
// outputPath as standalone HTML.
func PlotRounds(stats []pricer.RoundStats, outputPath string) error {
	if len(stats) == 0 {
		return fmt.Errorf("report: no round stats to plot")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Pricing round trajectory",
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "round"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "value"}),
	)

	rounds := make([]string, len(stats))
	lb := make([]opts.LineData, len(stats))
	kept := make([]opts.LineData, len(stats))
	for i, s := range stats {
		rounds[i] = fmt.Sprintf("%d", s.Round)
		lb[i] = opts.LineData{Value: s.LowerBound}
		kept[i] = opts.LineData{Value: s.ColumnsKept}
	}

	line.SetXAxis(rounds).
		AddSeries("Lagrangian lower bound", lb).
		AddSeries("Columns kept", kept).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		)

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", outputPath, err)
	}
	defer f.Close()

	return line.Render(f)
}
