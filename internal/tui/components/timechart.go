package components

import (
	"sqldash/internal/domain"
	"sqldash/internal/tui/styles"

	"github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/charmbracelet/lipgloss"
)

// TimeDataset is one named line on a time-axis chart.
type TimeDataset struct {
	Name   string
	Color  lipgloss.Color
	Series domain.TimeSeries
}

// TimeChart renders multiple series on a shared braille time-axis line
// chart. Absent samples plot as zero so traces stay continuous.
func TimeChart(width, height int, datasets []TimeDataset) string {
	points := 0
	for _, ds := range datasets {
		points += len(ds.Series.Points)
	}
	if points == 0 {
		return styles.MutedText.Render("no data")
	}

	chart := timeserieslinechart.New(width, height)
	chart.AxisStyle = lipgloss.NewStyle().Foreground(styles.DimGray)
	chart.LabelStyle = lipgloss.NewStyle().Foreground(styles.Muted)

	for _, ds := range datasets {
		chart.SetDataSetStyle(ds.Name, lipgloss.NewStyle().Foreground(ds.Color))
		for _, p := range ds.Series.Sorted().Points {
			v := 0.0
			if p.Value != nil {
				v = *p.Value
			}
			chart.PushDataSet(ds.Name, timeserieslinechart.TimePoint{
				Time:  p.Timestamp,
				Value: v,
			})
		}
	}

	chart.DrawBrailleAll()
	return chart.View()
}

// TimeChartLegend renders a one-line color legend matching the datasets
// passed to TimeChart.
func TimeChartLegend(datasets []TimeDataset) string {
	out := ""
	for i, ds := range datasets {
		if i > 0 {
			out += styles.KeySepStyle.Render("  ")
		}
		mark := lipgloss.NewStyle().Foreground(ds.Color).Render("──")
		out += mark + " " + styles.MutedText.Render(ds.Name)
	}
	return out
}
