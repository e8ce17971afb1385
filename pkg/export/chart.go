package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/rcpspoc/core/overtime"
	"github.com/kilianp07/rcpspoc/core/project"
)

// WriteProfileChart renders one stacked bar chart per resource showing the
// usage within normal capacity and the overtime drawn in every period.
func WriteProfileChart(w io.Writer, m *overtime.Model, sts project.Schedule) error {
	if err := m.CheckSchedule(sts, m.ZMaxes()); err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	profile := m.ResourceProfile(sts)
	over := m.Overtime(sts)
	page := components.NewPage()
	page.PageTitle = m.Name() + " resource profile"
	for r := 0; r < m.NumRes(); r++ {
		page.AddCharts(resourceChart(m, r, profile[r], over[r]))
	}
	return page.Render(w)
}

func resourceChart(m *overtime.Model, r int, usage, over []int) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Resource %d", r),
			Subtitle: fmt.Sprintf("capacity %d, overtime up to %d at %.2f per unit", m.Capacity(r), m.ZMax(r), m.Kappa(r)),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Period"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Units"}),
	)
	periods := make([]string, 0, len(usage))
	normal := make([]opts.BarData, 0, len(usage))
	extra := make([]opts.BarData, 0, len(usage))
	for t := 1; t < len(usage); t++ {
		ot := 0
		if t < len(over) {
			ot = over[t]
		}
		periods = append(periods, strconv.Itoa(t))
		normal = append(normal, opts.BarData{Value: usage[t] - ot})
		extra = append(extra, opts.BarData{Value: ot})
	}
	stack := charts.WithBarChartOpts(opts.BarChart{Stack: "usage"})
	bar.SetXAxis(periods).
		AddSeries("normal", normal, stack).
		AddSeries("overtime", extra, stack)
	return bar
}
