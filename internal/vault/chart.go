package vault

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderEquityChart 把净值曲线渲染为独立 HTML 页面。
func (l *Ledger) RenderEquityChart() ([]byte, error) {
	points, err := l.EquitySeries()
	if err != nil {
		return nil, err
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Vault Equity", Width: "960px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s balance over %d transactions", l.quote, len(points)),
			Subtitle: "paper trading ledger",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
	)
	xs := make([]string, 0, len(points))
	ys := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		xs = append(xs, p.Timestamp)
		ys = append(ys, opts.LineData{Value: p.Quote})
	}
	line.SetXAxis(xs).AddSeries(l.quote, ys,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false), Smooth: opts.Bool(true)}),
	)
	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return nil, fmt.Errorf("render equity chart failed: %w", err)
	}
	return buf.Bytes(), nil
}
