package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"f1laptrend/pkg/dashboard"
	"f1laptrend/pkg/helper"
	"f1laptrend/pkg/model"

	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when a chart would have no line to draw.
var ErrNoData = errors.New("render: nothing to plot")

const (
	ChartWidth  = 960
	ChartHeight = 480
)

// ComparisonChart draws the comparison panel of a view as a PNG line chart,
// one line per active series.
func ComparisonChart(w io.Writer, view dashboard.View) error {
	cp := view.Comparison
	title := fmt.Sprintf("%s · %s · %s", view.CircuitLabel, cp.Title, view.Session)
	return lineChart(w, title, cp.YAxisLabel, cp.Series, cp.Rows, view.Metric == model.MetricGap)
}

// ReferenceChart draws the pole and fastest lap lines of a view.
func ReferenceChart(w io.Writer, view dashboard.View) error {
	rp := view.Reference
	title := fmt.Sprintf("%s · Pole and fastest lap", view.CircuitLabel)
	return lineChart(w, title, "Lap Time (seconds)", rp.Series, rp.Rows, false)
}

func lineChart(w io.Writer, title, yLabel string, lines []dashboard.Series, rows []model.WideRow, zeroLine bool) error {
	var (
		series []chart.Series
		bounds extent
	)
	for _, s := range lines {
		var xs, ys []float64
		for _, row := range rows {
			if v, ok := row.Get(s.Key); ok {
				xs = append(xs, float64(row.Year))
				ys = append(ys, v)
				bounds.add(float64(row.Year), v)
			}
		}
		if len(xs) == 0 {
			continue
		}
		col := hexColor(s.Color)
		series = append(series, chart.ContinuousSeries{
			Name:    s.Label,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: col,
				StrokeWidth: 2,
				DotColor:    col,
				DotWidth:    3,
			},
		})
	}
	if len(series) == 0 {
		return ErrNoData
	}
	if zeroLine {
		bounds.add(bounds.minX, 0)
	}

	xMin, xMax := bounds.minX, bounds.maxX
	if xMax <= xMin {
		// a single season still needs a non-empty axis
		xMin, xMax = xMin-1, xMax+1
	}
	yMin, yMax := padRange(bounds.minY, bounds.maxY)

	ch := chart.Chart{
		Title:      title,
		Width:      ChartWidth,
		Height:     ChartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 28}},
		XAxis: chart.XAxis{
			Name:           "Year",
			Range:          &chart.ContinuousRange{Min: xMin, Max: xMax},
			Ticks:          yearTicks(xMin, xMax),
			ValueFormatter: func(v interface{}) string { return fmt.Sprintf("%.0f", v) },
		},
		YAxis: chart.YAxis{
			Name:           yLabel,
			Range:          &chart.ContinuousRange{Min: yMin, Max: yMax},
			ValueFormatter: func(v interface{}) string { return helper.Seconds(toFloat(v)) },
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return errors.Wrap(err, "render chart")
	}
	return nil
}

type extent struct {
	set                    bool
	minX, maxX, minY, maxY float64
}

func (e *extent) add(x, y float64) {
	if !e.set {
		e.minX, e.maxX, e.minY, e.maxY = x, x, y, y
		e.set = true
		return
	}
	e.minX = math.Min(e.minX, x)
	e.maxX = math.Max(e.maxX, x)
	e.minY = math.Min(e.minY, y)
	e.maxY = math.Max(e.maxY, y)
}

func padRange(lo, hi float64) (float64, float64) {
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 0.5
	}
	return lo - pad, hi + pad
}

func yearTicks(from, to float64) []chart.Tick {
	span := int(to - from)
	step := 1
	for span/step > 12 {
		step++
	}
	var ticks []chart.Tick
	for y := int(math.Ceil(from)); y <= int(to); y += step {
		ticks = append(ticks, chart.Tick{Value: float64(y), Label: fmt.Sprint(y)})
	}
	return ticks
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

func toFloat(v interface{}) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return math.NaN()
}
