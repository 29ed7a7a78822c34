package render

import (
	"bytes"
	"fmt"

	"f1laptrend/pkg/circuits"
	"f1laptrend/pkg/dashboard"
	"f1laptrend/pkg/helper"
	"f1laptrend/pkg/model"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	tableYear    = "Year"
	tableCircuit = "Circuit"
	tableCommand = "Command"
)

func newWriter(b *bytes.Buffer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(b)
	style := table.StyleRounded
	// entity labels such as "HAM (Δ)" are printed as given
	style.Format.Header = text.FormatDefault
	t.SetStyle(style)
	return t
}

// ComparisonTable prints the rows of the comparison panel, one column per
// active series. Cells without a value show "-".
func ComparisonTable(view dashboard.View) string {
	cp := view.Comparison
	if msg := panelMessage(cp.Panel); msg != "" {
		return msg
	}

	var b bytes.Buffer
	t := newWriter(&b)
	header := table.Row{tableYear}
	configs := []table.ColumnConfig{{Number: 1, Align: text.AlignLeft}}
	for i, s := range cp.Series {
		header = append(header, s.Label)
		configs = append(configs, table.ColumnConfig{Number: i + 2, Align: text.AlignRight})
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	for _, row := range cp.Rows {
		r := table.Row{row.Year}
		for _, s := range cp.Series {
			r = append(r, formatCell(view.Metric, row, s.Key))
		}
		t.AppendRow(r)
	}
	t.Render()
	return b.String()
}

// ReferenceTable prints pole and fastest lap per year.
func ReferenceTable(view dashboard.View) string {
	rp := view.Reference
	if msg := panelMessage(rp.Panel); msg != "" {
		return msg
	}

	var b bytes.Buffer
	t := newWriter(&b)
	header := table.Row{tableYear}
	for _, s := range rp.Series {
		header = append(header, s.Label)
	}
	t.AppendHeader(header)
	for _, row := range rp.Rows {
		r := table.Row{row.Year}
		for _, s := range rp.Series {
			r = append(r, formatCell(model.MetricTime, row, s.Key))
		}
		t.AppendRow(r)
	}
	t.Render()
	return b.String()
}

// TrendCard summarises the pole trend of the circuit in a couple of lines.
func TrendCard(view dashboard.View) string {
	if view.TrendError != "" {
		return fmt.Sprintf("%s: pole trend unavailable (%s)", view.CircuitLabel, view.TrendError)
	}
	ts := view.PoleTrend
	if ts == nil {
		return fmt.Sprintf("%s: not enough pole data for a trend", view.CircuitLabel)
	}

	years := ts.EndYear - ts.StartYear
	verb := "faster"
	if !ts.Improved() {
		verb = "slower"
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s pole trend %d → %d\n", view.CircuitLabel, ts.StartYear, ts.EndYear)
	fmt.Fprintf(&b, "  %s → %s\n", helper.SecondsToMinutes(ts.StartValue), helper.SecondsToMinutes(ts.EndValue))
	fmt.Fprintf(&b, "  %.3fs %s over %d %s (%.3fs per year)\n",
		abs(ts.TotalDelta), verb, years, helper.Plural(years, "year", "years"), ts.YearlyDelta)
	return b.String()
}

// CircuitsTable lists circuits with the bot command that opens each one.
func CircuitsTable(list []circuits.Circuit) string {
	var b bytes.Buffer
	t := newWriter(&b)
	t.AppendHeader(table.Row{tableCircuit, tableCommand})
	for _, c := range list {
		t.AppendRow(table.Row{c.Label, "/" + c.Slug})
	}
	t.Render()
	return b.String()
}

func formatCell(metric model.Metric, row model.WideRow, key string) string {
	v, ok := row.Get(key)
	if !ok {
		return "-"
	}
	if metric == model.MetricGap {
		return helper.SecondsToGap(v)
	}
	return helper.SecondsToMinutes(v)
}

func panelMessage(p dashboard.Panel) string {
	switch {
	case p.Loading:
		return "Loading…"
	case p.Error != "":
		return "Error: " + p.Error
	case p.Empty != "":
		return p.Empty
	}
	return ""
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
