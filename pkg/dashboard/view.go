package dashboard

import (
	"f1laptrend/pkg/circuits"
	"f1laptrend/pkg/drivers"
	"f1laptrend/pkg/laps"
	"f1laptrend/pkg/model"
	"f1laptrend/pkg/trend"
)

const (
	poleColor    = "#4cc9f0"
	fastestColor = "#4361ee"
)

var constructorPalette = []string{
	"#e6194b", "#3cb44b", "#4363d8", "#f58231", "#911eb4",
	"#42d4f4", "#f032e6", "#bfef45", "#469990", "#9a6324",
}

type YearRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Entity is one toggleable driver or constructor of the comparison panel.
type Entity struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Color    string `json:"color"`
	Selected bool   `json:"selected"`
}

// Series is one line of a chart: the row key holding its values plus how to
// draw it.
type Series struct {
	EntityID string `json:"entityId"`
	Key      string `json:"key"`
	Label    string `json:"label"`
	Color    string `json:"color"`
}

// Panel state shared by both charts. Exactly one of Loading, Error, Empty or
// a non-empty Rows is meaningful to a renderer.
type Panel struct {
	Status  StreamStatus `json:"status"`
	Loading bool         `json:"loading"`
	Error   string       `json:"error,omitempty"`
	Empty   string       `json:"empty,omitempty"`
}

type ComparisonPanel struct {
	Panel
	Title      string          `json:"title"`
	YAxisLabel string          `json:"yAxisLabel"`
	Entities   []Entity        `json:"entities"`
	Series     []Series        `json:"series"`
	Rows       []model.WideRow `json:"rows"`
}

type ReferencePanel struct {
	Panel
	Series []Series        `json:"series"`
	Rows   []model.WideRow `json:"rows"`
}

// View is the complete, render-ready state of the dashboard.
type View struct {
	Circuit      string              `json:"circuit"`
	CircuitLabel string              `json:"circuitLabel"`
	Generation   uint64              `json:"generation"`
	Mode         model.Mode          `json:"mode"`
	Session      model.Session       `json:"session"`
	Metric       model.Metric        `json:"metric"`
	Years        *YearRange          `json:"years,omitempty"`
	PoleTrend    *model.TrendSummary `json:"poleTrend,omitempty"`
	TrendError   string              `json:"trendError,omitempty"`
	Comparison   ComparisonPanel     `json:"comparison"`
	Reference    ReferencePanel      `json:"reference"`
}

// Derive computes the view from the user inputs and the loaded datasets. It
// is a pure function; callers re-run it whenever either side changes.
func Derive(in Inputs, d Datasets) View {
	v := View{
		Circuit:      in.Circuit,
		CircuitLabel: circuits.Label(in.Circuit),
		Generation:   d.Generation,
		Mode:         in.Mode,
		Session:      in.Session,
		Metric:       in.Metric,
	}
	if d.Circuit != in.Circuit {
		// datasets of another circuit are never shown
		d = Datasets{Circuit: in.Circuit, Summary: loading[[]model.ReferencePoint](), Drivers: loading[[]model.LapRecord](), Constructors: loading[[]model.LapRecord]()}
	}

	refs := d.Summary.Data
	if d.Summary.Status == StatusReady {
		if from, to, ok := trend.YearRange(refs); ok {
			v.Years = &YearRange{From: from, To: to}
		}
		summary, err := trend.Summarize(trend.PolePoints(refs))
		if err != nil {
			v.TrendError = err.Error()
		}
		v.PoleTrend = summary
	}

	v.Reference = deriveReference(in, d.Summary)
	v.Comparison = deriveComparison(in, d, laps.References(refs, in.Session))
	return v
}

func panelFor[T any](s Stream[T], empty string) Panel {
	p := Panel{Status: s.Status}
	switch s.Status {
	case StatusIdle, StatusLoading:
		p.Loading = true
	case StatusFailed:
		p.Error = s.Err
	case StatusEmpty:
		p.Empty = empty
	}
	return p
}

func deriveReference(in Inputs, s Stream[[]model.ReferencePoint]) ReferencePanel {
	rp := ReferencePanel{Panel: panelFor(s, "No lap time data for this circuit.")}
	if s.Status != StatusReady {
		return rp
	}
	if in.ShowPole {
		rp.Series = append(rp.Series, Series{Key: "pole", Label: "Pole (Qualifying)", Color: poleColor})
	}
	if in.ShowFastest {
		rp.Series = append(rp.Series, Series{Key: "fastest", Label: "Fastest (Race)", Color: fastestColor})
	}
	rp.Rows = referenceRows(s.Data)
	return rp
}

// referenceRows orders the circuit summary by year for charting.
func referenceRows(refs []model.ReferencePoint) []model.WideRow {
	records := make([]model.LapRecord, 0, len(refs)*2)
	for _, r := range refs {
		if r.HasPole {
			records = append(records, model.LapRecord{Year: r.Year, Session: model.Qualifying, EntityID: "pole", LapTime: r.Pole})
		}
		if r.HasFastest {
			records = append(records, model.LapRecord{Year: r.Year, Session: model.Qualifying, EntityID: "fastest", LapTime: r.Fastest})
		}
	}
	rows, err := laps.Pivot(records, model.Qualifying, nil)
	if err != nil {
		// years are unique per circuit summary, so this cannot fail
		return nil
	}
	return rows
}

func deriveComparison(in Inputs, d Datasets, reference map[int]float64) ComparisonPanel {
	var (
		stream    Stream[[]model.LapRecord]
		selection map[string]bool
		cp        ComparisonPanel
	)
	if in.Mode == model.ModeConstructor {
		stream = d.Constructors
		cp.Title = "Lap times by constructor"
		cp.Panel = panelFor(stream, "No constructor lap data for this circuit yet.")
		if in.Constructors == nil {
			selection = laps.SelectionOf(laps.DefaultConstructorSelection(stream.Data)...)
		} else {
			selection = laps.SelectionOf(in.Constructors...)
		}
	} else {
		stream = d.Drivers
		cp.Title = "Lap times by driver"
		cp.Panel = panelFor(stream, "No driver lap data for this circuit yet.")
		selection = laps.SelectionOf(in.Drivers...)
	}
	cp.YAxisLabel = "Lap Time (seconds)"
	if in.Metric == model.MetricGap {
		cp.YAxisLabel = "Gap to best (seconds)"
	}

	if stream.Status != StatusReady {
		return cp
	}

	filtered := laps.Filter(stream.Data, in.Session)
	if len(filtered) == 0 {
		cp.Status = StatusEmpty
		cp.Empty = "No " + in.Session.String() + " laps for this circuit."
		return cp
	}

	rows, err := laps.Pivot(stream.Data, in.Session, reference)
	if err != nil {
		cp.Status = StatusFailed
		cp.Error = err.Error()
		return cp
	}
	cp.Rows = rows

	observed := laps.Entities(stream.Data, in.Session)
	if in.Mode == model.ModeDriver {
		// the driver table is fixed, observed or not
		observed = mergeIDs(driverIDs(), observed)
	}
	for i, id := range observed {
		label, color := entityStyle(in.Mode, id, i)
		cp.Entities = append(cp.Entities, Entity{ID: id, Label: label, Color: color, Selected: selection[id]})
	}

	active := laps.Select(laps.Entities(stream.Data, in.Session), selection)
	for _, id := range active {
		label, color := entityStyle(in.Mode, id, indexOf(observed, id))
		if in.Metric == model.MetricGap {
			label += " (Δ)"
		}
		cp.Series = append(cp.Series, Series{EntityID: id, Key: in.Metric.Key(id), Label: label, Color: color})
	}
	return cp
}

func entityStyle(mode model.Mode, id string, idx int) (label, color string) {
	if mode == model.ModeDriver {
		d := drivers.Lookup(id)
		return d.ShortName, d.Color
	}
	return id, constructorPalette[idx%len(constructorPalette)]
}

func driverIDs() []string {
	ids := make([]string, len(drivers.All))
	for i, d := range drivers.All {
		ids[i] = d.ID
	}
	return ids
}

func mergeIDs(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, ids := range [][]string{a, b} {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return 0
}
