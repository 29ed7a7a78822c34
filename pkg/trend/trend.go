package trend

import (
	"sort"

	"f1laptrend/pkg/model"

	"github.com/pkg/errors"
)

// ErrDuplicateYear is returned when the first or last year of a series holds
// more than one value, leaving the endpoint ambiguous.
var ErrDuplicateYear = errors.New("trend: several values share an endpoint year")

// Summarize reduces a series to its first and last year. It returns nil when
// fewer than two points exist or when every point falls on the same year.
// The input slice is not modified.
func Summarize(points []model.TrendPoint) (*model.TrendSummary, error) {
	if len(points) < 2 {
		return nil, nil
	}

	sorted := make([]model.TrendPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Year < sorted[j].Year
	})

	first := sorted[0]
	last := sorted[len(sorted)-1]
	years := last.Year - first.Year
	if years <= 0 {
		return nil, nil
	}
	if sorted[1].Year == first.Year {
		return nil, errors.Wrapf(ErrDuplicateYear, "start year %d", first.Year)
	}
	if sorted[len(sorted)-2].Year == last.Year {
		return nil, errors.Wrapf(ErrDuplicateYear, "end year %d", last.Year)
	}

	total := first.Value - last.Value
	return &model.TrendSummary{
		StartYear:   first.Year,
		EndYear:     last.Year,
		StartValue:  first.Value,
		EndValue:    last.Value,
		TotalDelta:  total,
		YearlyDelta: total / float64(years),
	}, nil
}

// PolePoints extracts the pole series of a circuit, skipping years without a
// pole time.
func PolePoints(refs []model.ReferencePoint) []model.TrendPoint {
	out := make([]model.TrendPoint, 0, len(refs))
	for _, r := range refs {
		if r.HasPole {
			out = append(out, model.TrendPoint{Year: r.Year, Value: r.Pole})
		}
	}
	return out
}

// FastestPoints extracts the race fastest lap series of a circuit.
func FastestPoints(refs []model.ReferencePoint) []model.TrendPoint {
	out := make([]model.TrendPoint, 0, len(refs))
	for _, r := range refs {
		if r.HasFastest {
			out = append(out, model.TrendPoint{Year: r.Year, Value: r.Fastest})
		}
	}
	return out
}

// EntityPoints extracts the series stored under key from pivoted rows.
func EntityPoints(rows []model.WideRow, key string) []model.TrendPoint {
	out := make([]model.TrendPoint, 0, len(rows))
	for _, row := range rows {
		if v, ok := row.Get(key); ok {
			out = append(out, model.TrendPoint{Year: row.Year, Value: v})
		}
	}
	return out
}

// YearRange returns the earliest and latest year of a circuit summary.
func YearRange(refs []model.ReferencePoint) (min, max int, ok bool) {
	for i, r := range refs {
		if i == 0 || r.Year < min {
			min = r.Year
		}
		if i == 0 || r.Year > max {
			max = r.Year
		}
	}
	return min, max, len(refs) > 0
}
