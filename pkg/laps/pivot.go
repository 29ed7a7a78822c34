package laps

import (
	"sort"

	"f1laptrend/pkg/model"
)

// Filter returns the records of the given session, preserving input order.
func Filter(records []model.LapRecord, session model.Session) []model.LapRecord {
	out := make([]model.LapRecord, 0, len(records))
	for _, r := range records {
		if r.Session == session {
			out = append(out, r)
		}
	}
	return out
}

// Pivot turns the records of one session into one row per year, ascending,
// with one column per entity. When reference holds a value for the row's
// year, each entity also gets an entity+"_gap" column (positive = slower
// than the reference). Years without a reference get no gap columns at all.
//
// The whole input is validated first; nothing is pivoted when any record is
// malformed or duplicated.
func Pivot(records []model.LapRecord, session model.Session, reference map[int]float64) ([]model.WideRow, error) {
	if err := Validate(records); err != nil {
		return nil, err
	}

	byYear := make(map[int]map[string]float64)
	for _, r := range Filter(records, session) {
		entities, ok := byYear[r.Year]
		if !ok {
			entities = make(map[string]float64)
			byYear[r.Year] = entities
		}
		entities[r.EntityID] = r.LapTime
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	rows := make([]model.WideRow, 0, len(years))
	for _, year := range years {
		entities := byYear[year]
		base, hasBase := reference[year]

		values := make(map[string]float64, len(entities)*2)
		for id, lap := range entities {
			values[id] = lap
			if hasBase {
				values[id+model.GapSuffix] = lap - base
			}
		}
		rows = append(rows, model.WideRow{Year: year, Values: values})
	}
	return rows, nil
}

// References maps each year to the baseline used for gaps in the given
// session: pole time for qualifying, race fastest lap for the race.
func References(points []model.ReferencePoint, session model.Session) map[int]float64 {
	refs := make(map[int]float64, len(points))
	for _, p := range points {
		switch {
		case session == model.Qualifying && p.HasPole:
			refs[p.Year] = p.Pole
		case session == model.Race && p.HasFastest:
			refs[p.Year] = p.Fastest
		}
	}
	return refs
}
