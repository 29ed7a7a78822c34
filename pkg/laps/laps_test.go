package laps

import (
	"math"
	"testing"

	"f1laptrend/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lap(year int, session model.Session, id string, t float64) model.LapRecord {
	return model.LapRecord{Year: year, Session: session, EntityID: id, LapTime: t}
}

func TestPivot_FiltersBySession(t *testing.T) {
	records := []model.LapRecord{
		lap(2019, model.Qualifying, "VER", 101.2),
		lap(2019, model.Race, "VER", 103.5),
	}

	rows, err := Pivot(records, model.Qualifying, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2019, rows[0].Year)
	assert.Equal(t, map[string]float64{"VER": 101.2}, rows[0].Values)
}

func TestPivot_GapAgainstReference(t *testing.T) {
	records := []model.LapRecord{
		lap(2019, model.Qualifying, "VER", 101.2),
		lap(2019, model.Race, "VER", 103.5),
	}

	rows, err := Pivot(records, model.Qualifying, map[int]float64{2019: 101.2})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]float64{"VER": 101.2, "VER_gap": 0.0}, rows[0].Values)
}

func TestPivot_NoGapKeyWithoutReference(t *testing.T) {
	records := []model.LapRecord{
		lap(2018, model.Race, "HAM", 110.0),
		lap(2019, model.Race, "HAM", 109.0),
	}

	rows, err := Pivot(records, model.Race, map[int]float64{2019: 108.5})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	_, ok := rows[0].Get("HAM_gap")
	assert.False(t, ok, "2018 has no reference, gap key must be absent")

	gap, ok := rows[1].Get("HAM_gap")
	require.True(t, ok)
	assert.InDelta(t, 0.5, gap, 1e-9)
}

func TestPivot_RowsStrictlyAscendingRegardlessOfInputOrder(t *testing.T) {
	records := []model.LapRecord{
		lap(2021, model.Qualifying, "HAM", 100.1),
		lap(2015, model.Qualifying, "HAM", 107.2),
		lap(2019, model.Qualifying, "VER", 101.2),
		lap(2015, model.Qualifying, "VER", 109.0),
		lap(2021, model.Qualifying, "VER", 100.0),
	}

	rows, err := Pivot(records, model.Qualifying, nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i := 1; i < len(rows); i++ {
		assert.Less(t, rows[i-1].Year, rows[i].Year)
	}
	assert.Equal(t, map[string]float64{"HAM": 107.2, "VER": 109.0}, rows[0].Values)
	assert.Equal(t, map[string]float64{"VER": 101.2}, rows[1].Values)
}

func TestPivot_EmptyInput(t *testing.T) {
	rows, err := Pivot(nil, model.Race, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestPivot_RejectsDuplicateTuple(t *testing.T) {
	records := []model.LapRecord{
		lap(2019, model.Qualifying, "VER", 101.2),
		lap(2019, model.Qualifying, "VER", 101.9),
	}

	rows, err := Pivot(records, model.Qualifying, nil)
	assert.Nil(t, rows)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Problems, 1)
	assert.Equal(t, 1, verr.Problems[0].Index)
	assert.Contains(t, verr.Error(), "duplicates record 0")
}

func TestPivot_SameEntityDifferentSessionsIsNotDuplicate(t *testing.T) {
	records := []model.LapRecord{
		lap(2019, model.Qualifying, "VER", 101.2),
		lap(2019, model.Race, "VER", 103.5),
	}
	assert.NoError(t, Validate(records))
}

func TestValidate_RejectsMalformedRecords(t *testing.T) {
	records := []model.LapRecord{
		lap(0, model.Qualifying, "VER", 101.2),
		lap(2019, model.Session("FP1"), "VER", 101.2),
		lap(2019, model.Qualifying, " ", 101.2),
		lap(2019, model.Qualifying, "HAM", math.NaN()),
		lap(2019, model.Qualifying, "LEC", 0),
		lap(2019, model.Qualifying, "NOR", 102.0),
	}

	err := Validate(records)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Problems, 5)
	for i, p := range verr.Problems {
		assert.Equal(t, i, p.Index)
	}
}

func TestValidate_RejectsReservedEntityIDs(t *testing.T) {
	records := []model.LapRecord{
		lap(2019, model.Qualifying, "year", 101.2),
		lap(2019, model.Qualifying, "VER_gap", 101.5),
		lap(2019, model.Qualifying, "VER", 101.2),
	}

	err := Validate(records)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Problems, 2)
	assert.Equal(t, 0, verr.Problems[0].Index)
	assert.Contains(t, verr.Problems[0].Reason, "reserved")
	assert.Equal(t, 1, verr.Problems[1].Index)

	_, err = Pivot(records, model.Qualifying, nil)
	assert.ErrorAs(t, err, &verr)
}

func TestReferences(t *testing.T) {
	points := []model.ReferencePoint{
		{Year: 2018, Pole: 100, Fastest: 104, HasPole: true, HasFastest: true},
		{Year: 2019, Pole: 99, HasPole: true},
	}

	assert.Equal(t, map[int]float64{2018: 100, 2019: 99}, References(points, model.Qualifying))
	assert.Equal(t, map[int]float64{2018: 104}, References(points, model.Race))
}

func TestSelect_IgnoresUnobservedIDs(t *testing.T) {
	records := []model.LapRecord{
		lap(2019, model.Qualifying, "VER", 101.2),
		lap(2019, model.Qualifying, "HAM", 101.5),
	}
	observed := Entities(records, model.Qualifying)

	active := Select(observed, SelectionOf("HAM", "ALO"))
	assert.Equal(t, []string{"HAM"}, active)

	rows, err := Pivot(records, model.Qualifying, nil)
	require.NoError(t, err)
	for _, row := range rows {
		_, ok := row.Get("ALO")
		assert.False(t, ok)
	}
}

func TestEntities_SortedAndSessionScoped(t *testing.T) {
	records := []model.LapRecord{
		lap(2019, model.Race, "Williams", 110),
		lap(2019, model.Qualifying, "Mercedes", 101),
		lap(2020, model.Qualifying, "Ferrari", 102),
		lap(2019, model.Qualifying, "Ferrari", 102.5),
	}
	assert.Equal(t, []string{"Ferrari", "Mercedes"}, Entities(records, model.Qualifying))
}

func TestDefaultConstructorSelection(t *testing.T) {
	records := []model.LapRecord{
		lap(2019, model.Race, "Williams", 110),
		lap(2019, model.Qualifying, "Mercedes", 101),
		lap(2019, model.Qualifying, "Ferrari", 102),
		lap(2019, model.Qualifying, "Alpine", 103),
		lap(2019, model.Qualifying, "McLaren", 103),
		lap(2019, model.Race, "Ferrari", 104),
	}
	assert.Equal(t, []string{"Alpine", "Ferrari", "McLaren", "Mercedes"}, DefaultConstructorSelection(records))
	assert.Empty(t, DefaultConstructorSelection(nil))
}

func TestToggle_DoesNotMutateInput(t *testing.T) {
	sel := SelectionOf("VER", "HAM")

	next := Toggle(sel, "HAM")
	assert.Equal(t, []string{"VER"}, Selected(next))
	assert.Equal(t, []string{"HAM", "VER"}, Selected(sel))

	next = Toggle(next, "LEC")
	assert.Equal(t, []string{"LEC", "VER"}, Selected(next))
}
