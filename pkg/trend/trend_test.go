package trend

import (
	"testing"

	"f1laptrend/pkg/model"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_TooFewPoints(t *testing.T) {
	s, err := Summarize(nil)
	assert.NoError(t, err)
	assert.Nil(t, s)

	s, err = Summarize([]model.TrendPoint{{Year: 2015, Value: 90}})
	assert.NoError(t, err)
	assert.Nil(t, s)
}

func TestSummarize_EqualYears(t *testing.T) {
	s, err := Summarize([]model.TrendPoint{{Year: 2015, Value: 90.0}, {Year: 2015, Value: 88.0}})
	assert.NoError(t, err)
	assert.Nil(t, s)
}

func TestSummarize_TwoEndpoints(t *testing.T) {
	s, err := Summarize([]model.TrendPoint{{Year: 2015, Value: 93.0}, {Year: 2023, Value: 88.0}})
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, model.TrendSummary{
		StartYear:   2015,
		EndYear:     2023,
		StartValue:  93.0,
		EndValue:    88.0,
		TotalDelta:  5.0,
		YearlyDelta: 0.625,
	}, *s)
	assert.True(t, s.Improved())
}

func TestSummarize_UnsortedInputIsNotMutated(t *testing.T) {
	points := []model.TrendPoint{
		{Year: 2020, Value: 104.0},
		{Year: 2010, Value: 110.0},
		{Year: 2015, Value: 112.0},
	}

	s, err := Summarize(points)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 2010, s.StartYear)
	assert.Equal(t, 2020, s.EndYear)
	assert.InDelta(t, 0.6, s.YearlyDelta, 1e-9)
	assert.Equal(t, 2020, points[0].Year)
}

func TestSummarize_SlowerTrend(t *testing.T) {
	s, err := Summarize([]model.TrendPoint{{Year: 2010, Value: 100}, {Year: 2014, Value: 102}})
	require.NoError(t, err)
	assert.False(t, s.Improved())
	assert.InDelta(t, -0.5, s.YearlyDelta, 1e-9)
}

func TestSummarize_DuplicateEndpointYear(t *testing.T) {
	_, err := Summarize([]model.TrendPoint{
		{Year: 2015, Value: 93.0},
		{Year: 2023, Value: 88.0},
		{Year: 2023, Value: 87.5},
	})
	assert.True(t, errors.Is(err, ErrDuplicateYear))

	_, err = Summarize([]model.TrendPoint{
		{Year: 2015, Value: 93.0},
		{Year: 2015, Value: 92.0},
		{Year: 2023, Value: 88.0},
	})
	assert.True(t, errors.Is(err, ErrDuplicateYear))
}

func TestSummarize_DuplicateInnerYearIsFine(t *testing.T) {
	s, err := Summarize([]model.TrendPoint{
		{Year: 2015, Value: 93.0},
		{Year: 2019, Value: 90.0},
		{Year: 2019, Value: 91.0},
		{Year: 2023, Value: 88.0},
	})
	require.NoError(t, err)
	assert.Equal(t, 5.0, s.TotalDelta)
}

func TestPoints(t *testing.T) {
	refs := []model.ReferencePoint{
		{Year: 2018, Pole: 100, Fastest: 104, HasPole: true, HasFastest: true},
		{Year: 2019, Fastest: 103, HasFastest: true},
	}
	assert.Equal(t, []model.TrendPoint{{Year: 2018, Value: 100}}, PolePoints(refs))
	assert.Equal(t, []model.TrendPoint{{Year: 2018, Value: 104}, {Year: 2019, Value: 103}}, FastestPoints(refs))
}

func TestEntityPoints(t *testing.T) {
	rows := []model.WideRow{
		{Year: 2018, Values: map[string]float64{"VER": 102}},
		{Year: 2019, Values: map[string]float64{"HAM": 101}},
		{Year: 2020, Values: map[string]float64{"VER": 100}},
	}
	assert.Equal(t, []model.TrendPoint{{Year: 2018, Value: 102}, {Year: 2020, Value: 100}}, EntityPoints(rows, "VER"))
}

func TestYearRange(t *testing.T) {
	_, _, ok := YearRange(nil)
	assert.False(t, ok)

	min, max, ok := YearRange([]model.ReferencePoint{{Year: 2012}, {Year: 2004}, {Year: 2023}})
	require.True(t, ok)
	assert.Equal(t, 2004, min)
	assert.Equal(t, 2023, max)
}
