package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

type Session string

const (
	Qualifying Session = "Q"
	Race       Session = "R"
)

func (s Session) Valid() bool {
	return s == Qualifying || s == Race
}

func (s Session) String() string {
	switch s {
	case Qualifying:
		return "Qualifying"
	case Race:
		return "Race"
	}
	return string(s)
}

func ParseSession(s string) (Session, error) {
	switch s {
	case "Q", "q", "qualifying", "Qualifying":
		return Qualifying, nil
	case "R", "r", "race", "Race":
		return Race, nil
	}
	return "", fmt.Errorf("unknown session %q", s)
}

// Mode selects which per-entity dataset drives the comparison chart.
type Mode string

const (
	ModeDriver      Mode = "driver"
	ModeConstructor Mode = "constructor"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDriver, ModeConstructor:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Metric selects between absolute lap times and the gap to the year's reference.
type Metric string

const (
	MetricTime Metric = "time"
	MetricGap  Metric = "gap"
)

func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricTime, MetricGap:
		return Metric(s), nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// GapSuffix is appended to an entity id to name its gap column.
const GapSuffix = "_gap"

// YearKey is the row key holding the year; no entity may use it.
const YearKey = "year"

// Key returns the row key holding the value of entity for the given metric.
func (m Metric) Key(entity string) string {
	if m == MetricGap {
		return entity + GapSuffix
	}
	return entity
}

// LapRecord is the best lap of one entity (driver or constructor) in one
// session of one year at a circuit. LapTime is in seconds.
type LapRecord struct {
	Year     int     `json:"year"`
	Session  Session `json:"session"`
	EntityID string  `json:"entityId"`
	LapTime  float64 `json:"lapTime"`
}

// DriverLap is the wire shape of /data/{circuit}_driver_laps.json.
type DriverLap struct {
	Year     *int     `json:"year"`
	Session  *string  `json:"session"`
	DriverID *string  `json:"driverId"`
	LapTime  *float64 `json:"lapTime"`
}

// ConstructorLap is the wire shape of /data/constructors/{circuit}.json.
type ConstructorLap struct {
	Year            *int     `json:"year"`
	Session         *string  `json:"session"`
	ConstructorName *string  `json:"constructorName"`
	LapTime         *float64 `json:"lapTime"`
}

// ReferencePoint holds the pole and race fastest lap of a circuit-year.
type ReferencePoint struct {
	Year       int     `json:"year"`
	Pole       float64 `json:"pole"`
	Fastest    float64 `json:"fastest"`
	HasPole    bool    `json:"-"`
	HasFastest bool    `json:"-"`
}

// CircuitLapTimes is the wire shape of /data/{circuit}_lap_times.json.
type CircuitLapTimes struct {
	Year    *int     `json:"year"`
	Pole    *float64 `json:"pole"`
	Fastest *float64 `json:"fastest"`
}

// WideRow is one chart row: a year plus one column per entity that has a lap
// that year, and optionally an entity+"_gap" column.
type WideRow struct {
	Year   int
	Values map[string]float64
}

func (r WideRow) Get(key string) (float64, bool) {
	v, ok := r.Values[key]
	return v, ok
}

func (r WideRow) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(r.Values))
	for k := range r.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b bytes.Buffer
	fmt.Fprintf(&b, `{"year":%d`, r.Year)
	for _, k := range keys {
		if k == YearKey {
			return nil, fmt.Errorf("column %q collides with the year", k)
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.Values[k])
		if err != nil {
			return nil, err
		}
		b.WriteByte(',')
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func (r *WideRow) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	yearRaw, ok := raw[YearKey]
	if !ok {
		return fmt.Errorf("row without year")
	}
	if err := json.Unmarshal(yearRaw, &r.Year); err != nil {
		return err
	}
	r.Values = make(map[string]float64, len(raw)-1)
	for k, v := range raw {
		if k == YearKey {
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err != nil {
			return fmt.Errorf("column %q: %w", k, err)
		}
		r.Values[k] = f
	}
	return nil
}

type TrendPoint struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// TrendSummary reduces a series to its endpoints. A positive TotalDelta means
// the later value is smaller, i.e. the lap got faster.
type TrendSummary struct {
	StartYear   int     `json:"startYear"`
	EndYear     int     `json:"endYear"`
	StartValue  float64 `json:"startValue"`
	EndValue    float64 `json:"endValue"`
	TotalDelta  float64 `json:"totalDelta"`
	YearlyDelta float64 `json:"yearlyDelta"`
}

func (ts TrendSummary) Improved() bool {
	return ts.TotalDelta >= 0
}
