package laps

import (
	"fmt"
	"math"
	"strings"

	"f1laptrend/pkg/model"
)

// Problem describes why a single record was rejected.
type Problem struct {
	Index  int
	Record model.LapRecord
	Reason string
}

func (p Problem) String() string {
	return fmt.Sprintf("record %d (%d/%s/%s): %s", p.Index, p.Record.Year, p.Record.Session, p.Record.EntityID, p.Reason)
}

// ValidationError lists every record of a dataset that cannot be pivoted.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid lap record: " + e.Problems[0].String()
	}
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.String()
	}
	return fmt.Sprintf("%d invalid lap records: %s", len(e.Problems), strings.Join(msgs, "; "))
}

type recordKey struct {
	year    int
	session model.Session
	entity  string
}

// Validate checks every record independently of any session filter. A
// (year, entity, session) tuple seen twice is reported on its second
// occurrence.
func Validate(records []model.LapRecord) error {
	var problems []Problem
	seen := make(map[recordKey]int, len(records))
	for i, r := range records {
		if reason := checkRecord(r); reason != "" {
			problems = append(problems, Problem{Index: i, Record: r, Reason: reason})
			continue
		}
		k := recordKey{year: r.Year, session: r.Session, entity: r.EntityID}
		if first, dup := seen[k]; dup {
			problems = append(problems, Problem{Index: i, Record: r, Reason: fmt.Sprintf("duplicates record %d", first)})
			continue
		}
		seen[k] = i
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func checkRecord(r model.LapRecord) string {
	switch {
	case r.Year <= 0:
		return "missing or invalid year"
	case !r.Session.Valid():
		return fmt.Sprintf("unknown session %q", r.Session)
	case strings.TrimSpace(r.EntityID) == "":
		return "missing entity id"
	case r.EntityID == model.YearKey:
		return fmt.Sprintf("entity id %q is reserved", r.EntityID)
	case strings.HasSuffix(r.EntityID, model.GapSuffix):
		return fmt.Sprintf("entity id %q ends in %q", r.EntityID, model.GapSuffix)
	case math.IsNaN(r.LapTime) || math.IsInf(r.LapTime, 0):
		return "lap time is not a number"
	case r.LapTime <= 0:
		return "missing or non-positive lap time"
	}
	return ""
}
