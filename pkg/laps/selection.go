package laps

import (
	"sort"

	"f1laptrend/pkg/model"
)

// DefaultConstructorCount is how many constructors are shown when a circuit's
// constructor data is first loaded.
const DefaultConstructorCount = 4

// Entities returns the distinct entity ids present in the given session,
// sorted alphabetically.
func Entities(records []model.LapRecord, session model.Session) []string {
	return distinct(Filter(records, session))
}

// Select keeps the observed ids that are also part of the selection. Selected
// ids that were not observed are ignored.
func Select(observed []string, selection map[string]bool) []string {
	out := make([]string, 0, len(observed))
	for _, id := range observed {
		if selection[id] {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// DefaultConstructorSelection picks the first constructors alphabetically out
// of every session in the dataset.
func DefaultConstructorSelection(records []model.LapRecord) []string {
	names := distinct(records)
	if len(names) > DefaultConstructorCount {
		names = names[:DefaultConstructorCount]
	}
	return names
}

// SelectionOf builds a selection set from a list of ids.
func SelectionOf(ids ...string) map[string]bool {
	sel := make(map[string]bool, len(ids))
	for _, id := range ids {
		sel[id] = true
	}
	return sel
}

// Toggle returns a copy of selection with id flipped.
func Toggle(selection map[string]bool, id string) map[string]bool {
	out := make(map[string]bool, len(selection)+1)
	for k, v := range selection {
		if v {
			out[k] = true
		}
	}
	if out[id] {
		delete(out, id)
	} else {
		out[id] = true
	}
	return out
}

// Selected lists the ids of a selection set, sorted.
func Selected(selection map[string]bool) []string {
	out := make([]string, 0, len(selection))
	for id, on := range selection {
		if on {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func distinct(records []model.LapRecord) []string {
	set := make(map[string]struct{}, len(records))
	for _, r := range records {
		set[r.EntityID] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
