package dashboard

import (
	"f1laptrend/pkg/model"
)

type StreamStatus string

const (
	StatusIdle    StreamStatus = "idle"
	StatusLoading StreamStatus = "loading"
	StatusReady   StreamStatus = "ready"
	StatusEmpty   StreamStatus = "empty"
	StatusFailed  StreamStatus = "failed"
)

// Stream is the state of one independently fetched dataset.
type Stream[T any] struct {
	Status StreamStatus `json:"status"`
	Data   T            `json:"data,omitempty"`
	Err    string       `json:"error,omitempty"`
}

func (s Stream[T]) Settled() bool {
	return s.Status != StatusLoading
}

func loading[T any]() Stream[T] {
	return Stream[T]{Status: StatusLoading}
}

func settle[T any](data T, n int, err error) Stream[T] {
	switch {
	case err != nil:
		return Stream[T]{Status: StatusFailed, Err: err.Error()}
	case n == 0:
		return Stream[T]{Status: StatusEmpty, Data: data}
	}
	return Stream[T]{Status: StatusReady, Data: data}
}

// Datasets holds the three datasets of the selected circuit. Slices stored in
// it are never modified once set, so copies of the struct are safe to share.
type Datasets struct {
	Circuit      string                         `json:"circuit"`
	Generation   uint64                         `json:"generation"`
	Summary      Stream[[]model.ReferencePoint] `json:"summary"`
	Drivers      Stream[[]model.LapRecord]      `json:"drivers"`
	Constructors Stream[[]model.LapRecord]      `json:"constructors"`
}

func (d Datasets) Settled() bool {
	return d.Summary.Settled() && d.Drivers.Settled() && d.Constructors.Settled()
}

const (
	StreamSummary      = "summary"
	StreamDrivers      = "drivers"
	StreamConstructors = "constructors"
)

// Snapshot is published every time one stream of the current generation
// settles.
type Snapshot struct {
	Stream   string   `json:"stream"`
	Datasets Datasets `json:"datasets"`
}

// Status is the state of the stream that settled.
func (s Snapshot) Status() StreamStatus {
	switch s.Stream {
	case StreamSummary:
		return s.Datasets.Summary.Status
	case StreamDrivers:
		return s.Datasets.Drivers.Status
	case StreamConstructors:
		return s.Datasets.Constructors.Status
	}
	return StatusIdle
}
