package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"f1laptrend/pkg/model"
	"f1laptrend/pkg/pubsub"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// fakeFetcher serves canned datasets per circuit. Circuits listed in block
// hang until released or cancelled.
type fakeFetcher struct {
	mu      sync.Mutex
	calls   map[string]int
	block   map[string]chan struct{}
	refs    map[string][]model.ReferencePoint
	drivers map[string][]model.LapRecord
	failing map[string]error
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		calls:   map[string]int{},
		block:   map[string]chan struct{}{},
		refs:    map[string][]model.ReferencePoint{},
		drivers: map[string][]model.LapRecord{},
		failing: map[string]error{},
	}
}

func (f *fakeFetcher) wait(ctx context.Context, circuit string) error {
	f.mu.Lock()
	f.calls[circuit]++
	ch := f.block[circuit]
	f.mu.Unlock()
	if ch == nil {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeFetcher) CircuitSummary(ctx context.Context, circuit string) ([]model.ReferencePoint, error) {
	if err := f.wait(ctx, circuit); err != nil {
		return nil, err
	}
	return f.refs[circuit], nil
}

func (f *fakeFetcher) DriverLaps(ctx context.Context, circuit string) ([]model.LapRecord, error) {
	if err := f.wait(ctx, circuit); err != nil {
		return nil, err
	}
	if err := f.failing[circuit]; err != nil {
		return nil, err
	}
	return f.drivers[circuit], nil
}

func (f *fakeFetcher) ConstructorLaps(ctx context.Context, circuit string) ([]model.LapRecord, error) {
	if err := f.wait(ctx, circuit); err != nil {
		return nil, err
	}
	return nil, nil
}

func waitSettled(t *testing.T, l *Loader) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, l.Wait(ctx))
}

func TestLoader_StreamsSettleIndependently(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFakeFetcher()
	f.refs["spa"] = []model.ReferencePoint{{Year: 2023, Pole: 105, HasPole: true}}
	f.failing["spa"] = errors.New("HTTP error! status: 500")

	l := NewLoader(context.Background(), f, nil, nil)
	defer l.Close()
	gen := l.Select("spa")
	waitSettled(t, l)

	d := l.Current()
	assert.Equal(t, gen, d.Generation)
	assert.Equal(t, StatusReady, d.Summary.Status)
	assert.Equal(t, StatusFailed, d.Drivers.Status)
	assert.Equal(t, "HTTP error! status: 500", d.Drivers.Err)
	assert.Equal(t, StatusEmpty, d.Constructors.Status)
	assert.True(t, d.Settled())
}

func TestLoader_SupersededGenerationIsDiscarded(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFakeFetcher()
	f.block["spa"] = make(chan struct{})
	f.drivers["spa"] = []model.LapRecord{lap(2023, model.Qualifying, "VER", 105)}
	f.drivers["monza"] = []model.LapRecord{lap(2023, model.Qualifying, "HAM", 80)}

	ps := pubsub.NewPubSub[Snapshot]()
	l := NewLoader(context.Background(), f, ps, nil)
	defer l.Close()
	snaps, unsub := ps.Subscribe(l.Topic(), 16)
	defer unsub()

	first := l.Select("spa")
	second := l.Select("monza")
	require.Greater(t, second, first)
	close(f.block["spa"])
	waitSettled(t, l)

	d := l.Current()
	assert.Equal(t, "monza", d.Circuit)
	assert.Equal(t, "HAM", d.Drivers.Data[0].EntityID)

	unsub()
	for s := range snaps {
		assert.Equal(t, second, s.Datasets.Generation)
		assert.Equal(t, "monza", s.Datasets.Circuit)
	}
}

func TestLoader_SelectSameCircuitIsNoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFakeFetcher()
	l := NewLoader(context.Background(), f, nil, nil)
	defer l.Close()

	gen := l.Select("spa")
	waitSettled(t, l)
	assert.Equal(t, gen, l.Select("spa"))
	assert.Equal(t, 3, f.calls["spa"])

	reloaded := l.Reload()
	waitSettled(t, l)
	assert.Equal(t, gen+1, reloaded)
	assert.Equal(t, 6, f.calls["spa"])
}

func TestLoader_ReloadBeforeSelect(t *testing.T) {
	l := NewLoader(context.Background(), newFakeFetcher(), nil, nil)
	assert.Zero(t, l.Reload())
	assert.NoError(t, l.Wait(context.Background()))
}

func TestLoader_CloseCancelsPendingFetches(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFakeFetcher()
	f.block["spa"] = make(chan struct{})
	l := NewLoader(context.Background(), f, nil, nil)
	l.Select("spa")
	l.Close()

	d := l.Current()
	assert.Equal(t, StatusLoading, d.Summary.Status)
}

func TestLoader_WaitHonoursContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFakeFetcher()
	f.block["spa"] = make(chan struct{})
	l := NewLoader(context.Background(), f, nil, nil)
	defer l.Close()
	l.Select("spa")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.DeadlineExceeded)
}
