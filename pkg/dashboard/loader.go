package dashboard

import (
	"context"
	"sync"

	"f1laptrend/pkg/model"
	"f1laptrend/pkg/pubsub"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Fetcher retrieves the three datasets of a circuit. A nil slice with a nil
// error means the dataset does not exist.
type Fetcher interface {
	CircuitSummary(ctx context.Context, circuit string) ([]model.ReferencePoint, error)
	DriverLaps(ctx context.Context, circuit string) ([]model.LapRecord, error)
	ConstructorLaps(ctx context.Context, circuit string) ([]model.LapRecord, error)
}

// Loader owns the datasets of one dashboard. Every circuit selection starts a
// new generation: the fetches of the previous generation are cancelled and
// whatever they still deliver is discarded.
type Loader struct {
	ctx     context.Context
	fetcher Fetcher
	ps      *pubsub.PubSub[Snapshot]
	logger  *zap.Logger
	id      string

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
	current    Datasets
}

func NewLoader(ctx context.Context, fetcher Fetcher, ps *pubsub.PubSub[Snapshot], logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.NewString()
	return &Loader{
		ctx:     ctx,
		fetcher: fetcher,
		ps:      ps,
		logger:  logger.With(zap.String("dashboard", id)),
		id:      id,
	}
}

func (l *Loader) ID() string {
	return l.id
}

// Topic is where the loader publishes its snapshots.
func (l *Loader) Topic() string {
	return "dashboard:" + l.id
}

// Select loads circuit unless it is already the current one. It returns the
// generation serving the circuit.
func (l *Loader) Select(circuit string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.generation > 0 && l.current.Circuit == circuit {
		return l.generation
	}
	return l.start(circuit)
}

// Reload fetches the current circuit again. It returns 0 when nothing was
// selected yet.
func (l *Loader) Reload() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.generation == 0 {
		return 0
	}
	return l.start(l.current.Circuit)
}

func (l *Loader) Current() Datasets {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Wait blocks until every stream of the latest generation settled. A
// selection made while waiting extends the wait to the new generation.
func (l *Loader) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		done, gen := l.done, l.generation
		l.mu.Unlock()
		if done == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
		}

		l.mu.Lock()
		latest := l.generation == gen
		l.mu.Unlock()
		if latest {
			return nil
		}
	}
}

// Close cancels any running fetch and waits for it to return.
func (l *Loader) Close() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel = nil
	l.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// start must be called with l.mu held.
func (l *Loader) start(circuit string) uint64 {
	if l.cancel != nil {
		l.cancel()
	}
	l.generation++
	gen := l.generation

	ctx, cancel := context.WithCancel(l.ctx)
	done := make(chan struct{})
	l.cancel, l.done = cancel, done
	l.current = Datasets{
		Circuit:      circuit,
		Generation:   gen,
		Summary:      loading[[]model.ReferencePoint](),
		Drivers:      loading[[]model.LapRecord](),
		Constructors: loading[[]model.LapRecord](),
	}
	l.logger.Debug("loading circuit", zap.String("circuit", circuit), zap.Uint64("generation", gen))

	go l.run(ctx, gen, circuit, done)
	return gen
}

func (l *Loader) run(ctx context.Context, gen uint64, circuit string, done chan struct{}) {
	defer close(done)

	// streams settle independently, a failing one never cancels the others
	var g errgroup.Group
	g.Go(func() error {
		refs, err := l.fetcher.CircuitSummary(ctx, circuit)
		l.apply(ctx, gen, StreamSummary, err, func(d *Datasets) {
			d.Summary = settle(refs, len(refs), err)
		})
		return nil
	})
	g.Go(func() error {
		records, err := l.fetcher.DriverLaps(ctx, circuit)
		l.apply(ctx, gen, StreamDrivers, err, func(d *Datasets) {
			d.Drivers = settle(records, len(records), err)
		})
		return nil
	})
	g.Go(func() error {
		records, err := l.fetcher.ConstructorLaps(ctx, circuit)
		l.apply(ctx, gen, StreamConstructors, err, func(d *Datasets) {
			d.Constructors = settle(records, len(records), err)
		})
		return nil
	})
	_ = g.Wait()
}

func (l *Loader) apply(ctx context.Context, gen uint64, stream string, err error, update func(*Datasets)) {
	l.mu.Lock()
	if gen != l.generation || ctx.Err() != nil {
		l.mu.Unlock()
		l.logger.Debug("discarding stale result", zap.String("stream", stream), zap.Uint64("generation", gen))
		return
	}
	update(&l.current)
	snap := Snapshot{Stream: stream, Datasets: l.current}
	// published under the lock so subscribers see generations in order
	dropped := 0
	if l.ps != nil {
		dropped = l.ps.Publish(l.Topic(), snap)
	}
	l.mu.Unlock()

	if err != nil {
		l.logger.Warn("fetch failed", zap.String("stream", stream), zap.String("circuit", snap.Datasets.Circuit), zap.Error(err))
	}
	if dropped > 0 {
		l.logger.Debug("snapshot dropped by slow subscribers", zap.Int("dropped", dropped))
	}
}
