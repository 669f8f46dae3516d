package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/bubelovv/sprint-planner/internal/domain"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"
)

// Persister saves committed snapshots through a Gateway in the background.
// Bursts of commits inside the debounce window collapse into a single save of
// the latest snapshot, and snapshots identical to the last saved one are not
// written again. Save failures are logged and counted, never retried.
type Persister struct {
	gateway  Gateway
	logger   *zap.Logger
	debounce time.Duration

	saveMu sync.Mutex

	mu         sync.Mutex
	latest     *domain.State
	inFlight   bool
	lastDigest [32]byte
	hasDigest  bool
	saves      int
	skipped    int
	failures   int

	wake      chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func NewPersister(gateway Gateway, logger *zap.Logger, debounce time.Duration) *Persister {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce < 0 {
		debounce = 0
	}
	p := &Persister{
		gateway:  gateway,
		logger:   logger,
		debounce: debounce,
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

// Prime records state as already saved, typically the hydrated snapshot.
func (p *Persister) Prime(state domain.State) {
	digest, err := snapshotDigest(state)
	if err != nil {
		p.logger.Warn("persister prime: digest failed", zap.Error(err))
		return
	}
	p.mu.Lock()
	p.lastDigest = digest
	p.hasDigest = true
	p.mu.Unlock()
}

// Enqueue schedules state for saving. It never blocks on I/O and is meant to
// be registered with Store.Subscribe.
func (p *Persister) Enqueue(state domain.State) {
	p.mu.Lock()
	p.latest = &state
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Pending reports whether a snapshot is waiting to be saved or being saved.
func (p *Persister) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest != nil || p.inFlight
}

// Saves is the number of snapshots written successfully.
func (p *Persister) Saves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}

// Skipped is the number of snapshots not written because nothing changed.
func (p *Persister) Skipped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.skipped
}

func (p *Persister) Failures() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failures
}

// Flush saves the pending snapshot now, if any, and returns the save error.
func (p *Persister) Flush(ctx context.Context) error {
	return p.flush(ctx)
}

// Close stops the background loop and flushes whatever is still pending.
func (p *Persister) Close(ctx context.Context) error {
	p.closeOnce.Do(func() {
		close(p.stop)
	})
	<-p.done
	return p.flush(ctx)
}

func (p *Persister) run() {
	defer close(p.done)

	timer := time.NewTimer(p.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-p.wake:
			timer.Reset(p.debounce)
		case <-timer.C:
			_ = p.flush(context.Background())
		case <-p.stop:
			return
		}
	}
}

func (p *Persister) flush(ctx context.Context) error {
	p.saveMu.Lock()
	defer p.saveMu.Unlock()

	p.mu.Lock()
	latest := p.latest
	p.latest = nil
	if latest == nil {
		p.mu.Unlock()
		return nil
	}
	p.inFlight = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inFlight = false
		p.mu.Unlock()
	}()

	digest, err := snapshotDigest(*latest)
	if err != nil {
		p.recordFailure(err)
		return err
	}

	p.mu.Lock()
	unchanged := p.hasDigest && digest == p.lastDigest
	if unchanged {
		p.skipped++
	}
	p.mu.Unlock()
	if unchanged {
		p.logger.Debug("snapshot unchanged, save skipped")
		return nil
	}

	if err := p.gateway.SaveAll(ctx, *latest); err != nil {
		p.recordFailure(err)
		return err
	}

	p.mu.Lock()
	p.lastDigest = digest
	p.hasDigest = true
	p.saves++
	p.mu.Unlock()

	p.logger.Debug("snapshot saved",
		zap.Int("releases", len(latest.Releases)),
		zap.Int("sprints", len(latest.Sprints)),
	)
	return nil
}

func (p *Persister) recordFailure(err error) {
	p.mu.Lock()
	p.failures++
	p.mu.Unlock()
	p.logger.Error("failed to persist snapshot", zap.Error(err))
}

func snapshotDigest(state domain.State) ([32]byte, error) {
	state.Normalize()
	data, err := json.Marshal(state)
	if err != nil {
		return [32]byte{}, fmt.Errorf("encode snapshot: %w", err)
	}
	return blake3.Sum256(data), nil
}
