// Package market keeps the local price store in sync with the
// Disdagkopukm upstream.
package market

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ecoscope-id/ecoscope/internal/store"
	"github.com/ecoscope-id/ecoscope/pkg/models"
	"github.com/ecoscope-id/ecoscope/pkg/utils"
)

// PriceSource is the upstream surface the syncer pulls from.
type PriceSource interface {
	FetchAll(ctx context.Context) ([]models.CommodityRecord, error)
}

// SyncResult reports one sync run.
type SyncResult struct {
	Fetched  int       `json:"fetched"`
	Saved    int       `json:"saved"`
	RunAt    time.Time `json:"run_at"`
	Duration string    `json:"duration"`
}

// Syncer pulls prices from the upstream and persists them.
type Syncer struct {
	source   PriceSource
	store    *store.Store
	location string
}

// NewSyncer creates a syncer writing to the given market location
// (defaulted when empty).
func NewSyncer(source PriceSource, st *store.Store, location string) *Syncer {
	return &Syncer{source: source, store: st, location: location}
}

// SyncOnce fetches, normalizes and persists the current price list.
func (s *Syncer) SyncOnce(ctx context.Context) (*SyncResult, error) {
	start := utils.NowWIB()

	records, err := s.source.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync: fetch: %w", err)
	}

	saved, err := s.store.SavePrices(ctx, records, s.location)
	if err != nil {
		return nil, fmt.Errorf("sync: save: %w", err)
	}

	return &SyncResult{
		Fetched:  len(records),
		Saved:    saved,
		RunAt:    start,
		Duration: time.Since(start).Round(time.Millisecond).String(),
	}, nil
}

// Scheduler runs the syncer on a fixed interval. The first run fires
// immediately on Start.
type Scheduler struct {
	syncer   *Syncer
	interval time.Duration

	mu      sync.Mutex
	running bool
	nextRun time.Time
	last    *SyncResult
	lastErr error
	cancel  context.CancelFunc
	done    chan struct{}
}

// SchedulerStatus is the snapshot reported by the status endpoint.
type SchedulerStatus struct {
	Running   bool        `json:"running"`
	Interval  string      `json:"interval"`
	NextRun   time.Time   `json:"next_run,omitempty"`
	LastSync  *SyncResult `json:"last_sync,omitempty"`
	LastError string      `json:"last_error,omitempty"`
}

// NewScheduler creates a scheduler; interval defaults to one hour.
func NewScheduler(syncer *Syncer, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{syncer: syncer, interval: interval}
}

// Start launches the sync loop. It is a no-op when already running. The
// loop stops when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.done = make(chan struct{})
	s.nextRun = utils.NowWIB()
	s.mu.Unlock()

	go s.loop(ctx)
}

// Stop cancels the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
}

// Status reports the current scheduler state.
func (s *Scheduler) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := SchedulerStatus{
		Running:  s.running,
		Interval: s.interval.String(),
		LastSync: s.last,
	}
	if s.running {
		st.NextRun = s.nextRun
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

func (s *Scheduler) loop(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.running = false
		close(s.done)
		s.mu.Unlock()
	}()

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	result, err := s.syncer.SyncOnce(ctx)

	s.mu.Lock()
	s.nextRun = utils.NowWIB().Add(s.interval)
	s.lastErr = err
	if result != nil {
		s.last = result
	}
	s.mu.Unlock()

	if err != nil {
		if ctx.Err() == nil {
			log.Printf("market sync failed: %v", err)
		}
		return
	}
	log.Printf("market sync: fetched %d, saved %d in %s",
		result.Fetched, result.Saved, result.Duration)
}
