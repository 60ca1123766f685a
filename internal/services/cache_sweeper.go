package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/naturespot/naturespot/backend/internal/metrics"
)

const (
	defaultMemorySweepInterval = time.Hour
	defaultStoreSweepInterval  = 24 * time.Hour
)

// CacheSweeper removes expired entries from both cache layers on a schedule.
type CacheSweeper struct {
	store          *TranslationCacheService
	front          FrontCache
	memoryInterval time.Duration
	storeInterval  time.Duration
	mu             sync.RWMutex

	// Stats
	lastMemorySweep time.Time
	lastStoreSweep  time.Time
	memoryRemoved   int64
	storeRemoved    int64
	lastStoreError  string
}

type SweeperStatus struct {
	LastMemorySweep time.Time `json:"last_memory_sweep"`
	LastStoreSweep  time.Time `json:"last_store_sweep"`
	NextStoreSweep  time.Time `json:"next_store_sweep"`
	MemoryRemoved   int64     `json:"memory_removed"`
	StoreRemoved    int64     `json:"store_removed"`
	LastStoreError  string    `json:"last_store_error,omitempty"`
}

// NewCacheSweeper creates a sweeper; zero intervals take the hourly/daily defaults.
// front may be nil.
func NewCacheSweeper(store *TranslationCacheService, front FrontCache, memoryInterval, storeInterval time.Duration) *CacheSweeper {
	if memoryInterval <= 0 {
		memoryInterval = defaultMemorySweepInterval
	}
	if storeInterval <= 0 {
		storeInterval = defaultStoreSweepInterval
	}
	return &CacheSweeper{
		store:          store,
		front:          front,
		memoryInterval: memoryInterval,
		storeInterval:  storeInterval,
	}
}

// Start runs the sweeps until ctx is cancelled. The store is swept once right away.
func (w *CacheSweeper) Start(ctx context.Context) {
	infoLog("Cache sweeper started",
		zap.Duration("memory_interval", w.memoryInterval),
		zap.Duration("store_interval", w.storeInterval))

	if _, err := w.SweepStore(ctx); err != nil {
		warnLog("Initial store sweep failed", zap.Error(err))
	}

	memoryTicker := time.NewTicker(w.memoryInterval)
	defer memoryTicker.Stop()
	storeTicker := time.NewTicker(w.storeInterval)
	defer storeTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			infoLog("Cache sweeper stopping")
			return
		case <-memoryTicker.C:
			w.SweepMemory(ctx)
		case <-storeTicker.C:
			if _, err := w.SweepStore(ctx); err != nil {
				warnLog("Store sweep failed", zap.Error(err))
			}
		}
	}
}

// SweepMemory purges expired front cache entries
func (w *CacheSweeper) SweepMemory(ctx context.Context) int {
	removed := 0
	if w.front != nil {
		removed = w.front.Purge(ctx)
	}

	w.mu.Lock()
	w.memoryRemoved += int64(removed)
	w.lastMemorySweep = time.Now()
	w.mu.Unlock()

	if removed > 0 {
		metrics.CacheSweptTotal.WithLabelValues("memory").Add(float64(removed))
		debugLog("Memory sweep", zap.Int("removed", removed))
	}
	return removed
}

// SweepStore deletes expired persistent rows. It is also what the cache
// DELETE endpoint calls.
func (w *CacheSweeper) SweepStore(ctx context.Context) (int64, error) {
	removed, err := w.store.Sweep(ctx)

	w.mu.Lock()
	w.lastStoreSweep = time.Now()
	if err != nil {
		w.lastStoreError = err.Error()
	} else {
		w.lastStoreError = ""
		w.storeRemoved += removed
	}
	w.mu.Unlock()

	if err != nil {
		return 0, err
	}

	metrics.CacheSweptTotal.WithLabelValues("store").Add(float64(removed))
	infoLog("Store sweep", zap.Int64("removed", removed))

	// Refresh the entry gauges while we are here
	if _, err := w.store.Stats(ctx); err != nil {
		debugLog("Stats refresh after sweep failed", zap.Error(err))
	}
	return removed, nil
}

// GetStatus returns the current status
func (w *CacheSweeper) GetStatus() SweeperStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()

	next := w.lastStoreSweep.Add(w.storeInterval)
	if w.lastStoreSweep.IsZero() {
		next = time.Now()
	}

	return SweeperStatus{
		LastMemorySweep: w.lastMemorySweep,
		LastStoreSweep:  w.lastStoreSweep,
		NextStoreSweep:  next,
		MemoryRemoved:   w.memoryRemoved,
		StoreRemoved:    w.storeRemoved,
		LastStoreError:  w.lastStoreError,
	}
}
