package services

import (
	"context"
	"testing"
	"time"
)

func TestCacheSweeper_SweepBothLayers(t *testing.T) {
	store, _, clock := newTestStore(t)
	ctx := context.Background()

	front := NewMemoryCache(time.Hour)
	memClock := &testClock{t: time.Now()}
	front.now = memClock.now

	store.Upsert(ctx, "Hedgehog", "en", "es", "Erizo")
	front.Set(ctx, "k1", CachedTranslation{TranslatedText: "Erizo"})

	clock.advance(31 * 24 * time.Hour)
	memClock.advance(2 * time.Hour)

	sweeper := NewCacheSweeper(store, front, 0, 0)
	if sweeper.memoryInterval != time.Hour || sweeper.storeInterval != 24*time.Hour {
		t.Errorf("default intervals = %s / %s", sweeper.memoryInterval, sweeper.storeInterval)
	}

	if removed := sweeper.SweepMemory(ctx); removed != 1 {
		t.Errorf("SweepMemory removed %d, want 1", removed)
	}
	removed, err := sweeper.SweepStore(ctx)
	if err != nil || removed != 1 {
		t.Errorf("SweepStore = (%d, %v), want (1, nil)", removed, err)
	}

	status := sweeper.GetStatus()
	if status.MemoryRemoved != 1 || status.StoreRemoved != 1 {
		t.Errorf("status = %+v", status)
	}
	if status.LastStoreSweep.IsZero() || status.LastMemorySweep.IsZero() {
		t.Error("expected sweep times to be recorded")
	}
	if !status.NextStoreSweep.Equal(status.LastStoreSweep.Add(24 * time.Hour)) {
		t.Errorf("next sweep = %s", status.NextStoreSweep)
	}
}

func TestCacheSweeper_StoreErrorRecorded(t *testing.T) {
	store, db, _ := newTestStore(t)
	sqlDB, _ := db.DB()
	sqlDB.Close()

	sweeper := NewCacheSweeper(store, nil, 0, 0)
	if _, err := sweeper.SweepStore(context.Background()); err == nil {
		t.Fatal("expected error from closed database")
	}
	if sweeper.GetStatus().LastStoreError == "" {
		t.Error("expected last error in status")
	}
	// No front cache configured
	if sweeper.SweepMemory(context.Background()) != 0 {
		t.Error("SweepMemory without front cache should remove nothing")
	}
}

func TestCacheSweeper_StartRunsInitialSweepAndStops(t *testing.T) {
	store, _, clock := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	store.Upsert(ctx, "Kestrel", "en", "fr", "Faucon crécerelle")
	clock.advance(31 * 24 * time.Hour)

	front := NewMemoryCache(time.Hour)
	sweeper := NewCacheSweeper(store, front, 10*time.Millisecond, time.Hour)

	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		st := sweeper.GetStatus()
		if st.StoreRemoved == 1 && !st.LastMemorySweep.IsZero() {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("sweeper did not run: %+v", st)
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop on cancel")
	}
}
