package detection

import (
	"fmt"
	"sync"
	"testing"
)

func TestTrackerFirstObservationReturnsOwnVolume(t *testing.T) {
	tr := NewTracker(5)
	b := tr.Observe("NABIL", 45000)
	if b.Samples != 0 {
		t.Fatalf("expected no samples, got %d", b.Samples)
	}
	if b.Average != 45000 {
		t.Fatalf("expected own volume as average, got %v", b.Average)
	}
}

func TestTrackerAverageExcludesCurrent(t *testing.T) {
	tr := NewTracker(3)
	cases := []struct {
		vol     int64
		wantAvg float64
		wantN   int
	}{
		{10, 10, 0},
		{20, 10, 1},
		{30, 15, 2},
		{40, 20, 3},
		{50, 30, 3},
	}
	for i, tc := range cases {
		b := tr.Observe("X", tc.vol)
		if b.Average != tc.wantAvg || b.Samples != tc.wantN {
			t.Fatalf("step %d: got %+v want avg=%v samples=%d", i, b, tc.wantAvg, tc.wantN)
		}
	}

	_, vols, ok := tr.Snapshot("X")
	if !ok {
		t.Fatalf("expected snapshot")
	}
	want := []int64{30, 40, 50}
	if fmt.Sprint(vols) != fmt.Sprint(want) {
		t.Fatalf("window %v want %v", vols, want)
	}
}

func TestTrackerZeroVolumeLowersAverage(t *testing.T) {
	tr := NewTracker(2)
	tr.Observe("X", 100)
	tr.Observe("X", 0)
	b := tr.Observe("X", 100)
	if b.Average != 50 {
		t.Fatalf("expected 50, got %v", b.Average)
	}
}

func TestTrackerSymbolsAreIndependent(t *testing.T) {
	tr := NewTracker(5)
	tr.Observe("A", 1000)
	b := tr.Observe("B", 10)
	if b.Samples != 0 || b.Average != 10 {
		t.Fatalf("symbol B saw A's history: %+v", b)
	}
}

func TestTrackerDefaultSize(t *testing.T) {
	if got := NewTracker(0).Size(); got != DefaultWindowSize {
		t.Fatalf("size %d want %d", got, DefaultWindowSize)
	}
}

func TestTrackerSnapshotUnknown(t *testing.T) {
	if _, _, ok := NewTracker(5).Snapshot("NOPE"); ok {
		t.Fatalf("expected no snapshot for unseen symbol")
	}
}

func TestTrackerConcurrentSymbols(t *testing.T) {
	tr := NewTracker(4)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			for v := int64(1); v <= 50; v++ {
				tr.Observe(sym, v)
			}
		}(fmt.Sprintf("S%d", i))
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		b, vols, _ := tr.Snapshot(fmt.Sprintf("S%d", i))
		if len(vols) != 4 || b.Average != 48.5 {
			t.Fatalf("S%d: window %v avg %v", i, vols, b.Average)
		}
	}
}
