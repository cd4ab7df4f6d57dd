package detection

import "sync"

// DefaultWindowSize is the number of recent volumes averaged per symbol.
const DefaultWindowSize = 5

// Baseline is the volume reference a record is compared against. Samples is
// the number of prior observations in the window; zero means no history.
type Baseline struct {
	Average float64 `json:"average"`
	Samples int     `json:"samples"`
}

type window struct {
	vols []int64
	sum  int64
}

// Tracker keeps a FIFO window of recent volumes for every symbol it has seen.
type Tracker struct {
	mu      sync.RWMutex
	size    int
	windows map[string]*window
}

func NewTracker(size int) *Tracker {
	if size < 1 {
		size = DefaultWindowSize
	}
	return &Tracker{size: size, windows: make(map[string]*window)}
}

// Size returns the window capacity.
func (t *Tracker) Size() int { return t.size }

// Observe returns the baseline before volume is incorporated, then appends
// volume and evicts the oldest entry once the window exceeds capacity.
// An unseen symbol yields its own volume as the average.
func (t *Tracker) Observe(symbol string, volume int64) Baseline {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, ok := t.windows[symbol]
	if !ok {
		w = &window{vols: make([]int64, 0, t.size+1)}
		t.windows[symbol] = w
	}

	b := w.baseline(volume)

	w.vols = append(w.vols, volume)
	w.sum += volume
	if len(w.vols) > t.size {
		w.sum -= w.vols[0]
		w.vols = append(w.vols[:0], w.vols[1:]...)
	}
	return b
}

// Snapshot returns the current baseline and a copy of the window, oldest first.
func (t *Tracker) Snapshot(symbol string) (Baseline, []int64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	w, ok := t.windows[symbol]
	if !ok {
		return Baseline{}, nil, false
	}
	vols := make([]int64, len(w.vols))
	copy(vols, w.vols)
	return w.baseline(0), vols, true
}

func (w *window) baseline(fallback int64) Baseline {
	if len(w.vols) == 0 {
		return Baseline{Average: float64(fallback)}
	}
	return Baseline{
		Average: float64(w.sum) / float64(len(w.vols)),
		Samples: len(w.vols),
	}
}
