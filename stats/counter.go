package stats

import (
	"sync"
	"sync/atomic"
	"time"
)

type Count struct {
	Current int64
	Total   int64
	Rps     float64
}

// RpsCounter counts processed records and their rate since the first Add.
type RpsCounter struct {
	counter int64
	total   int64
	start   time.Time
	mu      sync.Mutex
}

func NewRpsCounter(total int) *RpsCounter {
	return &RpsCounter{total: int64(total)}
}

func (r *RpsCounter) Add(n int) {
	atomic.AddInt64(&r.counter, int64(n))
	if n > 0 {
		r.mu.Lock()
		if r.start.IsZero() {
			r.start = time.Now()
		}
		r.mu.Unlock()
	}
}

func (r *RpsCounter) Value() int64 {
	return atomic.LoadInt64(&r.counter)
}

func (r *RpsCounter) Rps() float64 {
	r.mu.Lock()
	start := r.start
	r.mu.Unlock()
	if start.IsZero() {
		return 0
	}
	secs := time.Since(start).Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(r.Value()) / secs
}

// Progress returns the processed fraction, or -1 without a total.
func (r *RpsCounter) Progress() float64 {
	if r.total == 0 {
		return -1.0
	}
	return float64(r.Value()) / float64(r.total)
}

func (r *RpsCounter) Count() Count {
	return Count{
		Current: r.Value(),
		Total:   r.total,
		Rps:     r.Rps(),
	}
}
