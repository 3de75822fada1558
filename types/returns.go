package types

import (
	"gonum.org/v1/gonum/stat"
)

// ReturnWindow is a bounded FIFO of the most recent episode returns.
// When full, appending evicts the oldest entry.
type ReturnWindow struct {
	values []float64
	next   int
	full   bool
}

func NewReturnWindow(size int) *ReturnWindow {
	if size < 1 {
		size = 1
	}
	return &ReturnWindow{
		values: make([]float64, 0, size),
	}
}

// Append a completed episode return
func (w *ReturnWindow) Append(r float64) {
	if !w.full {
		w.values = append(w.values, r)
		if len(w.values) == cap(w.values) {
			w.full = true
		}
		return
	}
	w.values[w.next] = r
	w.next = (w.next + 1) % len(w.values)
}

func (w *ReturnWindow) Len() int {
	return len(w.values)
}

func (w *ReturnWindow) Cap() int {
	return cap(w.values)
}

// Values returns the returns ordered from the oldest to the newest
func (w *ReturnWindow) Values() []float64 {
	out := make([]float64, 0, len(w.values))
	out = append(out, w.values[w.next:]...)
	out = append(out, w.values[:w.next]...)
	return out
}

// Mean of the window, false if the window is empty
func (w *ReturnWindow) Mean() (float64, bool) {
	if len(w.values) == 0 {
		return 0, false
	}
	return stat.Mean(w.values, nil), true
}
