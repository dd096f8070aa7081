package result

import "sync"

// Aggregator accumulates records across the whole pass. Units may run
// concurrently, so appends are serialized; each unit only ever adds its
// own records, nothing is shared or mutated after the add.
type Aggregator struct {
	mu      sync.Mutex
	records []Record
}

func (a *Aggregator) Add(records ...Record) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, records...)
}

// Records returns a copy of everything accumulated so far, in insertion
// order.
func (a *Aggregator) Records() []Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Record, len(a.records))
	copy(out, a.records)
	return out
}

func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}
