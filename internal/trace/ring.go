package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the last N records in memory (circular buffer).
// Shared between runs it gives the tail of a batch for post-mortem dumps.
type RingTracer struct {
	mu       sync.RWMutex
	records  []Record
	capacity int
	head     int  // next write position
	full     bool // has wrapped around
	level    Level
}

// NewRingTracer creates a new RingTracer with specified capacity.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{
		records:  make([]Record, capacity),
		capacity: capacity,
		level:    level,
	}
}

// Emit adds a record to the ring buffer.
func (t *RingTracer) Emit(rec *Record) {
	if t.level == LevelOff {
		return
	}
	stored := *t.level.strip(rec)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.records[t.head] = stored
	t.head = (t.head + 1) % t.capacity
	if t.head == 0 {
		t.full = true
	}
}

// Snapshot returns a copy of all stored records in chronological order.
func (t *RingTracer) Snapshot() []Record {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.full {
		result := make([]Record, t.head)
		copy(result, t.records[:t.head])
		return result
	}

	// wrapped: [head:capacity] + [0:head]
	result := make([]Record, t.capacity)
	copy(result, t.records[t.head:])
	copy(result[t.capacity-t.head:], t.records[:t.head])
	return result
}

// Dump writes all records to w in the given format.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, rec := range t.Snapshot() {
		if _, err := w.Write(FormatRecord(&rec, format)); err != nil {
			return err
		}
	}
	return nil
}

// Flush is a no-op for RingTracer since everything is in memory.
func (t *RingTracer) Flush() error { return nil }

// Close is a no-op for RingTracer.
func (t *RingTracer) Close() error { return nil }

// Level returns the current tracing level.
func (t *RingTracer) Level() Level { return t.level }

// Enabled returns true if tracing is active.
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
