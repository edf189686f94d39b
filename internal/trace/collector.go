package trace

import "sync"

// Collector is the append-only record list owned by a single printer run.
// Reset starts a new run; records of the previous run are discarded.
type Collector struct {
	mu      sync.Mutex
	level   Level
	records []*Record
}

func NewCollector(level Level) *Collector {
	return &Collector{level: level}
}

func (c *Collector) Emit(rec *Record) {
	if c.level == LevelOff {
		return
	}
	rec = c.level.strip(rec)
	c.mu.Lock()
	c.records = append(c.records, rec)
	c.mu.Unlock()
}

// Records returns the records of the current run in emission order.
func (c *Collector) Records() []*Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Record, len(c.records))
	copy(out, c.records)
	return out
}

func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

func (c *Collector) Reset() {
	c.mu.Lock()
	c.records = nil
	c.mu.Unlock()
}

func (c *Collector) Flush() error  { return nil }
func (c *Collector) Close() error  { return nil }
func (c *Collector) Level() Level  { return c.level }
func (c *Collector) Enabled() bool { return c.level > LevelOff }
