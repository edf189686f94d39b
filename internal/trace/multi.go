package trace

import "errors"

// MultiTracer fans out records to multiple tracers.
type MultiTracer struct {
	tracers []Tracer
	level   Level
}

// NewMultiTracer creates a new MultiTracer that emits to all provided tracers.
// Nil tracers are skipped.
func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	kept := make([]Tracer, 0, len(tracers))
	for _, tr := range tracers {
		if tr != nil {
			kept = append(kept, tr)
		}
	}
	return &MultiTracer{
		tracers: kept,
		level:   level,
	}
}

// MaxLevel returns the highest level among tracers.
func MaxLevel(tracers ...Tracer) Level {
	lvl := LevelOff
	for _, tr := range tracers {
		if tr != nil && tr.Level() > lvl {
			lvl = tr.Level()
		}
	}
	return lvl
}

// Emit sends the record to all underlying tracers.
func (t *MultiTracer) Emit(rec *Record) {
	for _, tr := range t.tracers {
		tr.Emit(rec)
	}
}

// Flush flushes every tracer, even after one fails.
func (t *MultiTracer) Flush() error {
	errs := make([]error, 0, len(t.tracers))
	for _, tr := range t.tracers {
		errs = append(errs, tr.Flush())
	}
	return errors.Join(errs...)
}

// Close closes every tracer, even after one fails.
func (t *MultiTracer) Close() error {
	errs := make([]error, 0, len(t.tracers))
	for _, tr := range t.tracers {
		errs = append(errs, tr.Close())
	}
	return errors.Join(errs...)
}

// Level returns the configured level.
func (t *MultiTracer) Level() Level { return t.level }

// Enabled returns true if tracing is active.
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }
