// Package trace records which formatting rule was selected for every node.
//
// Each printer run owns a Collector that is reset when the run starts, so
// documents formatted in parallel never share trace state. Additional sinks
// can be attached to a printer:
//
//   - StreamTracer: immediate write as text or NDJSON (file/stderr)
//   - RingTracer: bounded in-memory tail for dumps after a batch
//   - MultiTracer: fan-out
//   - Nop: zero-overhead no-op tracer
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelRules: rule name, category and nesting depth
//   - LevelDebug: plus a children-elided snapshot of the node
//
// Tracing never influences which rule is chosen.
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
package trace
