// Package trace provides the tracing subsystem of the formatter.
//
// Tracing records where a run spends its time and what it tolerated on the
// way (unbalanced brackets, cache hits). It is off by default and costs a
// nil check when disabled.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	swimat fmt --trace=- --trace-level=detail Sources/
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Driver outcome only
//   - LevelPhase: Driver and pass boundaries
//   - LevelDetail: Per-file events
//   - LevelDebug: Everything
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeFile, "format", trace.CurrentSpan(ctx).SpanID)
//	defer span.End("")
package trace
