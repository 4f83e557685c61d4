// Package telemetry provides hierarchical timing and counters for a replay
// run. Collectors travel through context, so instrumented code never needs
// an extra parameter and pays nothing when telemetry is disabled.
//
// Example usage:
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.StartTimer(ctx, "load transactions.csv")
//	child := timer.Child("decode")
//	// ... work ...
//	child.End()
//	timer.End()
//
//	telemetry.Count(ctx, "rows.skipped", 1)
//
//	collector.Report(os.Stderr, output.NewStyles(os.Stderr))
package telemetry

import (
	"context"
	"io"

	"github.com/robinvdvleuten/simledger/output"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

var collectorKey = contextKey{}

// Collector collects timings and counters.
type Collector interface {
	// Start begins timing an operation. Timers started while another timer
	// is running are nested under it.
	Start(name string) Timer

	// Count adds delta to the named counter.
	Count(name string, delta int)

	// Report writes the collected data to w. styles may be nil.
	Report(w io.Writer, styles *output.Styles)
}

// Timer tracks a single operation's timing.
type Timer interface {
	// End stops the timer.
	End()

	// Child creates a nested timer under this timer.
	Child(name string) Timer
}

// WithCollector adds a collector to a context.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext extracts the collector from context.
// If no collector is present, returns a no-op collector.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}

// StartTimer starts a timer on the collector carried by ctx.
func StartTimer(ctx context.Context, name string) Timer {
	return FromContext(ctx).Start(name)
}

// Count adds delta to a counter on the collector carried by ctx.
func Count(ctx context.Context, name string, delta int) {
	FromContext(ctx).Count(name, delta)
}
