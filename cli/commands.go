package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/robinvdvleuten/simledger/output"
	"github.com/robinvdvleuten/simledger/telemetry"
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool   `help:"Show timing telemetry for operations." env:"SIMLEDGER_TELEMETRY"`
	LogLevel  string `help:"Log level for diagnostics on stderr (${enum})." enum:"debug,info,warn,error" default:"warn" env:"SIMLEDGER_LOG_LEVEL"`
}

type Commands struct {
	Globals

	Process ProcessCmd `cmd:"" default:"withargs" help:"Replay a transaction file and print the account summary."`
	Check   CheckCmd   `cmd:"" help:"Replay a transaction file and report malformed rows and rejected transactions."`
	Watch   WatchCmd   `cmd:"" help:"Replay a transaction file again whenever it changes."`
	Doctor  DoctorCmd  `cmd:"" help:"Doctor utilities for debugging transaction files."`
}

// logger builds the diagnostics logger for a command.
func (g *Globals) logger(w io.Writer) (*zap.Logger, error) {
	level := g.LogLevel
	if level == "" {
		level = "warn"
	}
	return newLogger(level, w)
}

// startTelemetry attaches a timing collector to ctx when telemetry is
// enabled and starts the root timer. The returned function ends the root
// timer and writes the report to stderr; it is safe to call more than once.
func (g *Globals) startTelemetry(ctx context.Context, kctx *kong.Context, name string) (context.Context, func()) {
	if !g.Telemetry {
		return ctx, func() {}
	}

	collector := telemetry.NewTimingCollector()
	ctx = telemetry.WithCollector(ctx, collector)
	timer := collector.Start(name)

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			timer.End()
			_, _ = fmt.Fprintln(kctx.Stderr)
			collector.Report(kctx.Stderr, output.NewStyles(kctx.Stderr))
		})
	}
}
