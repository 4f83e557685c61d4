package telemetry

import (
	"io"

	"github.com/robinvdvleuten/simledger/output"
)

// noOpCollector is used when no collector is configured.
type noOpCollector struct{}

func (noOpCollector) Start(name string) Timer { return noOpTimer{} }

func (noOpCollector) Count(name string, delta int) {}

func (noOpCollector) Report(w io.Writer, styles *output.Styles) {}

type noOpTimer struct{}

func (noOpTimer) End() {}

func (noOpTimer) Child(name string) Timer { return noOpTimer{} }
