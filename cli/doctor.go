package cli

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/robinvdvleuten/simledger/loader"
)

// DoctorCmd provides doctor utilities for debugging transaction files.
type DoctorCmd struct {
	Decode DecodeCmd `cmd:"" help:"Show the transactions decoded from a transaction file."`
}

// DecodeCmd shows the decoded transactions of a transaction file.
type DecodeCmd struct {
	File FileOrStdin `help:"Transaction CSV filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

// Run executes the decode command.
func (cmd *DecodeCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	content, err := cmd.File.GetSourceContent()
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	renderer := NewErrorRenderer(content)

	ldr := loader.New(loader.WithErrorHandler(func(err error) {
		_, _ = fmt.Fprintln(ctx.Stderr, renderer.Render(err))
	}))

	// Format: line  transaction
	_, err = cmd.File.Load(context.Background(), ldr, func(_ context.Context, rec loader.Record) error {
		_, err := fmt.Fprintf(ctx.Stdout, "%-6d %s\n", rec.Pos.Line, repr.String(rec.Tx))
		return err
	})
	return err
}
