package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
)

type CheckCmd struct {
	File   FileOrStdin `help:"Transaction CSV filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Quiet  bool        `help:"Only print the summary, not every problem." short:"q"`
	Strict bool        `help:"Also fail when transactions are rejected."`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	runCtx, reportTelemetry := globals.startTelemetry(context.Background(), ctx,
		fmt.Sprintf("check %s", filepath.Base(cmd.File.Filename)))
	defer reportTelemetry()

	logger, err := globals.logger(ctx.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	sourceContent, err := cmd.File.GetSourceContent()
	if err != nil {
		return fmt.Errorf("failed to read file for error context: %w", err)
	}

	r := &replayer{logger: logger, shards: 1}
	result, err := r.replay(runCtx, &cmd.File)
	if err != nil {
		return err
	}

	if !cmd.Quiet {
		renderer := NewErrorRenderer(sourceContent)
		problems := append(append([]error{}, result.Malformed...), result.Rejected...)
		if len(problems) > 0 {
			_, _ = fmt.Fprintln(ctx.Stderr, renderer.RenderAll(problems))
			_, _ = fmt.Fprintln(ctx.Stderr)
		}
	}

	printInfof(ctx.Stdout, "%d row(s), %d account(s), %d transaction(s) applied",
		result.Load.Rows, len(result.Snapshots), result.Stats.Applied)

	if rejected := result.Stats.RejectedTotal(); rejected > 0 {
		kinds := make([]string, 0, len(result.Stats.Rejected))
		for _, kind := range result.Stats.Kinds() {
			kinds = append(kinds, fmt.Sprintf("%s: %d", kind, result.Stats.Rejected[kind]))
		}
		printInfof(ctx.Stdout, "%d transaction(s) rejected (%s)", rejected, strings.Join(kinds, ", "))
	}

	if n := len(result.Malformed); n > 0 {
		printError(ctx.Stderr, fmt.Sprintf("%d malformed row(s) found", n))
		return NewCommandError(ExitMalformedRows)
	}

	if n := result.Stats.RejectedTotal(); cmd.Strict && n > 0 {
		printError(ctx.Stderr, fmt.Sprintf("%d transaction(s) rejected", n))
		return NewCommandError(ExitRejectedTransactions)
	}

	printSuccess(ctx.Stdout, "Check passed")

	return nil
}
