package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/simledger/formatter"
	"github.com/robinvdvleuten/simledger/output"
)

type ProcessCmd struct {
	File   FileOrStdin `help:"Transaction CSV filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Format string      `help:"Summary format (${enum})." enum:"csv,table" default:"csv" short:"F"`
	Output string      `help:"Write the summary to a file instead of stdout." short:"o" type:"path"`
	Force  bool        `help:"Overwrite the output file without asking." short:"f"`
	Shards int         `help:"Number of concurrent shards accounts are spread over." default:"1"`
}

func (cmd *ProcessCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	runCtx, reportTelemetry := globals.startTelemetry(context.Background(), ctx,
		fmt.Sprintf("process %s", filepath.Base(cmd.File.Filename)))
	defer reportTelemetry()

	logger, err := globals.logger(ctx.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	format, err := formatter.ParseFormat(cmd.Format)
	if err != nil {
		return err
	}

	if cmd.Output != "" {
		if err := cmd.confirmOverwrite(); err != nil {
			return err
		}
	}

	r := &replayer{logger: logger, shards: cmd.Shards}
	result, err := r.replay(runCtx, &cmd.File)
	if err != nil {
		return err
	}

	opts := []formatter.Option{formatter.WithFormat(format)}
	if format == formatter.FormatTable && cmd.Output == "" {
		opts = append(opts, formatter.WithStyles(output.NewStyles(ctx.Stdout)))
	}
	f := formatter.New(opts...)

	if cmd.Output == "" {
		err = f.Write(runCtx, result.Snapshots, ctx.Stdout)
	} else {
		err = cmd.writeOutput(func(w io.Writer) error {
			return f.Write(runCtx, result.Snapshots, w)
		})
	}
	if err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if len(result.Malformed) > 0 {
		printWarning(ctx.Stderr, fmt.Sprintf("%d malformed row(s) skipped, output may be incomplete", len(result.Malformed)))
	}

	if cmd.Output != "" {
		printSuccess(ctx.Stderr, fmt.Sprintf("Wrote %d account(s) to %s", len(result.Snapshots), pathStyle.Render(cmd.Output)))
	}

	return nil
}

// confirmOverwrite asks before an existing output file is replaced, unless
// --force is set.
func (cmd *ProcessCmd) confirmOverwrite() error {
	if _, err := os.Stat(cmd.Output); err != nil || cmd.Force {
		return nil
	}

	confirmed, err := promptYesNo(fmt.Sprintf("File %q already exists. Overwrite it?", cmd.Output))
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}
	if !confirmed {
		return fmt.Errorf("output file already exists: %s (use --force to overwrite)", cmd.Output)
	}
	return nil
}

// writeOutput writes the summary to a temporary file next to the output file
// and renames it into place, so a failed run leaves an existing file intact.
func (cmd *ProcessCmd) writeOutput(write func(w io.Writer) error) error {
	dir := filepath.Dir(cmd.Output)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(cmd.Output)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	_ = tmp.Chmod(0644)

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), cmd.Output)
}
