package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/robinvdvleuten/simledger/formatter"
	"github.com/robinvdvleuten/simledger/output"
)

// debounceDelay absorbs editors writing a file in multiple steps.
const debounceDelay = 100 * time.Millisecond

type WatchCmd struct {
	File   string `help:"Transaction CSV filename." arg:"" type:"existingfile"`
	Format string `help:"Summary format (${enum})." enum:"csv,table" default:"table" short:"F"`
	Shards int    `help:"Number of concurrent shards accounts are spread over." default:"1"`
}

func (cmd *WatchCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := globals.logger(ctx.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	format, err := formatter.ParseFormat(cmd.Format)
	if err != nil {
		return err
	}

	// fsnotify reports events under the watched directory's path, so the
	// file is compared and loaded by its absolute name.
	filename := (&FileOrStdin{Filename: cmd.File}).GetAbsoluteFilename()
	file := &FileOrStdin{Filename: filename}
	r := &replayer{logger: logger, shards: cmd.Shards}
	f := formatter.New(formatter.WithFormat(format), formatter.WithStyles(output.NewStyles(ctx.Stdout)))

	run := func() {
		replayCtx, reportTelemetry := globals.startTelemetry(runCtx, ctx, fmt.Sprintf("replay %s", filepath.Base(filename)))
		defer reportTelemetry()

		result, err := r.replay(replayCtx, file)
		if err != nil {
			printError(ctx.Stderr, err.Error())
			return
		}
		if err := f.Write(replayCtx, result.Snapshots, ctx.Stdout); err != nil {
			printError(ctx.Stderr, err.Error())
			return
		}
		if len(result.Malformed) > 0 {
			printWarning(ctx.Stderr, fmt.Sprintf("%d malformed row(s) skipped", len(result.Malformed)))
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory so atomic saves (write to temp, rename) are seen.
	if err := watcher.Add(filepath.Dir(filename)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filename, err)
	}

	run()
	printInfof(ctx.Stderr, "Watching %s for changes (press Ctrl+C to stop)", pathStyle.Render(filename))

	runWatcher(runCtx, watcher, filename, logger, func() {
		_, _ = fmt.Fprintln(ctx.Stdout)
		printInfof(ctx.Stderr, "%s changed, replaying", pathStyle.Render(filepath.Base(filename)))
		run()
	})

	return nil
}

// runWatcher calls onChange, debounced, whenever filename is written,
// created or replaced. It closes watcher and returns when ctx is done.
// onChange is never called concurrently with itself.
func runWatcher(ctx context.Context, watcher *fsnotify.Watcher, filename string, logger *zap.Logger, onChange func()) {
	var debounceTimer *time.Timer
	changes := make(chan struct{}, 1)

	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		_ = watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case <-changes:
			onChange()

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				select {
				case changes <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("file watcher error", zap.Error(err))
		}
	}
}
