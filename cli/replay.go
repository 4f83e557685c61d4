package cli

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/robinvdvleuten/simledger/ledger"
	"github.com/robinvdvleuten/simledger/loader"
)

// replayResult is the outcome of replaying one transaction file.
type replayResult struct {
	Snapshots []ledger.Snapshot
	Stats     ledger.Stats
	Load      loader.Stats

	// Malformed holds a *loader.RecordError for every skipped row.
	Malformed []error
	// Rejected holds a *loader.PositionedError for every rejected
	// transaction. It is only filled by sequential replays.
	Rejected []error
}

type replayer struct {
	logger *zap.Logger
	shards int
}

// replay decodes every row of file and executes it. With more than one
// shard, transactions are executed concurrently per client.
func (r *replayer) replay(ctx context.Context, file *FileOrStdin) (*replayResult, error) {
	result := &replayResult{}

	ldr := loader.New(loader.WithErrorHandler(func(err error) {
		result.Malformed = append(result.Malformed, err)
		r.logMalformed(err)
	}))

	if r.shards > 1 {
		return r.replaySharded(ctx, file, ldr, result)
	}

	l := ledger.New(ledger.WithLogger(r.logger))

	stats, err := file.Load(ctx, ldr, func(ctx context.Context, rec loader.Record) error {
		if _, err := l.Execute(rec.Tx); err != nil {
			result.Rejected = append(result.Rejected, loader.WithPosition(rec.Pos, err))
		}
		return nil
	})
	result.Load = stats
	if err != nil {
		return result, err
	}

	result.Snapshots = l.Snapshots()
	result.Stats = l.Stats()

	return result, nil
}

func (r *replayer) replaySharded(ctx context.Context, file *FileOrStdin, ldr *loader.Loader, result *replayResult) (*replayResult, error) {
	s := ledger.NewSharded(ctx, r.shards, ledger.WithLedgerOptions(ledger.WithLogger(r.logger)))

	stats, err := file.Load(ctx, ldr, func(ctx context.Context, rec loader.Record) error {
		return s.Submit(ctx, rec.Tx)
	})
	result.Load = stats

	if waitErr := s.Wait(); err == nil {
		err = waitErr
	}
	if err != nil {
		return result, err
	}

	result.Snapshots = s.Snapshots()
	result.Stats = s.Stats()

	return result, nil
}

func (r *replayer) logMalformed(err error) {
	var recErr *loader.RecordError
	if !errors.As(err, &recErr) {
		r.logger.Warn("skipping row", zap.Error(err))
		return
	}

	fields := []zap.Field{
		zap.Stringer("pos", recErr.Pos),
		zap.Error(recErr.Err),
	}
	if recErr.Field != "" {
		fields = append(fields, zap.String("field", recErr.Field), zap.String("value", recErr.Value))
	}
	r.logger.Warn("skipping malformed row", fields...)
}
