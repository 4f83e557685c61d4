package ledger

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// ErrShardedClosed is returned by Submit after Wait has been called.
var ErrShardedClosed = errors.New("sharded ledger is closed")

// defaultShardBuffer is the number of transactions queued per shard.
const defaultShardBuffer = 256

// ResultHandler receives the result of every executed transaction.
// It is called from shard goroutines and must be safe for concurrent use.
type ResultHandler func(tx Transaction, outcome Outcome, err error)

// Sharded executes transactions concurrently by partitioning accounts over
// a fixed number of shards. Each shard owns a private Ledger and is drained
// by a single goroutine, so every account has exactly one writer and the
// transactions of a client are applied in the order they were submitted.
// Transactions never span clients, so shards share no state.
type Sharded struct {
	shards   []*shard
	group    *errgroup.Group
	ctx      context.Context
	handler  ResultHandler
	buffer   int
	opts     []Option
	mu       sync.RWMutex
	closed   bool
	waitOnce sync.Once
	waitErr  error
}

type shard struct {
	ledger *Ledger
	input  chan Transaction
}

// ShardedOption configures a Sharded ledger.
type ShardedOption func(*Sharded)

// WithResultHandler registers a handler for transaction results.
func WithResultHandler(handler ResultHandler) ShardedOption {
	return func(s *Sharded) {
		s.handler = handler
	}
}

// WithShardBuffer sets the queue length of each shard.
func WithShardBuffer(n int) ShardedOption {
	return func(s *Sharded) {
		if n > 0 {
			s.buffer = n
		}
	}
}

// WithLedgerOptions passes options to the ledger of every shard.
func WithLedgerOptions(opts ...Option) ShardedOption {
	return func(s *Sharded) {
		s.opts = append(s.opts, opts...)
	}
}

// NewSharded starts n shard workers. n below one is treated as one.
// Workers stop when ctx is cancelled or when Wait is called.
func NewSharded(ctx context.Context, n int, opts ...ShardedOption) *Sharded {
	if n < 1 {
		n = 1
	}

	s := &Sharded{buffer: defaultShardBuffer}
	for _, opt := range opts {
		opt(s)
	}

	s.group, s.ctx = errgroup.WithContext(ctx)
	s.shards = make([]*shard, n)
	for i := range s.shards {
		sh := &shard{
			ledger: New(s.opts...),
			input:  make(chan Transaction, s.buffer),
		}
		s.shards[i] = sh
		s.group.Go(func() error {
			return s.run(sh)
		})
	}

	return s
}

func (s *Sharded) run(sh *shard) error {
	for {
		if err := s.ctx.Err(); err != nil {
			return err
		}

		select {
		case <-s.ctx.Done():
			return s.ctx.Err()
		case tx, ok := <-sh.input:
			if !ok {
				return nil
			}
			outcome, err := sh.ledger.Execute(tx)
			if s.handler != nil {
				s.handler(tx, outcome, err)
			}
		}
	}
}

// Shards returns the number of shards.
func (s *Sharded) Shards() int {
	return len(s.shards)
}

// Submit queues tx on the shard owning its client. It blocks while the
// shard queue is full.
func (s *Sharded) Submit(ctx context.Context, tx Transaction) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrShardedClosed
	}

	sh := s.shards[int(tx.ClientID)%len(s.shards)]

	select {
	case sh.input <- tx:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}

// Wait stops accepting transactions, waits for every queued transaction to
// be executed and returns the first worker error, if any. It is safe to
// call Wait more than once.
func (s *Sharded) Wait() error {
	s.waitOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		for _, sh := range s.shards {
			close(sh.input)
		}
		s.mu.Unlock()

		s.waitErr = s.group.Wait()
	})
	return s.waitErr
}

// Snapshots returns the snapshot of every account ordered by client id.
// Call it after Wait.
func (s *Sharded) Snapshots() []Snapshot {
	var snapshots []Snapshot
	for _, sh := range s.shards {
		snapshots = append(snapshots, sh.ledger.Snapshots()...)
	}
	slices.SortFunc(snapshots, func(a, b Snapshot) int {
		return int(a.ClientID) - int(b.ClientID)
	})
	return snapshots
}

// Stats returns the combined statistics of all shards. Call it after Wait.
func (s *Sharded) Stats() Stats {
	stats := newStats()
	for _, sh := range s.shards {
		stats.Merge(sh.ledger.Stats())
	}
	return stats
}
