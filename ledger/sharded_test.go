package ledger

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestSharded_MatchesSequential(t *testing.T) {
	txs := randomTransactions(rand.New(rand.NewSource(7)), 5000, 40)

	sequential := New()
	executeAll(sequential, txs)

	for _, shards := range []int{1, 3, 8} {
		s := NewSharded(context.Background(), shards, WithShardBuffer(4))
		for _, tx := range txs {
			assert.NoError(t, s.Submit(context.Background(), tx))
		}
		assert.NoError(t, s.Wait())

		assert.Equal(t, shards, s.Shards())
		assert.Equal(t, sequential.Snapshots(), s.Snapshots())
		assert.Equal(t, sequential.Stats(), s.Stats())
	}
}

func TestSharded_ResultHandler(t *testing.T) {
	var (
		mu       sync.Mutex
		outcomes = map[uint16][]Outcome{}
		rejected []Transaction
	)

	s := NewSharded(context.Background(), 2, WithResultHandler(func(tx Transaction, outcome Outcome, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			rejected = append(rejected, tx)
			return
		}
		outcomes[tx.ClientID] = append(outcomes[tx.ClientID], outcome)
	}))

	for _, next := range []Transaction{
		tx(1, 1, DepositTag(100)),
		tx(2, 2, DepositTag(200)),
		tx(3, 1, DepositTag(50)),
		tx(4, 2, WithdrawalTag(500)),
	} {
		assert.NoError(t, s.Submit(context.Background(), next))
	}
	assert.NoError(t, s.Wait())

	// Per-client order is preserved.
	assert.Equal(t, []Outcome{
		{Kind: OutcomeNewAvailableBalance, Available: 100},
		{Kind: OutcomeNewAvailableBalance, Available: 150},
	}, outcomes[1])
	assert.Equal(t, []Transaction{tx(4, 2, WithdrawalTag(500))}, rejected)
}

func TestSharded_SubmitAfterWait(t *testing.T) {
	s := NewSharded(context.Background(), 2)
	assert.NoError(t, s.Wait())
	assert.NoError(t, s.Wait())

	err := s.Submit(context.Background(), tx(1, 1, DepositTag(1)))
	assert.True(t, errors.Is(err, ErrShardedClosed))
}

func TestSharded_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewSharded(ctx, 2)
	cancel()

	err := s.Wait()
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSharded_MinimumOneShard(t *testing.T) {
	s := NewSharded(context.Background(), 0)
	assert.Equal(t, 1, s.Shards())
	assert.NoError(t, s.Submit(context.Background(), tx(1, 9, DepositTag(1))))
	assert.NoError(t, s.Wait())
	assert.Equal(t, []Snapshot{{ClientID: 9, Available: 1, Total: 1}}, s.Snapshots())
}
