// Package ledger implements the account engine behind simledger: a
// deterministic replay of deposits, withdrawals, disputes, resolves and
// chargebacks over a set of client accounts.
//
// Every client has a single account, created on the first transaction that
// references it. Balance-flow transactions (deposit, withdrawal) move funds
// and are recorded in the account's book; administrative transactions
// (dispute, resolve, chargeback) reference a recorded deposit by id and move
// it through its lifecycle:
//
//	active --dispute--> disputed --resolve--> active
//	                    disputed --chargeback--> charged back (account locked)
//
// Money is represented as fixed-point Amount values with four decimal places;
// no floating point is used.
//
// Example usage:
//
//	l := ledger.New()
//	_, _ = l.Execute(ledger.Transaction{ID: 1, ClientID: 1, Tag: ledger.DepositTag(15000)})
//	_, _ = l.Execute(ledger.Transaction{ID: 2, ClientID: 1, Tag: ledger.WithdrawalTag(10000)})
//	for _, s := range l.Snapshots() {
//	    fmt.Println(s.ClientID, s.Available, s.Held, s.Total, s.Locked)
//	}
//
// Rejected transactions are returned as *ExecutionError values wrapping one
// of the Err* sentinels; they never abort a replay.
package ledger

import (
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// Ledger owns every account, keyed by client id, and routes each
// transaction to the account it addresses. A Ledger is not safe for
// concurrent use; see Sharded for a concurrent dispatcher.
type Ledger struct {
	accounts map[uint16]*Account
	stats    Stats
	logger   *zap.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger logs every rejected transaction at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a new empty ledger
func New(opts ...Option) *Ledger {
	l := &Ledger{
		accounts: make(map[uint16]*Account),
		stats:    newStats(),
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Execute applies tx to the account of tx.ClientID, creating the account if
// this is the first transaction for the client.
func (l *Ledger) Execute(tx Transaction) (Outcome, error) {
	account, ok := l.accounts[tx.ClientID]
	if !ok {
		account = NewAccount(tx.ClientID)
		l.accounts[tx.ClientID] = account
	}

	outcome, err := account.Execute(tx)
	l.stats.record(err)

	if err != nil {
		l.logger.Debug("transaction rejected",
			zap.Uint32("tx", tx.ID),
			zap.Uint16("client", tx.ClientID),
			zap.Stringer("type", tx.Tag.Kind),
			zap.String("reason", ErrorKind(err)),
		)
	}

	return outcome, err
}

// Account returns the account of clientID.
func (l *Ledger) Account(clientID uint16) (*Account, bool) {
	acc, ok := l.accounts[clientID]
	return acc, ok
}

// Len returns the number of accounts.
func (l *Ledger) Len() int {
	return len(l.accounts)
}

// Accounts returns all accounts ordered by client id.
func (l *Ledger) Accounts() []*Account {
	accounts := make([]*Account, 0, len(l.accounts))
	for _, acc := range l.accounts {
		accounts = append(accounts, acc)
	}
	slices.SortFunc(accounts, func(a, b *Account) int {
		return int(a.clientID) - int(b.clientID)
	})
	return accounts
}

// Snapshots returns the snapshot of every account ordered by client id.
func (l *Ledger) Snapshots() []Snapshot {
	accounts := l.Accounts()
	snapshots := make([]Snapshot, len(accounts))
	for i, acc := range accounts {
		snapshots[i] = acc.Snapshot()
	}
	return snapshots
}

// Stats returns a copy of the replay statistics.
func (l *Ledger) Stats() Stats {
	return l.stats.clone()
}
