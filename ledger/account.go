package ledger

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// OutcomeKind describes what a successfully executed transaction returned.
type OutcomeKind int

const (
	// OutcomeOK is returned by administrative transactions.
	OutcomeOK OutcomeKind = iota
	// OutcomeNewAvailableBalance is returned by deposits and withdrawals;
	// Outcome.Available holds the balance after the transaction.
	OutcomeNewAvailableBalance
)

// Outcome is the result of a successfully executed transaction.
type Outcome struct {
	Kind      OutcomeKind
	Available Amount
}

// String returns a human-readable representation of the outcome
func (o Outcome) String() string {
	if o.Kind == OutcomeNewAvailableBalance {
		return fmt.Sprintf("available %s", o.Available)
	}
	return "ok"
}

// Account is the state of a single client: its available funds, whether it
// is frozen, and the book of every balance-flow transaction it accepted.
//
// Each book entry is in exactly one lifecycle state (active, disputed or
// charged back). Held and total funds are derived from the book on demand.
// An Account is not safe for concurrent use.
type Account struct {
	clientID  uint16
	locked    bool
	available Amount
	book      map[uint32]*BookEntry
}

// NewAccount creates an empty, unlocked account for clientID.
func NewAccount(clientID uint16) *Account {
	return &Account{
		clientID: clientID,
		book:     make(map[uint32]*BookEntry),
	}
}

// ClientID returns the id of the client owning the account.
func (a *Account) ClientID() uint16 { return a.clientID }

// Locked reports whether the account has been frozen by a chargeback.
// Once locked, an account stays locked.
func (a *Account) Locked() bool { return a.locked }

// Available returns the funds the client may withdraw now.
func (a *Account) Available() Amount { return a.available }

// Held returns the sum of all currently disputed deposits.
func (a *Account) Held() Amount {
	var held Amount
	for _, entry := range a.book {
		if entry.State == EntryDisputed && entry.Tag.IsDeposit() {
			held += entry.Tag.Amount
		}
	}
	return held
}

// Total returns available plus held funds. The validator keeps the sum
// representable.
func (a *Account) Total() Amount {
	return a.available + a.Held()
}

// Entry returns the book entry recorded under id.
func (a *Account) Entry(id uint32) (BookEntry, bool) {
	entry, ok := a.book[id]
	if !ok {
		return BookEntry{}, false
	}
	return *entry, true
}

// EntryIDs returns the ids of all entries in the given state, in ascending order.
func (a *Account) EntryIDs(state EntryState) []uint32 {
	ids := make([]uint32, 0, len(a.book))
	for id, entry := range a.book {
		if entry.State == state {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Execute applies tx to the account. tx.ClientID must match the account;
// routing is the caller's responsibility. A rejected transaction returns an
// *ExecutionError and leaves the account unchanged.
func (a *Account) Execute(tx Transaction) (Outcome, error) {
	v := newValidator(a)

	delta, err := v.validate(tx)
	if err != nil {
		return Outcome{}, newExecutionError(tx, err)
	}

	a.applyDelta(delta)

	return Outcome{Kind: delta.Outcome, Available: a.available}, nil
}

// applyDelta mutates the account. The delta has been validated against the
// current state, so every lookup here succeeds.
func (a *Account) applyDelta(delta *accountDelta) {
	switch delta.Change {
	case changeInsert:
		entry := delta.Entry
		a.book[delta.TxID] = &entry
	case changeTransition:
		a.book[delta.TxID].State = delta.To
	}

	a.available += delta.AvailableChange

	if delta.Lock {
		a.locked = true
	}
}

// Snapshot returns the summary of the account's current balances.
func (a *Account) Snapshot() Snapshot {
	held := a.Held()
	return Snapshot{
		ClientID:  a.clientID,
		Available: a.available,
		Held:      held,
		Total:     a.available + held,
		Locked:    a.locked,
	}
}

// Snapshot is the final balance summary of one account.
type Snapshot struct {
	ClientID  uint16
	Available Amount
	Held      Amount
	Total     Amount
	Locked    bool
}
