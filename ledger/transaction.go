package ledger

import (
	"fmt"
	"strings"
)

// TagKind identifies the kind of a transaction.
type TagKind int

const (
	// Deposit credits the account with an amount.
	Deposit TagKind = iota
	// Withdrawal debits the account with an amount.
	Withdrawal
	// Dispute holds the funds of an earlier deposit.
	Dispute
	// Resolve releases the funds held by a dispute.
	Resolve
	// Chargeback reverses a disputed deposit and freezes the account.
	Chargeback
)

// String returns the token used for the kind in transaction files.
func (k TagKind) String() string {
	switch k {
	case Deposit:
		return "deposit"
	case Withdrawal:
		return "withdrawal"
	case Dispute:
		return "dispute"
	case Resolve:
		return "resolve"
	case Chargeback:
		return "chargeback"
	default:
		return "unknown"
	}
}

// ParseTagKind parses a transaction type token (case-insensitive).
func ParseTagKind(s string) (TagKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deposit":
		return Deposit, nil
	case "withdrawal":
		return Withdrawal, nil
	case "dispute":
		return Dispute, nil
	case "resolve":
		return Resolve, nil
	case "chargeback":
		return Chargeback, nil
	}
	return 0, fmt.Errorf("%q is not a valid transaction type", s)
}

// Tag is the kind of a transaction together with its payload. Only
// balance-flow kinds (deposit, withdrawal) carry an amount.
type Tag struct {
	Kind   TagKind
	Amount Amount
}

// DepositTag returns a deposit tag for amount.
func DepositTag(amount Amount) Tag {
	return Tag{Kind: Deposit, Amount: amount}
}

// WithdrawalTag returns a withdrawal tag for amount.
func WithdrawalTag(amount Amount) Tag {
	return Tag{Kind: Withdrawal, Amount: amount}
}

// DisputeTag returns a dispute tag.
func DisputeTag() Tag { return Tag{Kind: Dispute} }

// ResolveTag returns a resolve tag.
func ResolveTag() Tag { return Tag{Kind: Resolve} }

// ChargebackTag returns a chargeback tag.
func ChargebackTag() Tag { return Tag{Kind: Chargeback} }

// IsDeposit reports whether the tag is a deposit.
func (t Tag) IsDeposit() bool { return t.Kind == Deposit }

// IsWithdrawal reports whether the tag is a withdrawal.
func (t Tag) IsWithdrawal() bool { return t.Kind == Withdrawal }

// IsBalanceFlow reports whether the tag moves funds directly.
func (t Tag) IsBalanceFlow() bool {
	return t.Kind == Deposit || t.Kind == Withdrawal
}

// IsAdministrative reports whether the tag references an earlier transaction.
func (t Tag) IsAdministrative() bool {
	return t.Kind == Dispute || t.Kind == Resolve || t.Kind == Chargeback
}

// DepositAmount returns the deposited amount, or ErrInvalidTransactionType
// if the tag is not a deposit.
func (t Tag) DepositAmount() (Amount, error) {
	if !t.IsDeposit() {
		return 0, ErrInvalidTransactionType
	}
	return t.Amount, nil
}

// WithdrawalAmount returns the withdrawn amount, or ErrInvalidTransactionType
// if the tag is not a withdrawal.
func (t Tag) WithdrawalAmount() (Amount, error) {
	if !t.IsWithdrawal() {
		return 0, ErrInvalidTransactionType
	}
	return t.Amount, nil
}

// String returns a human-readable representation of the tag.
func (t Tag) String() string {
	if t.IsBalanceFlow() {
		return fmt.Sprintf("%s %s", t.Kind, t.Amount)
	}
	return t.Kind.String()
}

// Transaction is a single validated input record. ID is supplied by the
// input stream and is the join key administrative transactions use to
// reference an earlier balance-flow transaction.
type Transaction struct {
	ID       uint32
	ClientID uint16
	Tag      Tag
}

// String returns a human-readable representation of the transaction.
func (tx Transaction) String() string {
	return fmt.Sprintf("tx %d (client %d): %s", tx.ID, tx.ClientID, tx.Tag)
}

// EntryState is the lifecycle state of a recorded balance-flow transaction.
type EntryState int

const (
	// EntryActive entries count towards available funds.
	EntryActive EntryState = iota
	// EntryDisputed entries are held.
	EntryDisputed
	// EntryChargedBack entries have been reversed and are final.
	EntryChargedBack
)

// String returns the string representation of the state.
func (s EntryState) String() string {
	switch s {
	case EntryActive:
		return "active"
	case EntryDisputed:
		return "disputed"
	case EntryChargedBack:
		return "charged back"
	default:
		return "unknown"
	}
}

// BookEntry is a recorded balance-flow transaction, kept so administrative
// transactions can look it up by id later on.
type BookEntry struct {
	Tag   Tag
	State EntryState
}
