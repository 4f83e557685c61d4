package ledger

import (
	"fmt"
	"strings"
)

// Account mutations are computed by the validator as an accountDelta and
// only then applied. Validation never touches account state, so a rejected
// transaction leaves the account exactly as it was.

// entryChange is the kind of book mutation a delta carries.
type entryChange int

const (
	// changeNone leaves the book untouched.
	changeNone entryChange = iota
	// changeInsert records a new balance-flow entry.
	changeInsert
	// changeTransition moves an existing entry to another state.
	changeTransition
)

// accountDelta is the mutation a validated transaction applies to an account.
type accountDelta struct {
	TxID   uint32
	Change entryChange

	// Entry is the entry to record for changeInsert.
	Entry BookEntry

	// From and To describe the state transition for changeTransition.
	From EntryState
	To   EntryState

	// AvailableChange is added to the available funds (may be negative).
	AvailableChange Amount
	// HeldChange is the resulting change of the held funds. Held funds are
	// derived from the book, so it is only used to validate the delta.
	HeldChange Amount

	// Lock freezes the account.
	Lock bool

	Outcome OutcomeKind
}

// String returns a human-readable representation of the delta
func (d *accountDelta) String() string {
	var sb strings.Builder

	switch d.Change {
	case changeInsert:
		sb.WriteString(fmt.Sprintf("record %d as %s", d.TxID, d.Entry.Tag))
	case changeTransition:
		sb.WriteString(fmt.Sprintf("move %d from %s to %s", d.TxID, d.From, d.To))
	default:
		sb.WriteString(fmt.Sprintf("no book change for %d", d.TxID))
	}

	if d.AvailableChange != 0 {
		sb.WriteString(fmt.Sprintf(", available %+d", int64(d.AvailableChange)))
	}
	if d.HeldChange != 0 {
		sb.WriteString(fmt.Sprintf(", held %+d", int64(d.HeldChange)))
	}
	if d.Lock {
		sb.WriteString(", lock account")
	}

	return sb.String()
}
