package ledger

import (
	"errors"
	"fmt"
)

// Execution errors. Every rule violation of the account engine is reported
// as one of these, wrapped in an *ExecutionError.
var (
	// ErrInsufficientBalance is returned when a withdrawal exceeds the available funds.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidTransactionType is returned on a tag and operation mismatch,
	// e.g. disputing a withdrawal.
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	// ErrInvalidTransaction is returned when the referenced transaction is not
	// in the state the operation requires.
	ErrInvalidTransaction = errors.New("invalid transaction")
	// ErrTransactionExists is returned when a balance-flow transaction reuses an id.
	ErrTransactionExists = errors.New("transaction already exists")
	// ErrAccountLocked is returned for balance-flow transactions on a frozen account.
	ErrAccountLocked = errors.New("account is locked")
	// ErrAmountOverflow is returned when a transaction would push available,
	// held or total funds out of the representable range.
	ErrAmountOverflow = errors.New("amount out of range")
)

// ExecutionError is returned when an account rejects a transaction.
type ExecutionError struct {
	Tx  Transaction
	Err error
}

func newExecutionError(tx Transaction, err error) *ExecutionError {
	return &ExecutionError{Tx: tx, Err: err}
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s %d rejected for client %d: %v", e.Tx.Tag.Kind, e.Tx.ID, e.Tx.ClientID, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// GetTransaction returns the rejected transaction.
func (e *ExecutionError) GetTransaction() Transaction {
	return e.Tx
}

// ErrorKind returns a short stable name for an execution error, suitable
// for counters and log fields.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrInvalidTransactionType):
		return "invalid_transaction_type"
	case errors.Is(err, ErrInvalidTransaction):
		return "invalid_transaction"
	case errors.Is(err, ErrTransactionExists):
		return "transaction_exists"
	case errors.Is(err, ErrAccountLocked):
		return "account_locked"
	case errors.Is(err, ErrAmountOverflow):
		return "amount_overflow"
	default:
		return "unknown"
	}
}

// IsRejection reports whether err is a rule violation reported by the
// engine, as opposed to an unexpected failure.
func IsRejection(err error) bool {
	var execErr *ExecutionError
	return errors.As(err, &execErr)
}
