package loader

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/robinvdvleuten/simledger/ledger"
)

// Column names of a transaction file.
const (
	ColumnType   = "type"
	ColumnClient = "client"
	ColumnTx     = "tx"
	ColumnAmount = "amount"
)

var errNegativeAmount = errors.New("amount must not be negative")

// columns maps column names to field indexes. amount is -1 when the file
// has no amount column.
type columns struct {
	typ, client, tx, amount int
}

func parseHeader(header []string) (columns, error) {
	cols := columns{typ: -1, client: -1, tx: -1, amount: -1}

	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case ColumnType:
			cols.typ = i
		case ColumnClient:
			cols.client = i
		case ColumnTx:
			cols.tx = i
		case ColumnAmount:
			cols.amount = i
		}
	}

	for _, name := range []string{ColumnType, ColumnClient, ColumnTx} {
		if cols.index(name) < 0 {
			return cols, fmt.Errorf("%w %q", ErrMissingColumn, name)
		}
	}

	return cols, nil
}

// Fields are the raw values of one row.
type Fields struct {
	Type   string
	Client string
	Tx     string
	Amount string
}

func (c columns) fields(record []string) Fields {
	get := func(idx int) string {
		if idx < 0 || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	return Fields{
		Type:   get(c.typ),
		Client: get(c.client),
		Tx:     get(c.tx),
		Amount: get(c.amount),
	}
}

// index returns the field index of column, or -1.
func (c columns) index(column string) int {
	switch column {
	case ColumnType:
		return c.typ
	case ColumnClient:
		return c.client
	case ColumnTx:
		return c.tx
	case ColumnAmount:
		return c.amount
	}
	return -1
}

// Decode validates the raw fields of a row and converts them into a
// transaction. Errors are *RecordError values naming the offending column;
// their position is left for the caller to fill in.
func Decode(f Fields) (ledger.Transaction, error) {
	var tx ledger.Transaction

	kind, err := ledger.ParseTagKind(f.Type)
	if err != nil {
		return tx, &RecordError{Field: ColumnType, Value: f.Type, Err: errors.New("not a valid transaction type")}
	}

	client, err := strconv.ParseUint(f.Client, 10, 16)
	if err != nil {
		return tx, &RecordError{Field: ColumnClient, Value: f.Client, Err: numError(err)}
	}

	id, err := strconv.ParseUint(f.Tx, 10, 32)
	if err != nil {
		return tx, &RecordError{Field: ColumnTx, Value: f.Tx, Err: numError(err)}
	}

	tx.ID = uint32(id)
	tx.ClientID = uint16(client)

	switch kind {
	case ledger.Deposit, ledger.Withdrawal:
		amount, err := ledger.ParseAmount(f.Amount)
		if err != nil {
			if cause := errors.Unwrap(err); cause != nil {
				err = cause
			}
			return tx, &RecordError{Field: ColumnAmount, Value: f.Amount, Err: err}
		}
		if amount.IsNegative() {
			return tx, &RecordError{Field: ColumnAmount, Value: f.Amount, Err: errNegativeAmount}
		}
		tx.Tag = ledger.Tag{Kind: kind, Amount: amount}
	default:
		// Administrative rows never carry an amount; whatever is there is ignored.
		tx.Tag = ledger.Tag{Kind: kind}
	}

	return tx, nil
}

// numError strips the strconv prefix, which repeats the value.
func numError(err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return numErr.Err
	}
	return err
}
