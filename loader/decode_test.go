package loader

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/simledger/ledger"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		fields  Fields
		want    ledger.Transaction
		wantErr string // offending column
	}{
		{
			name:   "deposit",
			fields: Fields{Type: "deposit", Client: "1", Tx: "1", Amount: "1.5"},
			want:   ledger.Transaction{ID: 1, ClientID: 1, Tag: ledger.DepositTag(15000)},
		},
		{
			name:   "withdrawal with four decimals",
			fields: Fields{Type: "withdrawal", Client: "65535", Tx: "4294967295", Amount: "0.0001"},
			want:   ledger.Transaction{ID: 4294967295, ClientID: 65535, Tag: ledger.WithdrawalTag(1)},
		},
		{
			name:   "upper case type",
			fields: Fields{Type: "DEPOSIT", Client: "2", Tx: "3", Amount: "10"},
			want:   ledger.Transaction{ID: 3, ClientID: 2, Tag: ledger.DepositTag(100000)},
		},
		{
			name:   "dispute ignores amount",
			fields: Fields{Type: "dispute", Client: "1", Tx: "1", Amount: "garbage"},
			want:   ledger.Transaction{ID: 1, ClientID: 1, Tag: ledger.DisputeTag()},
		},
		{
			name:   "zero amount",
			fields: Fields{Type: "deposit", Client: "1", Tx: "1", Amount: "0"},
			want:   ledger.Transaction{ID: 1, ClientID: 1, Tag: ledger.DepositTag(0)},
		},
		{name: "unknown type", fields: Fields{Type: "transfer", Client: "1", Tx: "1", Amount: "1"}, wantErr: ColumnType},
		{name: "empty client", fields: Fields{Type: "deposit", Client: "", Tx: "1", Amount: "1"}, wantErr: ColumnClient},
		{name: "client out of range", fields: Fields{Type: "deposit", Client: "65536", Tx: "1", Amount: "1"}, wantErr: ColumnClient},
		{name: "negative tx", fields: Fields{Type: "deposit", Client: "1", Tx: "-1", Amount: "1"}, wantErr: ColumnTx},
		{name: "tx out of range", fields: Fields{Type: "deposit", Client: "1", Tx: "4294967296", Amount: "1"}, wantErr: ColumnTx},
		{name: "missing amount", fields: Fields{Type: "withdrawal", Client: "1", Tx: "1"}, wantErr: ColumnAmount},
		{name: "negative amount", fields: Fields{Type: "deposit", Client: "1", Tx: "1", Amount: "-0.5"}, wantErr: ColumnAmount},
		{name: "invalid amount", fields: Fields{Type: "deposit", Client: "1", Tx: "1", Amount: "1.2.3"}, wantErr: ColumnAmount},
		{name: "exponent amount", fields: Fields{Type: "deposit", Client: "1", Tx: "1", Amount: "1e3"}, wantErr: ColumnAmount},
		{name: "huge exponent amount", fields: Fields{Type: "deposit", Client: "1", Tx: "1", Amount: "1e999999999"}, wantErr: ColumnAmount},
		{name: "tiny exponent amount", fields: Fields{Type: "withdrawal", Client: "1", Tx: "1", Amount: "1e-999999999"}, wantErr: ColumnAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := Decode(tt.fields)

			if tt.wantErr != "" {
				var recErr *RecordError
				assert.True(t, errors.As(err, &recErr), "expected a RecordError, got %v", err)
				assert.Equal(t, tt.wantErr, recErr.Field)
				assert.NotZero(t, recErr.Err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, tx)
		})
	}
}

func TestDecodeExponentAmountMessage(t *testing.T) {
	_, err := Decode(Fields{Type: "deposit", Client: "1", Tx: "1", Amount: "1e999999999"})

	var recErr *RecordError
	assert.True(t, errors.As(err, &recErr))
	recErr.Pos = Position{Filename: "in.csv", Line: 2, Column: 13}

	assert.Equal(t, `in.csv:2:13: invalid amount "1e999999999": exponent notation is not supported`, recErr.Error())
}

func TestRecordErrorMessage(t *testing.T) {
	_, err := Decode(Fields{Type: "deposit", Client: "x", Tx: "1", Amount: "1"})

	var recErr *RecordError
	assert.True(t, errors.As(err, &recErr))
	recErr.Pos = Position{Filename: "in.csv", Line: 5, Column: 9}

	assert.Equal(t, `in.csv:5:9: invalid client "x": invalid syntax`, recErr.Error())
}

func TestParseHeader(t *testing.T) {
	cols, err := parseHeader([]string{" Type ", "CLIENT", "tx"})
	assert.NoError(t, err)
	assert.Equal(t, columns{typ: 0, client: 1, tx: 2, amount: -1}, cols)

	_, err = parseHeader([]string{"client", "tx", "amount"})
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), `"type"`)
}

func FuzzDecode(f *testing.F) {
	f.Add("deposit", "1", "1", "1.5")
	f.Add("withdrawal", "2", "5", "0.0001")
	f.Add("dispute", "1", "1", "")
	f.Add("chargeback", "65535", "4294967295", "")
	f.Add("deposit", "1", "1", "1e400")
	f.Add("deposit", "1", "1", "1e999999999")
	f.Add("withdrawal", "1", "1", "1E-999999999")
	f.Add("withdrawal", "-1", "x", "NaN")

	f.Fuzz(func(t *testing.T, typ, client, tx, amount string) {
		decoded, err := Decode(Fields{Type: typ, Client: client, Tx: tx, Amount: amount})
		if err != nil {
			var recErr *RecordError
			if !errors.As(err, &recErr) {
				t.Fatalf("Decode returned %T, want *RecordError", err)
			}
			return
		}

		if decoded.Tag.IsBalanceFlow() && decoded.Tag.Amount.IsNegative() {
			t.Fatalf("Decode accepted negative amount %s", decoded.Tag.Amount)
		}
		if decoded.Tag.IsAdministrative() && decoded.Tag.Amount != 0 {
			t.Fatalf("administrative transaction carries amount %s", decoded.Tag.Amount)
		}
	})
}
