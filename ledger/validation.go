package ledger

// validator checks a transaction against a read-only view of one account
// and computes the delta to apply. It never mutates the account.
type validator struct {
	account *Account
}

func newValidator(account *Account) *validator {
	return &validator{account: account}
}

// validate computes the delta of tx and checks that applying it keeps the
// account's funds representable.
func (v *validator) validate(tx Transaction) (*accountDelta, error) {
	delta, err := v.dispatch(tx)
	if err != nil {
		return nil, err
	}
	if err := v.checkFunds(delta); err != nil {
		return nil, err
	}
	return delta, nil
}

// dispatch dispatches on the transaction kind.
func (v *validator) dispatch(tx Transaction) (*accountDelta, error) {
	switch tx.Tag.Kind {
	case Deposit:
		return v.validateDeposit(tx)
	case Withdrawal:
		return v.validateWithdrawal(tx)
	case Dispute:
		return v.validateDispute(tx)
	case Resolve:
		return v.validateResolve(tx)
	case Chargeback:
		return v.validateChargeback(tx)
	default:
		return nil, ErrInvalidTransactionType
	}
}

// checkFunds rejects a delta that would overflow available, held or total
// funds.
func (v *validator) checkFunds(delta *accountDelta) error {
	available, err := v.account.available.Add(delta.AvailableChange)
	if err != nil {
		return err
	}

	// Neither held nor total funds can grow.
	if delta.HeldChange <= 0 && delta.AvailableChange+delta.HeldChange <= 0 {
		return nil
	}

	held, err := v.account.Held().Add(delta.HeldChange)
	if err != nil {
		return err
	}
	_, err = available.Add(held)
	return err
}

// validateBalanceFlow holds the checks shared by deposits and withdrawals.
func (v *validator) validateBalanceFlow(tx Transaction) error {
	if v.account.locked {
		return ErrAccountLocked
	}

	// Ids are unique per account for its whole lifetime, whatever state the
	// earlier entry is in now.
	if _, ok := v.account.book[tx.ID]; ok {
		return ErrTransactionExists
	}

	return nil
}

func (v *validator) validateDeposit(tx Transaction) (*accountDelta, error) {
	amount, err := tx.Tag.DepositAmount()
	if err != nil {
		return nil, err
	}
	if err := v.validateBalanceFlow(tx); err != nil {
		return nil, err
	}

	return &accountDelta{
		TxID:            tx.ID,
		Change:          changeInsert,
		Entry:           BookEntry{Tag: tx.Tag, State: EntryActive},
		AvailableChange: amount,
		Outcome:         OutcomeNewAvailableBalance,
	}, nil
}

func (v *validator) validateWithdrawal(tx Transaction) (*accountDelta, error) {
	amount, err := tx.Tag.WithdrawalAmount()
	if err != nil {
		return nil, err
	}
	if err := v.validateBalanceFlow(tx); err != nil {
		return nil, err
	}

	if v.account.available < amount {
		return nil, ErrInsufficientBalance
	}

	return &accountDelta{
		TxID:            tx.ID,
		Change:          changeInsert,
		Entry:           BookEntry{Tag: tx.Tag, State: EntryActive},
		AvailableChange: -amount,
		Outcome:         OutcomeNewAvailableBalance,
	}, nil
}

// findEntry returns the deposit amount of the entry referenced by tx if it
// is currently in state. Entries in any other state are reported as not found.
func (v *validator) findEntry(tx Transaction, state EntryState) (Amount, error) {
	entry, ok := v.account.book[tx.ID]
	if !ok || entry.State != state {
		return 0, ErrInvalidTransaction
	}

	return entry.Tag.DepositAmount()
}

func (v *validator) validateDispute(tx Transaction) (*accountDelta, error) {
	amount, err := v.findEntry(tx, EntryActive)
	if err != nil {
		return nil, err
	}

	return &accountDelta{
		TxID:            tx.ID,
		Change:          changeTransition,
		From:            EntryActive,
		To:              EntryDisputed,
		AvailableChange: -amount,
		HeldChange:      amount,
		Outcome:         OutcomeOK,
	}, nil
}

func (v *validator) validateResolve(tx Transaction) (*accountDelta, error) {
	amount, err := v.findEntry(tx, EntryDisputed)
	if err != nil {
		return nil, err
	}

	return &accountDelta{
		TxID:            tx.ID,
		Change:          changeTransition,
		From:            EntryDisputed,
		To:              EntryActive,
		AvailableChange: amount,
		HeldChange:      -amount,
		Outcome:         OutcomeOK,
	}, nil
}

func (v *validator) validateChargeback(tx Transaction) (*accountDelta, error) {
	// Available funds were already reduced when the dispute was opened.
	amount, err := v.findEntry(tx, EntryDisputed)
	if err != nil {
		return nil, err
	}

	return &accountDelta{
		TxID:       tx.ID,
		Change:     changeTransition,
		From:       EntryDisputed,
		To:         EntryChargedBack,
		HeldChange: -amount,
		Lock:       true,
		Outcome:    OutcomeOK,
	}, nil
}
