package engine

import "sort"

// clientRecord holds one client's account together with the transaction
// history needed to settle disputes. Transaction lookups are scoped per
// client, so a dispute can never reach another client's deposits.
type clientRecord struct {
	account Account
	txs     map[TxID]*txRecord
}

// Ledger applies transactions against per-client account state. It
// exclusively owns all account and transaction-state records; a rejected
// transaction leaves the ledger exactly as it was.
type Ledger struct {
	clients map[ClientID]*clientRecord
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{clients: make(map[ClientID]*clientRecord)}
}

// Apply validates tx against the current state and, if valid, mutates the
// owning account. Invalid transactions return a *RejectionError and leave all
// state untouched.
func (l *Ledger) Apply(tx Transaction) error {
	client, ok := l.clients[tx.ClientID]
	if !ok {
		// Accounts come into existence on first reference, even when the
		// referencing transaction itself is rejected.
		client = &clientRecord{
			account: newAccount(tx.ClientID),
			txs:     make(map[TxID]*txRecord),
		}
		l.clients[tx.ClientID] = client
	}

	switch tx.Type {
	case TxDeposit:
		return client.deposit(tx)
	case TxWithdrawal:
		return client.withdraw(tx)
	case TxDispute:
		return client.dispute(tx)
	case TxResolve:
		return client.resolve(tx)
	case TxChargeback:
		return client.chargeback(tx)
	default:
		return tx.reject(ReasonUnknownType)
	}
}

// Snapshots returns the final state of every known client, ordered by client
// id for deterministic output.
func (l *Ledger) Snapshots() []Account {
	accounts := make([]Account, 0, len(l.clients))
	for _, client := range l.clients {
		accounts = append(accounts, client.account)
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].ClientID < accounts[j].ClientID
	})

	return accounts
}

// deposit credits available funds and records a new disputable transaction.
// Deposits are permitted on locked accounts.
func (c *clientRecord) deposit(tx Transaction) error {
	if tx.Amount == nil {
		return tx.reject(ReasonMissingAmount)
	}
	if !tx.Amount.IsPositive() {
		return tx.reject(ReasonNonPositiveAmount)
	}
	if _, exists := c.txs[tx.TxID]; exists {
		return tx.reject(ReasonDuplicateTx)
	}

	c.account.Available = c.account.Available.Add(*tx.Amount)
	c.txs[tx.TxID] = &txRecord{amount: *tx.Amount, kind: TxDeposit, state: txApplied}

	return nil
}

// withdraw debits available funds. The lock check comes first: a locked
// account rejects withdrawals regardless of funds.
func (c *clientRecord) withdraw(tx Transaction) error {
	if tx.Amount == nil {
		return tx.reject(ReasonMissingAmount)
	}
	if !tx.Amount.IsPositive() {
		return tx.reject(ReasonNonPositiveAmount)
	}
	if _, exists := c.txs[tx.TxID]; exists {
		return tx.reject(ReasonDuplicateTx)
	}
	if c.account.Locked {
		return tx.reject(ReasonAccountLocked)
	}
	if tx.Amount.GreaterThan(c.account.Available) {
		return tx.reject(ReasonInsufficientFunds)
	}

	c.account.Available = c.account.Available.Sub(*tx.Amount)
	c.txs[tx.TxID] = &txRecord{amount: *tx.Amount, kind: TxWithdrawal, state: txApplied}

	return nil
}

// dispute moves a previously deposited amount from available to held. The
// available balance may go negative here when the deposit was already spent.
func (c *clientRecord) dispute(tx Transaction) error {
	original, ok := c.txs[tx.TxID]
	if !ok {
		return tx.reject(ReasonUnknownTx)
	}
	if !original.canDispute() {
		return tx.reject(ReasonNotDisputable)
	}

	c.account.Available = c.account.Available.Sub(original.amount)
	c.account.Held = c.account.Held.Add(original.amount)
	original.state = txDisputed

	return nil
}

// resolve releases held funds back to available. The deposit returns to the
// applied state and may be disputed again.
func (c *clientRecord) resolve(tx Transaction) error {
	original, ok := c.txs[tx.TxID]
	if !ok {
		return tx.reject(ReasonUnknownTx)
	}
	if !original.canSettle() {
		return tx.reject(ReasonNotDisputed)
	}

	c.account.Held = c.account.Held.Sub(original.amount)
	c.account.Available = c.account.Available.Add(original.amount)
	original.state = txApplied

	return nil
}

// chargeback removes held funds from the account entirely and locks it.
// The transaction state becomes terminal.
func (c *clientRecord) chargeback(tx Transaction) error {
	original, ok := c.txs[tx.TxID]
	if !ok {
		return tx.reject(ReasonUnknownTx)
	}
	if !original.canSettle() {
		return tx.reject(ReasonNotDisputed)
	}

	c.account.Held = c.account.Held.Sub(original.amount)
	c.account.Locked = true
	original.state = txChargedBack

	return nil
}
