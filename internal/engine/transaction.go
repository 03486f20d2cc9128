package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ClientID identifies a client account. The input format caps client ids at
// 16 bits.
type ClientID uint16

// TxID identifies a deposit or withdrawal. Disputes, resolves and chargebacks
// reference an existing TxID instead of issuing a new one.
type TxID uint32

// TxType is the closed set of transaction types the engine understands.
type TxType string

const (
	TxDeposit    TxType = "deposit"
	TxWithdrawal TxType = "withdrawal"
	TxDispute    TxType = "dispute"
	TxResolve    TxType = "resolve"
	TxChargeback TxType = "chargeback"
)

// ParseTxType maps an input type tag to a TxType.
func ParseTxType(s string) (TxType, error) {
	switch TxType(s) {
	case TxDeposit, TxWithdrawal, TxDispute, TxResolve, TxChargeback:
		return TxType(s), nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// Transaction is a single transaction to process. Amount is nil for types
// that do not carry one.
type Transaction struct {
	Type     TxType
	ClientID ClientID
	TxID     TxID
	Amount   *decimal.Decimal
}

// txState tracks the dispute lifecycle of a recorded deposit.
type txState string

const (
	txApplied     txState = "applied"
	txDisputed    txState = "disputed"
	txChargedBack txState = "charged_back"
)

// allowedTransitions defines the valid dispute-lifecycle transitions.
// txChargedBack is terminal.
func allowedTransitions() map[txState][]txState {
	return map[txState][]txState{
		txApplied:     {txDisputed},
		txDisputed:    {txApplied, txChargedBack},
		txChargedBack: {},
	}
}

// txRecord is the retained history entry for a deposit or withdrawal,
// needed to settle later disputes against it.
type txRecord struct {
	amount decimal.Decimal
	kind   TxType
	state  txState
}

// canTransition checks the record's state against the transition table.
func (r *txRecord) canTransition(to txState) bool {
	for _, next := range allowedTransitions()[r.state] {
		if next == to {
			return true
		}
	}
	return false
}

// canDispute reports whether the record may enter the disputed state. Only
// deposits are disputable: a dispute moves funds from available back to held,
// which is only meaningful while the amount is still attributable to the
// account. Withdrawn funds have left the system.
func (r *txRecord) canDispute() bool {
	return r.kind == TxDeposit && r.canTransition(txDisputed)
}

// canSettle reports whether the record may be resolved or charged back.
func (r *txRecord) canSettle() bool {
	return r.state == txDisputed
}
