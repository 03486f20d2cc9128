package engine

import (
	"errors"
	"fmt"
)

// Reason classifies why a transaction was rejected.
type Reason string

const (
	ReasonMissingAmount     Reason = "missing_amount"
	ReasonNonPositiveAmount Reason = "non_positive_amount"
	ReasonDuplicateTx       Reason = "duplicate_tx"
	ReasonInsufficientFunds Reason = "insufficient_funds"
	ReasonAccountLocked     Reason = "account_locked"
	ReasonUnknownTx         Reason = "unknown_tx"
	ReasonNotDisputable     Reason = "not_disputable"
	ReasonNotDisputed       Reason = "not_disputed"
	ReasonUnknownType       Reason = "unknown_type"
)

// Description provides a human-readable description of a rejection reason.
func (r Reason) Description() string {
	switch r {
	case ReasonMissingAmount:
		return "deposit or withdrawal is missing an amount"
	case ReasonNonPositiveAmount:
		return "amount must be positive"
	case ReasonDuplicateTx:
		return "transaction id already in use"
	case ReasonInsufficientFunds:
		return "withdrawal exceeds available funds"
	case ReasonAccountLocked:
		return "account is locked after a chargeback"
	case ReasonUnknownTx:
		return "referenced transaction does not exist for this client"
	case ReasonNotDisputable:
		return "referenced transaction cannot be disputed"
	case ReasonNotDisputed:
		return "referenced transaction is not under dispute"
	case ReasonUnknownType:
		return "unknown transaction type"
	default:
		return "unknown reason"
	}
}

// RejectionError reports a single invalid transaction. It never aborts
// processing of subsequent transactions.
type RejectionError struct {
	TxID     TxID
	ClientID ClientID
	Reason   Reason
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("transaction %d rejected for client %d: %s", e.TxID, e.ClientID, e.Reason.Description())
}

func (t Transaction) reject(reason Reason) error {
	return &RejectionError{TxID: t.TxID, ClientID: t.ClientID, Reason: reason}
}

// RejectionReason extracts the reason from a rejection error, or "" if err is
// not a rejection.
func RejectionReason(err error) Reason {
	var rejection *RejectionError
	if errors.As(err, &rejection) {
		return rejection.Reason
	}
	return ""
}
