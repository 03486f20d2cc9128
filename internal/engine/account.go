package engine

import "github.com/shopspring/decimal"

// Account is the state of a single client. Total is derived so the
// total == available + held invariant cannot drift.
type Account struct {
	ClientID  ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Locked    bool
}

func newAccount(id ClientID) Account {
	return Account{
		ClientID:  id,
		Available: decimal.Zero,
		Held:      decimal.Zero,
	}
}

// Total returns the available and held funds combined.
func (a Account) Total() decimal.Decimal {
	return a.Available.Add(a.Held)
}
