package ledger

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Status is the mutation gate of an Account.
type Status int

const (
	// StatusActive accounts accept mutations.
	StatusActive Status = iota
	// StatusLocked accounts reject all further mutations. An account
	// locks when a chargeback commits and never unlocks.
	StatusLocked
)

func (s Status) String() string {
	if s == StatusLocked {
		return "locked"
	}
	return "active"
}

// Account is the balance state of a single client. All mutators run
// their read-check-write sequence under the account's exclusive guard,
// and commit only if the frozen-status and nonnegative-balance checks
// pass. A failed mutator leaves the account untouched.
type Account struct {
	id uint16

	mu        sync.Mutex
	available decimal.Decimal
	held      decimal.Decimal
	status    Status
}

// NewAccount returns an active Account with zero balances.
func NewAccount(id uint16) *Account {
	return &Account{
		id:        id,
		available: decimal.Zero,
		held:      decimal.Zero,
		status:    StatusActive,
	}
}

// ID returns the owning client id.
func (a *Account) ID() uint16 { return a.id }

// Balances snapshots the current available and held balances and the
// locked flag.
func (a *Account) Balances() (available, held decimal.Decimal, locked bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.available, a.held, a.status == StatusLocked
}

// Credit adds a deposited amount to the available balance.
func (a *Account) Credit(tx uint32, amount decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status == StatusLocked {
		return AccountFrozenError{Client: a.id, Tx: tx}
	}
	a.available = a.available.Add(amount)
	return nil
}

// Debit removes a withdrawn amount from the available balance. The
// balance must not go negative.
func (a *Account) Debit(tx uint32, amount decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status == StatusLocked {
		return AccountFrozenError{Client: a.id, Tx: tx}
	}
	var next = a.available.Sub(amount)
	if next.IsNegative() {
		return InsufficientFundsError{Client: a.id, Tx: tx}
	}
	a.available = next
	return nil
}

// Hold moves a disputed amount from available to held. The available
// balance must not go negative: a dispute of funds the client has
// already withdrawn is rejected.
func (a *Account) Hold(tx uint32, amount decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status == StatusLocked {
		return AccountFrozenError{Client: a.id, Tx: tx}
	}
	var next = a.available.Sub(amount)
	if next.IsNegative() {
		return InsufficientFundsError{Client: a.id, Tx: tx}
	}
	a.available = next
	a.held = a.held.Add(amount)
	return nil
}

// Release moves a resolved dispute's amount from held back to
// available. The held balance must not go negative.
func (a *Account) Release(tx uint32, amount decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status == StatusLocked {
		return AccountFrozenError{Client: a.id, Tx: tx}
	}
	var next = a.held.Sub(amount)
	if next.IsNegative() {
		return InsufficientHoldError{Client: a.id, Tx: tx}
	}
	a.held = next
	a.available = a.available.Add(amount)
	return nil
}

// Chargeback removes a charged-back amount from held and locks the
// account. The status check runs against the state prior to this
// apply; the lock is part of the committed new state.
func (a *Account) Chargeback(tx uint32, amount decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status == StatusLocked {
		return AccountFrozenError{Client: a.id, Tx: tx}
	}
	var next = a.held.Sub(amount)
	if next.IsNegative() {
		return InsufficientHoldError{Client: a.id, Tx: tx}
	}
	a.held = next
	a.status = StatusLocked
	return nil
}
