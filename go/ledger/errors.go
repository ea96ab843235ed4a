package ledger

import "fmt"

// Rejection reasons attached to failed apply-intents. They label the
// rejection metrics and log records of the Processor.
const (
	ReasonExpectedAmount    = "expected-amount"
	ReasonInsufficientFunds = "insufficient-funds"
	ReasonInsufficientHold  = "insufficient-hold"
	ReasonAccountFrozen     = "account-frozen"
	ReasonUnknown           = "unknown"
)

// InsufficientFundsError is returned by a withdrawal or dispute whose
// apply would drive the available balance below zero.
type InsufficientFundsError struct {
	Client uint16
	Tx     uint32
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient available funds of account %d for transaction %d", e.Client, e.Tx)
}

// Reason names the rejection class of this error.
func (e InsufficientFundsError) Reason() string { return ReasonInsufficientFunds }

// InsufficientHoldError is returned by a resolve or chargeback whose
// apply would drive the held balance below zero. A consistent shard
// never produces such an intent, so treat occurrences as a bug signal.
type InsufficientHoldError struct {
	Client uint16
	Tx     uint32
}

func (e InsufficientHoldError) Error() string {
	return fmt.Sprintf("insufficient held funds of account %d for transaction %d", e.Client, e.Tx)
}

// Reason names the rejection class of this error.
func (e InsufficientHoldError) Reason() string { return ReasonInsufficientHold }

// AccountFrozenError is returned by any apply against a locked account.
type AccountFrozenError struct {
	Client uint16
	Tx     uint32
}

func (e AccountFrozenError) Error() string {
	return fmt.Sprintf("account %d is frozen and rejects transaction %d", e.Client, e.Tx)
}

// Reason names the rejection class of this error.
func (e AccountFrozenError) Reason() string { return ReasonAccountFrozen }

// reasoner is implemented by every rejection error of this package.
type reasoner interface{ Reason() string }

// ReasonOf maps an apply error to its rejection class.
func ReasonOf(err error) string {
	if r, ok := err.(reasoner); ok {
		return r.Reason()
	}
	return ReasonUnknown
}
