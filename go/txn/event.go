package txn

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// EventType enumerates the transaction event types of the input log.
type EventType int

const (
	TypeDeposit EventType = iota
	TypeWithdrawal
	TypeDispute
	TypeResolve
	TypeChargeback
)

var eventTypeNames = [...]string{
	TypeDeposit:    "deposit",
	TypeWithdrawal: "withdrawal",
	TypeDispute:    "dispute",
	TypeResolve:    "resolve",
	TypeChargeback: "chargeback",
}

func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// ParseEventType maps the literal lowercase type column of an input
// record to its EventType.
func ParseEventType(s string) (EventType, error) {
	for t, name := range eventTypeNames {
		if s == name {
			return EventType(t), nil
		}
	}
	return 0, fmt.Errorf("unknown transaction type %q", s)
}

// HasAmount tells whether events of this type carry an amount column.
// Dispute-family events reference a prior transaction and carry none.
func (t EventType) HasAmount() bool {
	return t == TypeDeposit || t == TypeWithdrawal
}

// TransactionEvent is one decoded record of the input log.
type TransactionEvent struct {
	ID     uint32
	Type   EventType
	Client uint16
	// Amount is present for deposits and withdrawals, and nil for the
	// dispute family.
	Amount *decimal.Decimal
}

// ExpectedAmountError reports a deposit or withdrawal event with a
// missing or unusable amount.
type ExpectedAmountError struct {
	Client uint16
	Tx     uint32
}

func (e ExpectedAmountError) Error() string {
	return fmt.Sprintf("expected an amount on transaction %d of client %d", e.Tx, e.Client)
}

// eventAmount extracts the amount a deposit or withdrawal stage is
// built from. Nil and negative amounts are unusable; zero is allowed.
func eventAmount(event TransactionEvent) (decimal.Decimal, error) {
	if event.Amount == nil || event.Amount.IsNegative() {
		return decimal.Decimal{}, ExpectedAmountError{Client: event.Client, Tx: event.ID}
	}
	return *event.Amount, nil
}
