package txn

import (
	"github.com/shopspring/decimal"

	"github.com/paysys/payline/go/ledger"
)

// Transactions carry their lifecycle stage as a distinct type. Each
// stage knows the account mutation it applies, and exposes only its
// legal successor transitions: a Deposit can be disputed, a Dispute
// can be resolved or charged back, and a Withdrawal is terminal.

var (
	_ ledger.Transactable = Deposit{}
	_ ledger.Transactable = Withdrawal{}
	_ ledger.Transactable = Dispute{}
	_ ledger.Transactable = Resolve{}
	_ ledger.Transactable = Chargeback{}
)

// Deposit is the settled stage of a deposit transaction.
type Deposit struct {
	client uint16
	id     uint32
	amount decimal.Decimal
}

// NewDeposit builds the Deposit stage of a deposit event.
func NewDeposit(event TransactionEvent) (Deposit, error) {
	var amount, err = eventAmount(event)
	if err != nil {
		return Deposit{}, err
	}
	return Deposit{client: event.Client, id: event.ID, amount: amount}, nil
}

func (d Deposit) Apply(a *ledger.Account) error { return a.Credit(d.id, d.amount) }
func (d Deposit) Client() uint16                { return d.client }
func (d Deposit) ID() uint32                    { return d.id }
func (d Deposit) Kind() string                  { return ledger.KindDeposit }

// Amount is the deposited amount.
func (d Deposit) Amount() decimal.Decimal { return d.amount }

// Dispute transitions this Deposit into its disputed stage.
func (d Deposit) Dispute() Dispute {
	return Dispute{client: d.client, id: d.id, amount: d.amount}
}

// Withdrawal is the settled stage of a withdrawal transaction. It is
// not disputable and exposes no further transition.
type Withdrawal struct {
	client uint16
	id     uint32
	amount decimal.Decimal
}

// NewWithdrawal builds the Withdrawal stage of a withdrawal event.
func NewWithdrawal(event TransactionEvent) (Withdrawal, error) {
	var amount, err = eventAmount(event)
	if err != nil {
		return Withdrawal{}, err
	}
	return Withdrawal{client: event.Client, id: event.ID, amount: amount}, nil
}

func (w Withdrawal) Apply(a *ledger.Account) error { return a.Debit(w.id, w.amount) }
func (w Withdrawal) Client() uint16                { return w.client }
func (w Withdrawal) ID() uint32                    { return w.id }
func (w Withdrawal) Kind() string                  { return ledger.KindWithdrawal }

// Amount is the withdrawn amount.
func (w Withdrawal) Amount() decimal.Decimal { return w.amount }

// Dispute is the disputed stage of a deposit, holding the original
// deposited amount pending resolution.
type Dispute struct {
	client uint16
	id     uint32
	amount decimal.Decimal
}

func (d Dispute) Apply(a *ledger.Account) error { return a.Hold(d.id, d.amount) }
func (d Dispute) Client() uint16                { return d.client }
func (d Dispute) ID() uint32                    { return d.id }
func (d Dispute) Kind() string                  { return ledger.KindDispute }

// Amount is the disputed amount.
func (d Dispute) Amount() decimal.Decimal { return d.amount }

// Resolve transitions this Dispute into its resolved stage,
// terminating the dispute.
func (d Dispute) Resolve() Resolve {
	return Resolve{client: d.client, id: d.id, amount: d.amount}
}

// Chargeback transitions this Dispute into its charged-back stage,
// terminating the dispute and the transaction.
func (d Dispute) Chargeback() Chargeback {
	return Chargeback{client: d.client, id: d.id, amount: d.amount}
}

// Resolve releases a disputed amount back to the available balance.
type Resolve struct {
	client uint16
	id     uint32
	amount decimal.Decimal
}

func (r Resolve) Apply(a *ledger.Account) error { return a.Release(r.id, r.amount) }
func (r Resolve) Client() uint16                { return r.client }
func (r Resolve) ID() uint32                    { return r.id }
func (r Resolve) Kind() string                  { return ledger.KindResolve }

// Chargeback withdraws a disputed amount from held funds and locks
// the account.
type Chargeback struct {
	client uint16
	id     uint32
	amount decimal.Decimal
}

func (c Chargeback) Apply(a *ledger.Account) error { return a.Chargeback(c.id, c.amount) }
func (c Chargeback) Client() uint16                { return c.client }
func (c Chargeback) ID() uint32                    { return c.id }
func (c Chargeback) Kind() string                  { return ledger.KindChargeback }
