package txn

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/paysys/payline/go/ledger"
)

func amountOf(t *testing.T, s string) *decimal.Decimal {
	var d, err = decimal.NewFromString(s)
	require.NoError(t, err)
	return &d
}

func TestParseEventType(t *testing.T) {
	for _, name := range []string{"deposit", "withdrawal", "dispute", "resolve", "chargeback"} {
		var parsed, err = ParseEventType(name)
		require.NoError(t, err)
		require.Equal(t, name, parsed.String())
	}
	var _, err = ParseEventType("transfer")
	require.EqualError(t, err, `unknown transaction type "transfer"`)
}

func TestStageConstructorsRequireAmount(t *testing.T) {
	var event = TransactionEvent{ID: 7, Type: TypeDeposit, Client: 3}

	var _, err = NewDeposit(event)
	require.IsType(t, ExpectedAmountError{}, err)
	require.EqualError(t, err, "expected an amount on transaction 7 of client 3")

	event.Type = TypeWithdrawal
	_, err = NewWithdrawal(event)
	require.IsType(t, ExpectedAmountError{}, err)

	// Negative amounts are as unusable as missing ones.
	event.Amount = amountOf(t, "-1.5")
	_, err = NewWithdrawal(event)
	require.IsType(t, ExpectedAmountError{}, err)
}

func TestDepositLifecycleApplies(t *testing.T) {
	var deposit, err = NewDeposit(TransactionEvent{
		ID: 1, Type: TypeDeposit, Client: 5, Amount: amountOf(t, "10.0")})
	require.NoError(t, err)
	require.Equal(t, ledger.KindDeposit, deposit.Kind())
	require.Equal(t, uint16(5), deposit.Client())
	require.Equal(t, uint32(1), deposit.ID())

	var account = ledger.NewAccount(5)
	require.NoError(t, deposit.Apply(account))

	var dispute = deposit.Dispute()
	require.Equal(t, ledger.KindDispute, dispute.Kind())
	require.True(t, dispute.Amount().Equal(deposit.Amount()))
	require.NoError(t, dispute.Apply(account))

	var available, held, locked = account.Balances()
	require.True(t, available.IsZero())
	require.True(t, held.Equal(deposit.Amount()))
	require.False(t, locked)

	var resolve = dispute.Resolve()
	require.Equal(t, ledger.KindResolve, resolve.Kind())
	require.NoError(t, resolve.Apply(account))

	available, held, locked = account.Balances()
	require.True(t, available.Equal(deposit.Amount()))
	require.True(t, held.IsZero())
	require.False(t, locked)
}

func TestChargebackAppliesAndLocks(t *testing.T) {
	var deposit, err = NewDeposit(TransactionEvent{
		ID: 30, Type: TypeDeposit, Client: 4, Amount: amountOf(t, "10.0")})
	require.NoError(t, err)

	var account = ledger.NewAccount(4)
	require.NoError(t, deposit.Apply(account))

	var chargeback = deposit.Dispute().Chargeback()
	require.Equal(t, ledger.KindChargeback, chargeback.Kind())
	require.NoError(t, deposit.Dispute().Apply(account))
	require.NoError(t, chargeback.Apply(account))

	var available, held, locked = account.Balances()
	require.True(t, available.IsZero())
	require.True(t, held.IsZero())
	require.True(t, locked)
}

func TestWithdrawalApplies(t *testing.T) {
	var withdrawal, err = NewWithdrawal(TransactionEvent{
		ID: 3, Type: TypeWithdrawal, Client: 1, Amount: amountOf(t, "4.0")})
	require.NoError(t, err)
	require.Equal(t, ledger.KindWithdrawal, withdrawal.Kind())

	var account = ledger.NewAccount(1)
	require.NoError(t, account.Credit(1, *amountOf(t, "11.0")))
	require.NoError(t, withdrawal.Apply(account))

	var available, _, _ = account.Balances()
	require.True(t, available.Equal(*amountOf(t, "7.0")))
}
