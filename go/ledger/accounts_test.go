package ledger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	var cases = []struct {
		in, out string
	}{
		{"0", "0.0"},
		{"1", "1.0"},
		{"1.5", "1.5"},
		{"1.50", "1.5"},
		{"1.5001", "1.5001"},
		{"11.0000", "11.0"},
		{"0.0001", "0.0001"},
		{"12345.6789", "12345.6789"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.out, FormatAmount(amount(t, tc.in)), "input %s", tc.in)
	}
}

func TestAccountsWriteCSVOrdersByClient(t *testing.T) {
	var accounts = make(Accounts)
	require.NoError(t, accounts.getOrCreate(30).Credit(1, amount(t, "1.5")))
	require.NoError(t, accounts.getOrCreate(2).Credit(2, amount(t, "3.0001")))
	require.NoError(t, accounts.getOrCreate(7).Credit(3, amount(t, "4.0")))
	require.NoError(t, accounts.getOrCreate(7).Hold(3, amount(t, "4.0")))
	require.NoError(t, accounts.getOrCreate(7).Chargeback(3, amount(t, "4.0")))

	var out bytes.Buffer
	require.NoError(t, accounts.WriteCSV(&out))

	require.Equal(t,
		"client,available,held,total,locked\n"+
			"2,3.0001,0.0,3.0001,false\n"+
			"7,0.0,0.0,0.0,true\n"+
			"30,1.5,0.0,1.5,false\n",
		out.String())
}

func TestAccountsGetOrCreateIsIdempotent(t *testing.T) {
	var accounts = make(Accounts)
	var a = accounts.getOrCreate(42)
	require.Same(t, a, accounts.getOrCreate(42))
	require.Len(t, accounts, 1)
}
