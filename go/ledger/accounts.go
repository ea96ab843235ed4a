package ledger

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Accounts indexes Account state by client id. It's owned exclusively
// by the Processor while the pipeline runs, and handed to the caller
// for rendering once the intent queue drains.
type Accounts map[uint16]*Account

// getOrCreate returns the Account of |client|, creating it with zero
// balances on first reference.
func (m Accounts) getOrCreate(client uint16) *Account {
	var account, ok = m[client]
	if !ok {
		account = NewAccount(client)
		m[client] = account
	}
	return account
}

// WriteCSV renders the final account states in the output format:
// a header row, then one row per account ordered by client id.
func (m Accounts) WriteCSV(w io.Writer) error {
	var ids = make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	if _, err := io.WriteString(w, "client,available,held,total,locked\n"); err != nil {
		return err
	}
	for _, id := range ids {
		var available, held, locked = m[uint16(id)].Balances()

		var _, err = fmt.Fprintf(w, "%d,%s,%s,%s,%t\n",
			id,
			FormatAmount(available),
			FormatAmount(held),
			FormatAmount(available.Add(held)),
			locked,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// FormatAmount renders a balance at up to four fractional digits,
// trimming trailing zeros but always keeping at least one fractional
// digit: 1.0, 1.5, 1.5001.
func FormatAmount(d decimal.Decimal) string {
	var s = strings.TrimRight(d.StringFixed(4), "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}
