// Package ingest decodes the input transaction log. It is the single
// external source of the pipeline: a finite, ordered CSV stream of
// transaction events.
package ingest

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/paysys/payline/go/txn"
)

// Structural problems of the stream are fatal: a Reader error aborts
// the whole pipeline (recoverable, event-level problems are instead
// decided downstream by the shards and the processor).

var header = [...]string{"type", "client", "tx", "amount"}

// Reader decodes TransactionEvents from a CSV stream. The stream must
// open with the header row "type,client,tx,amount".
type Reader struct {
	csv  *csv.Reader
	line int
}

// NewReader builds a Reader over |r|, consuming and validating the
// header row.
func NewReader(r io.Reader) (*Reader, error) {
	var cr = csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = len(header)

	var row, err = cr.Read()
	if err == io.EOF {
		return nil, errors.New("missing CSV header row")
	} else if err != nil {
		return nil, errors.Wrap(err, "reading CSV header")
	}
	for i, name := range header {
		if strings.TrimSpace(row[i]) != name {
			return nil, errors.Errorf("malformed CSV header: expected column %d to be %q, found %q", i, name, row[i])
		}
	}
	return &Reader{csv: cr, line: 1}, nil
}

// Next returns the next decoded event, or io.EOF at end of stream.
// Any other error is fatal to ingestion.
func (r *Reader) Next() (txn.TransactionEvent, error) {
	var row, err = r.csv.Read()
	if err == io.EOF {
		return txn.TransactionEvent{}, io.EOF
	} else if err != nil {
		return txn.TransactionEvent{}, errors.Wrap(err, "reading CSV record")
	}
	r.line++

	var event txn.TransactionEvent

	if event.Type, err = txn.ParseEventType(strings.TrimSpace(row[0])); err != nil {
		return txn.TransactionEvent{}, errors.Wrapf(err, "record %d", r.line)
	}
	client, err := strconv.ParseUint(strings.TrimSpace(row[1]), 10, 16)
	if err != nil {
		return txn.TransactionEvent{}, errors.Wrapf(err, "record %d: parsing client id", r.line)
	}
	event.Client = uint16(client)

	id, err := strconv.ParseUint(strings.TrimSpace(row[2]), 10, 32)
	if err != nil {
		return txn.TransactionEvent{}, errors.Wrapf(err, "record %d: parsing transaction id", r.line)
	}
	event.ID = uint32(id)

	// The amount column is decoded only for types which carry one.
	// Dispute-family events reference a prior transaction: their
	// amount column is ignored, whatever its content.
	if raw := strings.TrimSpace(row[3]); event.Type.HasAmount() && raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return txn.TransactionEvent{}, errors.Wrapf(err, "record %d: parsing amount", r.line)
		}
		amount = amount.Truncate(4)
		event.Amount = &amount
	}
	return event, nil
}
