// Package shard implements the per-client transaction workers and the
// dispute lifecycle state machine.
package shard

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/paysys/payline/go/ledger"
	"github.com/paysys/payline/go/txn"
)

var eventsDroppedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "payline_events_dropped_total",
	Help: "The number of transaction events dropped by a shard",
}, []string{"shard", "reason"})

// Drop reasons of events which don't produce an apply-intent.
const (
	dropDuplicateTx    = "duplicate-tx"
	dropExpectedAmount = "expected-amount"
	dropUnknownTx      = "unknown-tx"
	dropNotDisputable  = "not-disputable"
	dropClientMismatch = "client-mismatch"
	dropAlreadyPending = "already-pending"
	dropNotPending     = "not-pending"
)

// record tracks one settled transaction owned by this shard.
//
// Its lifecycle:
//
//	(absent) --deposit--> settled --dispute--> disputed --resolve----> settled
//	                                           disputed --chargeback-> charged
//
// Withdrawals enter settled and stay there; only deposits carry a
// stage value to transition. A charged record is terminal.
type record struct {
	client  uint16
	deposit *txn.Deposit // nil for withdrawals
	pending *txn.Dispute // non-nil while disputed
	charged bool
}

// Shard consumes the events of the clients it owns, drives each
// referenced transaction through its lifecycle, and forwards the
// resulting apply-intents to the account processor. Because a client's
// events all land on one shard, its tables need no coordination.
type Shard struct {
	id      int
	input   <-chan txn.TransactionEvent
	intents chan<- ledger.Transactable

	// feedback carries dispute intents the processor rejected, whose
	// pending entries must be cleared.
	feedback <-chan ledger.DisputeRejection

	// table indexes every deposit and withdrawal this shard has seen,
	// by transaction id. First occurrence wins; it is never evicted,
	// so any later dispute can recover the original amount without
	// re-reading the source.
	table map[uint32]*record
}

// NewShard builds shard |id| consuming |input| and forwarding intents.
func NewShard(
	id int,
	input <-chan txn.TransactionEvent,
	feedback <-chan ledger.DisputeRejection,
	intents chan<- ledger.Transactable,
) *Shard {
	return &Shard{
		id:       id,
		input:    input,
		feedback: feedback,
		intents:  intents,
		table:    make(map[uint32]*record),
	}
}

// Run consumes events until the input queue closes. Shutdown always
// arrives as queue closure from the router; suspension points are the
// input receive and the intent send only.
func (s *Shard) Run() error {
	for {
		// Clear rejected disputes ahead of new events, so a resolve
		// or chargeback racing the rejection usually observes the
		// cleared entry. A lost race is safe: the stale intent is
		// rejected by the processor's held-balance check.
		for {
			select {
			case rejection := <-s.feedback:
				s.onRejectedDispute(rejection)
				continue
			default:
			}
			break
		}

		var event, ok = <-s.input
		if !ok {
			return nil
		}
		if intent, ok := s.onEvent(event); ok {
			s.intents <- intent
		}
	}
}

// onEvent advances the state machine for one event, returning the
// apply-intent to forward, if any. Illegal or unknown transitions are
// dropped, not errors.
func (s *Shard) onEvent(event txn.TransactionEvent) (ledger.Transactable, bool) {
	switch event.Type {
	case txn.TypeDeposit, txn.TypeWithdrawal:
		return s.onSettle(event)
	case txn.TypeDispute:
		return s.onDispute(event)
	case txn.TypeResolve, txn.TypeChargeback:
		return s.onClose(event)
	default:
		return nil, false
	}
}

func (s *Shard) onSettle(event txn.TransactionEvent) (ledger.Transactable, bool) {
	if _, ok := s.table[event.ID]; ok {
		return s.drop(event, dropDuplicateTx)
	}

	if event.Type == txn.TypeDeposit {
		var deposit, err = txn.NewDeposit(event)
		if err != nil {
			return s.drop(event, dropExpectedAmount)
		}
		s.table[event.ID] = &record{client: event.Client, deposit: &deposit}
		return deposit, true
	}

	var withdrawal, err = txn.NewWithdrawal(event)
	if err != nil {
		return s.drop(event, dropExpectedAmount)
	}
	s.table[event.ID] = &record{client: event.Client}
	return withdrawal, true
}

func (s *Shard) onDispute(event txn.TransactionEvent) (ledger.Transactable, bool) {
	var rec, ok = s.table[event.ID]
	if !ok {
		return s.drop(event, dropUnknownTx)
	} else if rec.client != event.Client {
		return s.drop(event, dropClientMismatch)
	} else if rec.deposit == nil || rec.charged {
		return s.drop(event, dropNotDisputable)
	} else if rec.pending != nil {
		return s.drop(event, dropAlreadyPending)
	}

	var dispute = rec.deposit.Dispute()
	rec.pending = &dispute
	return dispute, true
}

func (s *Shard) onClose(event txn.TransactionEvent) (ledger.Transactable, bool) {
	var rec, ok = s.table[event.ID]
	if !ok || rec.pending == nil {
		return s.drop(event, dropNotPending)
	} else if rec.client != event.Client {
		return s.drop(event, dropClientMismatch)
	}

	var pending = *rec.pending
	rec.pending = nil

	if event.Type == txn.TypeResolve {
		return pending.Resolve(), true
	}
	rec.charged = true
	return pending.Chargeback(), true
}

// onRejectedDispute clears the pending entry of a dispute the
// processor refused, returning the transaction to its settled state.
func (s *Shard) onRejectedDispute(rejection ledger.DisputeRejection) {
	var rec, ok = s.table[rejection.Tx]
	if !ok || rec.pending == nil || rec.client != rejection.Client {
		return
	}
	rec.pending = nil

	log.WithFields(log.Fields{
		"shard":  s.id,
		"client": rejection.Client,
		"tx":     rejection.Tx,
	}).Info("cleared pending entry of rejected dispute")
}

func (s *Shard) drop(event txn.TransactionEvent, reason string) (ledger.Transactable, bool) {
	eventsDroppedCounter.WithLabelValues(strconv.Itoa(s.id), reason).Inc()

	log.WithFields(log.Fields{
		"shard":  s.id,
		"client": event.Client,
		"tx":     event.ID,
		"type":   event.Type,
		"reason": reason,
	}).Info("dropped transaction event")
	return nil, false
}
