package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
)

var intentsCommittedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "payline_intents_committed_total",
	Help: "The number of apply-intents committed to account state",
}, []string{"kind"})

var intentsRejectedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "payline_intents_rejected_total",
	Help: "The number of apply-intents rejected by a balance or lock invariant",
}, []string{"kind", "reason"})

// Kinds of apply-intents, one per lifecycle stage.
const (
	KindDeposit    = "deposit"
	KindWithdrawal = "withdrawal"
	KindDispute    = "dispute"
	KindResolve    = "resolve"
	KindChargeback = "chargeback"
)

// Transactable is an apply-intent: a fully resolved instruction for a
// single account mutation, handed from a shard to the Processor.
type Transactable interface {
	// Apply mutates the account, or returns a rejection error and
	// leaves it untouched.
	Apply(*Account) error
	// Client is the id of the account this intent targets.
	Client() uint16
	// ID is the transaction id the intent was synthesized from.
	ID() uint32
	// Kind names the lifecycle stage of this intent.
	Kind() string
}

// DisputeRejection reports a dispute intent the Processor rejected,
// so the owning shard can clear its pending entry.
type DisputeRejection struct {
	Client uint16
	Tx     uint32
}

// Processor is the single fan-in consumer owning all account state.
// It applies each intent from its queue under the target account's
// exclusive guard. Rejections are logged and counted, and rejected
// dispute intents are reported back through the onRejectedDispute
// callback.
type Processor struct {
	accounts Accounts
	intents  <-chan Transactable

	// onRejectedDispute, when non-nil, is invoked from the Processor
	// task for every rejected dispute intent. It must not block.
	onRejectedDispute func(DisputeRejection)
}

// NewProcessor returns a Processor consuming |intents|.
func NewProcessor(intents <-chan Transactable, onRejectedDispute func(DisputeRejection)) *Processor {
	return &Processor{
		accounts:          make(Accounts),
		intents:           intents,
		onRejectedDispute: onRejectedDispute,
	}
}

// Run consumes intents until the queue closes. Rejected intents never
// alter account state and never fail the pipeline. There's no other
// exit: shutdown always arrives as closure of the intent queue, after
// the shards drain.
func (p *Processor) Run() error {
	for intent := range p.intents {
		var account = p.accounts.getOrCreate(intent.Client())

		if err := intent.Apply(account); err != nil {
			var reason = ReasonOf(err)
			intentsRejectedCounter.WithLabelValues(intent.Kind(), reason).Inc()

			log.WithFields(log.Fields{
				"client": intent.Client(),
				"tx":     intent.ID(),
				"kind":   intent.Kind(),
				"reason": reason,
			}).Warn("rejected transaction")

			if intent.Kind() == KindDispute && p.onRejectedDispute != nil {
				p.onRejectedDispute(DisputeRejection{Client: intent.Client(), Tx: intent.ID()})
			}
			continue
		}
		intentsCommittedCounter.WithLabelValues(intent.Kind()).Inc()
	}
	return nil
}

// Accounts returns the final account states. Call only after Run has
// returned: ownership of the map transfers to the caller at shutdown.
func (p *Processor) Accounts() Accounts { return p.accounts }
