// Package runtime assembles the payments pipeline and owns its
// shutdown ordering.
package runtime

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"go.gazette.dev/core/task"

	"github.com/paysys/payline/go/ledger"
	"github.com/paysys/payline/go/router"
	"github.com/paysys/payline/go/shard"
	"github.com/paysys/payline/go/txn"
)

// Config tunes the pipeline. Zero-valued fields take the defaults.
type Config struct {
	// Shards is the number of transaction shards (default 4).
	Shards int
	// QueueSize is the capacity of every pipeline queue (default 10000).
	QueueSize int
}

const (
	defaultShards    = 4
	defaultQueueSize = 10_000
)

func (c Config) validated() Config {
	if c.Shards <= 0 {
		c.Shards = defaultShards
	}
	if c.QueueSize <= 0 {
		c.QueueSize = defaultQueueSize
	}
	return c
}

// Run drives |source| through the full pipeline of router, shards,
// and account processor, and returns the final account states once the
// stream drains. Shutdown propagates as queue closure: the router
// closes the shard queues, the shards drain and jointly close the
// intent queue, and the processor drains and returns its map.
func Run(ctx context.Context, source router.Source, cfg Config) (ledger.Accounts, error) {
	cfg = cfg.validated()

	var (
		intents  = make(chan ledger.Transactable, cfg.QueueSize)
		inputs   = make([]chan txn.TransactionEvent, cfg.Shards)
		feedback = make([]chan ledger.DisputeRejection, cfg.Shards)
	)
	for i := range inputs {
		inputs[i] = make(chan txn.TransactionEvent, cfg.QueueSize)
		feedback[i] = make(chan ledger.DisputeRejection, cfg.QueueSize)
	}

	// Rejected disputes are reported back to the owning shard. The
	// send must not block the processor: on a saturated feedback
	// queue the report is dropped, and the stale pending entry is
	// instead neutralized by the processor's held-balance check.
	var onRejectedDispute = func(r ledger.DisputeRejection) {
		select {
		case feedback[int(r.Client)%cfg.Shards] <- r:
		default:
			log.WithFields(log.Fields{
				"client": r.Client,
				"tx":     r.Tx,
			}).Warn("dropping dispute rejection: feedback queue is full")
		}
	}

	var processor = ledger.NewProcessor(intents, onRejectedDispute)

	var routerInputs = make([]chan<- txn.TransactionEvent, cfg.Shards)
	for i, input := range inputs {
		routerInputs[i] = input
	}

	var tasks = task.NewGroup(ctx)
	tasks.Queue("router", func() error {
		return router.NewRouter(source, routerInputs).Run()
	})

	// The intent queue closes once every shard has drained.
	var draining sync.WaitGroup
	draining.Add(cfg.Shards)

	for i := 0; i != cfg.Shards; i++ {
		var worker = shard.NewShard(i, inputs[i], feedback[i], intents)
		tasks.Queue(fmt.Sprintf("shard-%02d", i), func() error {
			defer draining.Done()
			return worker.Run()
		})
	}
	tasks.Queue("close-intents", func() error {
		draining.Wait()
		close(intents)
		return nil
	})
	tasks.Queue("processor", func() error {
		return processor.Run()
	})

	tasks.GoRun()
	var err = tasks.Wait()

	var accounts = processor.Accounts()
	log.WithFields(log.Fields{
		"accounts": len(accounts),
		"shards":   cfg.Shards,
	}).Info("pipeline drained")

	return accounts, err
}
