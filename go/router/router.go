// Package router dispatches decoded transaction events onto
// per-client-affinity shard queues.
package router

import (
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/paysys/payline/go/txn"
)

var eventsRoutedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "payline_events_routed_total",
	Help: "The number of transaction events routed to a shard",
}, []string{"shard"})

// Source produces the finite, ordered event stream the Router drains.
// It returns io.EOF at end of stream; any other error is fatal.
type Source interface {
	Next() (txn.TransactionEvent, error)
}

// Router reads from a Source and dispatches each event to the shard
// queue at index client mod N. Sends block when a queue is full, so
// back-pressure propagates from the shards to the source. All events
// of one client land on one shard in arrival order.
type Router struct {
	source Source
	shards []chan<- txn.TransactionEvent
}

// NewRouter builds a Router over |source| dispatching to |shards|.
func NewRouter(source Source, shards []chan<- txn.TransactionEvent) *Router {
	return &Router{source: source, shards: shards}
}

// Run routes events until the source drains or fails. The shard
// queues are closed on return, propagating shutdown regardless of
// outcome: on a source error the shards and processor still drain
// cleanly before the pipeline reports it. Sends block on a full queue,
// stalling the source until the owning shard catches up.
func (r *Router) Run() error {
	defer func() {
		for _, shard := range r.shards {
			close(shard)
		}
	}()

	for {
		var event, err = r.source.Next()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return errors.Wrap(err, "reading transaction event")
		}

		var index = int(event.Client) % len(r.shards)
		r.shards[index] <- event
		eventsRoutedCounter.WithLabelValues(strconv.Itoa(index)).Inc()
	}
}
