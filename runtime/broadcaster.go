package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"log/slog"
)

// Broadcaster fans one event out to the registry's current sink set.
//
// Best-effort delivery: a sink that rejects an event is logged, never
// retried, and never escalated to the caller. The failing connection's
// own read/write task is the signal that eventually unregisters it.
// Sends are non-blocking, so a stalled consumer cannot stall admission.
type Broadcaster struct {
	log      *slog.Logger
	registry contract.IRegistry
}

func NewBroadcaster(log *slog.Logger, registry contract.IRegistry) *Broadcaster {
	return &Broadcaster{log: log, registry: registry}
}

func (b *Broadcaster) Broadcast(e event.Event) {
	b.fanout(b.registry.Sinks(), e)
}

func (b *Broadcaster) BroadcastExcept(e event.Event, exclude domain.ClientID) {
	b.fanout(b.registry.SinksExcept(exclude), e)
}

// fanout iterates a point-in-time copy of the sink set, outside the
// registry lock.
func (b *Broadcaster) fanout(sinks []contract.EventSink, e event.Event) {
	for _, sink := range sinks {
		if err := sink.Consume(e); err != nil {
			b.log.Warn("Sink rejected event", "type", e.EventType(), "error", err)
		}
	}
}
