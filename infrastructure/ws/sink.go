// Package ws is the websocket transport: upgrade handling, the
// per-connection sink, and the read/write pumps.
package ws

import (
	"chat-relay/domain/event"
	"chat-relay/errors"
	"fmt"
	"log/slog"
	"sync"
)

// Sink is the exclusively-owned outbound queue between the broadcast
// engine and one connection's writer goroutine. Consume never blocks:
// the event is queued, or dropped with an error when the connection is
// closed or hopelessly behind. Per-recipient order is preserved because
// the writer drains this single queue.
type Sink struct {
	log       *slog.Logger
	events    chan event.Event
	closed    chan struct{}
	closeOnce sync.Once
}

func NewSink(log *slog.Logger, buffer int) *Sink {
	return &Sink{
		log:    log,
		events: make(chan event.Event, buffer),
		closed: make(chan struct{}),
	}
}

func (s *Sink) Consume(e event.Event) error {
	select {
	case <-s.closed:
		return errors.ErrConnectionLost
	default:
	}

	select {
	case s.events <- e:
		return nil
	default:
		return fmt.Errorf("outbound queue full, dropping %s", e.EventType())
	}
}

func (s *Sink) Events() <-chan event.Event {
	return s.events
}

// Closed signals the writer to send a close frame and stop.
func (s *Sink) Closed() <-chan struct{} {
	return s.closed
}

func (s *Sink) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
}
