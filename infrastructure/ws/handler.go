package ws

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/infrastructure/wire"
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const closeWriteTimeout = time.Second

// Handler upgrades HTTP requests into relay sessions. Admission happens
// before the upgrade so a duplicate identity can be refused with a
// plain 409 and no Participant is ever created for it.
type Handler struct {
	log        *slog.Logger
	service    contract.IRoomService
	bufferSize int
	upgrader   websocket.Upgrader

	mu       sync.Mutex
	draining bool
	sinks    map[*Sink]struct{}
	sessions sync.WaitGroup
}

func NewHandler(log *slog.Logger, service contract.IRoomService, bufferSize int) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		bufferSize: bufferSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sinks: make(map[*Sink]struct{}),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := domain.NewClientID(r.URL.Query().Get("client_id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sink := NewSink(h.log, h.bufferSize)
	if !h.admitSink(sink) {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}

	if err := h.service.Connect(id, sink); err != nil {
		h.forgetSink(sink)
		if stderrors.Is(err, errors.ErrDuplicateIdentity) {
			http.Error(w, "client_id already connected", http.StatusConflict)
			return
		}
		http.Error(w, "admission failed", http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade failed after admission: roll back as a normal leave.
		h.log.Warn("Upgrade failed", "client_id", id, "error", err)
		h.service.Disconnect(id)
		h.forgetSink(sink)
		sink.Close()
		return
	}

	h.sessions.Add(1)
	go func() {
		defer h.sessions.Done()
		h.runSession(conn, id, sink)
	}()
}

// runSession drives one connection until its socket dies or the server
// drains. Inbound frames are processed strictly sequentially, so no
// chat broadcast can follow this connection's participant-left.
func (h *Handler) runSession(conn *websocket.Conn, id domain.ClientID, sink *Sink) {
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writePump(conn, sink)
	}()

	h.readPump(conn, id, sink)

	// unregister exactly once per connection lifetime
	h.service.Disconnect(id)
	h.forgetSink(sink)
	sink.Close()
	<-writerDone
	_ = conn.Close()
	h.log.Info("Session closed", "client_id", id)
}

func (h *Handler) readPump(conn *websocket.Conn, id domain.ClientID, sink *Sink) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Warn("Read failed", "client_id", id, "error", err)
			}
			return
		}

		var frame wire.InboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.reject(sink, id, "malformed frame")
			continue
		}
		if err := wire.ValidateInbound(frame); err != nil {
			h.reject(sink, id, err.Error())
			continue
		}
		if err := h.service.PostMessage(id, frame.Content); err != nil {
			h.reject(sink, id, err.Error())
		}
	}
}

// reject answers the offending connection only; the room never sees it.
func (h *Handler) reject(sink *Sink, id domain.ClientID, reason string) {
	h.log.Warn("Rejecting inbound frame", "client_id", id, "reason", reason)
	if err := sink.Consume(event.Rejected{Reason: reason}); err != nil {
		h.log.Warn("Failed to deliver rejection", "client_id", id, "error", err)
	}
}

func (h *Handler) writePump(conn *websocket.Conn, sink *Sink) {
	for {
		select {
		case e := <-sink.Events():
			frame, err := wire.FromEvent(e)
			if err != nil {
				h.log.Error("Unmappable event", "error", err)
				continue
			}
			if err := conn.WriteJSON(frame); err != nil {
				// The read side will observe the dead socket and unregister.
				h.log.Warn("Write failed", "error", err)
				return
			}
		case <-sink.Closed():
			deadline := time.Now().Add(closeWriteTimeout)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), deadline)
			return
		}
	}
}

func (h *Handler) admitSink(sink *Sink) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.draining {
		return false
	}
	h.sinks[sink] = struct{}{}
	return true
}

func (h *Handler) forgetSink(sink *Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sinks, sink)
}

// Shutdown stops admitting connections, asks every live session to
// close, and waits for in-flight sends to flush until ctx expires.
func (h *Handler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.draining = true
	for sink := range h.sinks {
		sink.Close()
	}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.sessions.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
