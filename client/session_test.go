package client

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/infrastructure/wire"
	"chat-relay/infrastructure/ws"
	"chat-relay/runtime"
	"chat-relay/services"
)

// safeBuffer guards the session output, written from the read loop
// goroutine while the test inspects it.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func startRelay(t *testing.T) *httptest.Server {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := runtime.NewRegistry()
	broadcaster := runtime.NewBroadcaster(log, registry)
	room := domain.NewRoom("default", domain.Timestamp(0))
	service := services.NewRoomService(log, domain.SystemClock{}, room, registry, broadcaster)

	server := httptest.NewServer(ws.NewHandler(log, service, 16))
	t.Cleanup(server.Close)
	return server
}

func relayWsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/"
}

func newSessionUnderTest(t *testing.T, server *httptest.Server, clientID string) (*Session, *safeBuffer, *Timeline) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	out := &safeBuffer{}
	timeline := NewTimeline(clientID)
	formatter := Formatter{Me: clientID, Colours: false}
	session := NewSession(log, relayWsURL(server), clientID,
		domain.SystemClock{}, out, formatter, timeline)
	return session, out, timeline
}

func TestSession_GracefulCloseReturnsNil(t *testing.T) {
	req := require.New(t)
	server := startRelay(t)
	session, out, _ := newSessionUnderTest(t, server, "alice")

	lines := make(chan string)
	connected := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- session.Run(context.Background(), func() { close(connected) }, lines)
	}()

	select {
	case <-connected:
	case <-time.After(2 * time.Second):
		req.Fail("Session should have connected")
	}

	// When the input source ends
	close(lines)

	// Then the session ends without an error
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(2 * time.Second):
		req.Fail("Session should have ended after input closed")
	}
	req.Contains(out.String(), `You are "alice"`)
}

func TestSession_DuplicateIdentityIsDistinguishable(t *testing.T) {
	req := require.New(t)
	server := startRelay(t)

	// Given alice's identity is held by a live raw connection
	conn, resp, err := websocket.DefaultDialer.Dial(relayWsURL(server)+"?client_id=alice", nil)
	req.NoError(err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	session, _, _ := newSessionUnderTest(t, server, "alice")

	// When a session claims the same identity
	err = session.Run(context.Background(), func() {
		req.Fail("onConnected must not fire on a refused handshake")
	}, make(chan string))

	// Then the refusal is matchable by the caller
	req.ErrorIs(err, errors.ErrDuplicateIdentity)
}

func TestSession_SendsAndRendersChat(t *testing.T) {
	req := require.New(t)
	server := startRelay(t)
	session, out, timeline := newSessionUnderTest(t, server, "alice")

	lines := make(chan string)
	connected := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- session.Run(context.Background(), func() { close(connected) }, lines)
	}()
	select {
	case <-connected:
	case <-time.After(2 * time.Second):
		req.Fail("Session should have connected")
	}

	// Given bob on a raw connection
	bob, resp, err := websocket.DefaultDialer.Dial(relayWsURL(server)+"?client_id=bob", nil)
	req.NoError(err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = bob.Close() })
	// Drain bob's own room-connected frame
	req.NoError(bob.SetReadDeadline(time.Now().Add(2 * time.Second)))
	_, _, err = bob.ReadMessage()
	req.NoError(err)

	// When alice types a line
	lines <- "hi bob"

	// Then bob receives the chat
	req.NoError(bob.SetReadDeadline(time.Now().Add(2 * time.Second)))
	_, raw, err := bob.ReadMessage()
	req.NoError(err)
	var chat wire.ChatFrame
	req.NoError(json.Unmarshal(raw, &chat))
	req.Equal("chat", chat.Type)
	req.Equal("alice", chat.From)
	req.Equal("hi bob", chat.Content)

	// And alice saw her send confirmed and bob's arrival rendered
	req.Eventually(func() bool {
		rendered := out.String()
		return strings.Contains(rendered, "sent at") && strings.Contains(rendered, "+ bob entered")
	}, 2*time.Second, 20*time.Millisecond)

	// When bob replies
	req.NoError(bob.WriteJSON(wire.InboundFrame{Type: "chat", Content: "hello alice"}))

	// Then alice renders it and records it on her timeline
	req.Eventually(func() bool {
		return strings.Contains(out.String(), "@bob") &&
			strings.Contains(out.String(), "hello alice") &&
			len(timeline.Messages()) == 1
	}, 2*time.Second, 20*time.Millisecond)
	req.Equal(domain.MessageContent("hello alice"), timeline.Messages()[0].Content)

	close(lines)
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(2 * time.Second):
		req.Fail("Session should have ended after input closed")
	}
}

func TestSession_BlankLinesAreNotSent(t *testing.T) {
	req := require.New(t)
	server := startRelay(t)
	session, out, _ := newSessionUnderTest(t, server, "alice")

	lines := make(chan string)
	connected := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- session.Run(context.Background(), func() { close(connected) }, lines)
	}()
	select {
	case <-connected:
	case <-time.After(2 * time.Second):
		req.Fail("Session should have connected")
	}

	// When only whitespace is typed
	lines <- "   "
	close(lines)

	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(2 * time.Second):
		req.Fail("Session should have ended after input closed")
	}

	// Then nothing was sent, so nothing was confirmed
	req.NotContains(out.String(), "sent at")
}
