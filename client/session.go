package client

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/infrastructure/wire"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Session owns one websocket connection to the relay. Input lines are
// consumed from a channel the caller feeds (a stdin reader usually),
// so the same input source survives reconnections.
type Session struct {
	log       *slog.Logger
	serverURL string
	clientID  string
	clock     domain.Clock
	dialer    *websocket.Dialer
	out       io.Writer
	formatter Formatter
	timeline  *Timeline
}

func NewSession(log *slog.Logger, serverURL, clientID string, clock domain.Clock,
	out io.Writer, formatter Formatter, timeline *Timeline) *Session {
	return &Session{
		log:       log,
		serverURL: serverURL,
		clientID:  clientID,
		clock:     clock,
		dialer:    websocket.DefaultDialer,
		out:       out,
		formatter: formatter,
		timeline:  timeline,
	}
}

// Run dials, joins the room, and pumps frames until the connection
// drops, the input channel closes, or ctx is cancelled. A nil return
// means a graceful, user-initiated end.
func (s *Session) Run(ctx context.Context, onConnected func(), lines <-chan string) error {
	target := fmt.Sprintf("%s?client_id=%s", s.serverURL, url.QueryEscape(s.clientID))

	conn, resp, err := s.dialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusConflict {
			return fmt.Errorf("client_id %q: %w", s.clientID, errors.ErrDuplicateIdentity)
		}
		return fmt.Errorf("%w: %v", errors.ErrConnectionLost, err)
	}
	defer conn.Close()

	if onConnected != nil {
		onConnected()
	}
	fmt.Fprintf(s.out, "\nYou are %q. Type messages and press Enter to send. Ctrl+C to exit.\n", s.clientID)

	readErr := make(chan error, 1)
	go s.readLoop(conn, readErr)

	for {
		select {
		case <-ctx.Done():
			s.sendClose(conn)
			return nil
		case err := <-readErr:
			return err
		case line, ok := <-lines:
			if !ok {
				s.sendClose(conn)
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			frame := wire.InboundFrame{Type: string(event.TypeChat), Content: line}
			if err := conn.WriteJSON(frame); err != nil {
				return fmt.Errorf("%w: %v", errors.ErrConnectionLost, err)
			}
			fmt.Fprint(s.out, s.formatter.SentConfirmation(s.clock.Now()))
		}
	}
}

func (s *Session) readLoop(conn *websocket.Conn, readErr chan<- error) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			readErr <- fmt.Errorf("%w: %v", errors.ErrConnectionLost, err)
			return
		}
		s.render(data)
	}
}

// render decodes a frame by its discriminant and prints it.
// Unknown frames are shown raw rather than dropped.
func (s *Session) render(data []byte) {
	var envelope wire.Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		fmt.Fprint(s.out, s.formatter.Raw(data))
		return
	}

	switch event.Type(envelope.Type) {
	case event.TypeRoomConnected:
		var frame wire.RoomConnectedFrame
		if json.Unmarshal(data, &frame) == nil {
			fmt.Fprint(s.out, s.formatter.RoomConnected(frame.Participants))
			return
		}
	case event.TypeParticipantJoined:
		var frame wire.ParticipantJoinedFrame
		if json.Unmarshal(data, &frame) == nil {
			fmt.Fprint(s.out, s.formatter.ParticipantJoined(frame))
			return
		}
	case event.TypeParticipantLeft:
		var frame wire.ParticipantLeftFrame
		if json.Unmarshal(data, &frame) == nil {
			fmt.Fprint(s.out, s.formatter.ParticipantLeft(frame))
			return
		}
	case event.TypeChat:
		var frame wire.ChatFrame
		if json.Unmarshal(data, &frame) == nil {
			s.timeline.Observe(frame)
			fmt.Fprint(s.out, s.formatter.Chat(frame))
			return
		}
	case event.TypeError:
		var frame wire.ErrorFrame
		if json.Unmarshal(data, &frame) == nil {
			fmt.Fprint(s.out, s.formatter.Rejected(frame))
			return
		}
	}
	fmt.Fprint(s.out, s.formatter.Raw(data))
}

func (s *Session) sendClose(conn *websocket.Conn) {
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), deadline)
}
