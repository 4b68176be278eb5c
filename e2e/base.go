package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"chat-relay/infrastructure/wire"
)

const frameTimeout = 5 * time.Second

type BaseRelaySuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseRelaySuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerAddr == "" {
		s.T().Skip("E2E_SERVER_ADDR not set, skipping relay e2e suite")
	}
}

// Header prints a colorized step header in logs
func (s *BaseRelaySuite) Header(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// WsURL builds the upgrade URL for a given identity
func (s *BaseRelaySuite) WsURL(clientID string) string {
	u := url.URL{
		Scheme:   "ws",
		Host:     s.Config.ServerAddr,
		Path:     "/ws",
		RawQuery: url.Values{"client_id": {clientID}}.Encode(),
	}
	return u.String()
}

// Dial opens a websocket session and returns the connection plus the HTTP
// response, so callers can assert on pre-upgrade rejections (400, 409).
func (s *BaseRelaySuite) Dial(name string, clientID string) (*websocket.Conn, *http.Response, error) {
	s.Header(s.T(), name)
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = frameTimeout
	return dialer.Dial(s.WsURL(clientID), nil)
}

// MustDial is Dial for the happy path
func (s *BaseRelaySuite) MustDial(name string, clientID string) *websocket.Conn {
	conn, resp, err := s.Dial(name, clientID)
	s.Require().NoError(err, "Failed to open session for "+clientID)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	return conn
}

// ReadFrame blocks for the next frame and returns its discriminant plus the
// raw bytes for a typed decode by the caller.
func (s *BaseRelaySuite) ReadFrame(conn *websocket.Conn) (string, []byte) {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(frameTimeout)))
	_, raw, err := conn.ReadMessage()
	s.Require().NoError(err, "Expected a frame before the read deadline")

	if s.Config.DebugJSON {
		s.T().Logf("FRAME: %s", raw)
	}

	var envelope wire.Envelope
	s.Require().NoError(json.Unmarshal(raw, &envelope))
	return envelope.Type, raw
}

// SendChat posts a message through an open session
func (s *BaseRelaySuite) SendChat(conn *websocket.Conn, content string) {
	frame := wire.InboundFrame{Type: "chat", Content: content}
	s.Require().NoError(conn.WriteJSON(frame))
}

// DecodeInto unmarshals a raw frame into the given typed frame
func (s *BaseRelaySuite) DecodeInto(raw []byte, target any) {
	s.Require().NoError(json.Unmarshal(raw, target))
}
