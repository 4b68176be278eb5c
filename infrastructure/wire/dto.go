// Package wire holds the JSON frames exchanged over the websocket.
// Both the server transport and the terminal client depend on it.
package wire

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = validator.New()

// InboundFrame is the only frame a client may send.
// from and sent_at are assigned server-side on acceptance.
type InboundFrame struct {
	Type    string `json:"type" validate:"required,eq=chat"`
	Content string `json:"content" validate:"required,max=10000"`
}

// ValidateInbound checks the boundary-level shape of a decoded frame.
// Domain constructors re-validate content by rune count.
func ValidateInbound(f InboundFrame) error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("invalid chat frame: %w", err)
	}
	return nil
}

type ParticipantDTO struct {
	ClientID string `json:"client_id"`
	JoinedAt int64  `json:"joined_at"`
}

type RoomConnectedFrame struct {
	Type         string           `json:"type"`
	Participants []ParticipantDTO `json:"participants"`
}

type ParticipantJoinedFrame struct {
	Type     string `json:"type"`
	ClientID string `json:"client_id"`
	JoinedAt int64  `json:"joined_at"`
}

type ParticipantLeftFrame struct {
	Type     string `json:"type"`
	ClientID string `json:"client_id"`
	LeftAt   int64  `json:"left_at"`
}

type ChatFrame struct {
	Type    string `json:"type"`
	From    string `json:"from"`
	Content string `json:"content"`
	SentAt  int64  `json:"sent_at"`
}

type ErrorFrame struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// Envelope is used by readers to sniff the discriminant before the
// full decode.
type Envelope struct {
	Type string `json:"type"`
}

// FromEvent converts an outbound event to its wire frame.
func FromEvent(e event.Event) (any, error) {
	switch evt := e.(type) {
	case event.RoomConnected:
		return RoomConnectedFrame{
			Type:         string(evt.EventType()),
			Participants: toParticipantDTOs(evt.Participants),
		}, nil
	case event.ParticipantJoined:
		return ParticipantJoinedFrame{
			Type:     string(evt.EventType()),
			ClientID: evt.ClientID.String(),
			JoinedAt: evt.JoinedAt.Millis(),
		}, nil
	case event.ParticipantLeft:
		return ParticipantLeftFrame{
			Type:     string(evt.EventType()),
			ClientID: evt.ClientID.String(),
			LeftAt:   evt.LeftAt.Millis(),
		}, nil
	case event.ChatPosted:
		return ChatFrame{
			Type:    string(evt.EventType()),
			From:    evt.From.String(),
			Content: evt.Content.String(),
			SentAt:  evt.SentAt.Millis(),
		}, nil
	case event.Rejected:
		return ErrorFrame{
			Type:   string(evt.EventType()),
			Reason: evt.Reason,
		}, nil
	default:
		return nil, fmt.Errorf("no wire frame for event type %q", e.EventType())
	}
}

func toParticipantDTOs(participants []domain.Participant) []ParticipantDTO {
	return lo.Map(participants, func(p domain.Participant, _ int) ParticipantDTO {
		return ParticipantDTO{
			ClientID: p.ID.String(),
			JoinedAt: p.JoinedAt.Millis(),
		}
	})
}
