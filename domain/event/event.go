// Package event defines the outbound events fanned out to connected participants.
package event

import (
	"chat-relay/domain"

	"github.com/google/uuid"
)

// Type is the wire discriminant of an event.
type Type string

const (
	TypeRoomConnected     Type = "room-connected"
	TypeParticipantJoined Type = "participant-joined"
	TypeParticipantLeft   Type = "participant-left"
	TypeChat              Type = "chat"
	TypeError             Type = "error"
)

type Event interface {
	EventType() Type
}

// RoomConnected is delivered to a newly admitted connection only,
// carrying the full participant snapshot including itself.
type RoomConnected struct {
	Participants []domain.Participant
}

func (RoomConnected) EventType() Type { return TypeRoomConnected }

type ParticipantJoined struct {
	ClientID domain.ClientID
	JoinedAt domain.Timestamp
}

func (ParticipantJoined) EventType() Type { return TypeParticipantJoined }

type ParticipantLeft struct {
	ClientID domain.ClientID
	LeftAt   domain.Timestamp
}

func (ParticipantLeft) EventType() Type { return TypeParticipantLeft }

type ChatPosted struct {
	ID      uuid.UUID
	From    domain.ClientID
	Content domain.MessageContent
	SentAt  domain.Timestamp
}

func (ChatPosted) EventType() Type { return TypeChat }

// Rejected is sent to the offending connection only, so a refused
// message is distinguishable from a delivered one.
type Rejected struct {
	Reason string
}

func (Rejected) EventType() Type { return TypeError }
