package domain

import "github.com/google/uuid"

// ChatMessage is an immutable chat event, appended to the room
// transcript only after validation and admission.
type ChatMessage struct {
	ID      uuid.UUID
	From    ClientID
	Content MessageContent
	SentAt  Timestamp
}

func NewChatMessage(from ClientID, content MessageContent, sentAt Timestamp) ChatMessage {
	return ChatMessage{
		ID:      uuid.New(),
		From:    from,
		Content: content,
		SentAt:  sentAt,
	}
}
