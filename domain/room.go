package domain

import "sync"

type RoomID string

// Room owns the transcript: the ordered history of accepted messages.
// Transcript order reflects acceptance order, not socket arrival order.
// Participants live in the runtime registry, not here.
type Room struct {
	ID        RoomID
	CreatedAt Timestamp

	mu         sync.Mutex
	transcript []ChatMessage
}

func NewRoom(id RoomID, createdAt Timestamp) *Room {
	return &Room{
		ID:        id,
		CreatedAt: createdAt,
	}
}

func (r *Room) PostMessage(message ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transcript = append(r.transcript, message)
}

// Transcript returns a copy of the accepted message history.
func (r *Room) Transcript() []ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ChatMessage, len(r.transcript))
	copy(out, r.transcript)
	return out
}
