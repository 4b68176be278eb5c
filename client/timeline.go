package client

import (
	"chat-relay/domain"
	"chat-relay/infrastructure/wire"
	"sync"
)

// Timeline is a local projection of chat events observed by this
// client. It only accumulates; it never emits or renders.
type Timeline struct {
	Owner string

	mu       sync.Mutex
	messages []domain.ChatMessage
}

func NewTimeline(owner string) *Timeline {
	return &Timeline{Owner: owner}
}

func (t *Timeline) Observe(frame wire.ChatFrame) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, domain.ChatMessage{
		From:    domain.ClientID(frame.From),
		Content: domain.MessageContent(frame.Content),
		SentAt:  domain.Timestamp(frame.SentAt),
	})
}

func (t *Timeline) Messages() []domain.ChatMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.ChatMessage, len(t.messages))
	copy(out, t.messages)
	return out
}
