package services

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"fmt"
	"log/slog"
	"sync"
)

// RoomService drives the per-connection session protocol:
// admission, chat acceptance, and removal. It is the room's single
// exclusive-access domain: the three operations are serialized, so the
// transcript order matches the order every recipient observes.
// Holding the lock is safe because every sink send is non-blocking.
type RoomService struct {
	mu          sync.Mutex
	log         *slog.Logger
	clock       domain.Clock
	room        *domain.Room
	registry    contract.IRegistry
	broadcaster contract.IBroadcaster
}

func NewRoomService(log *slog.Logger, clock domain.Clock, room *domain.Room,
	registry contract.IRegistry, broadcaster contract.IBroadcaster) *RoomService {
	return &RoomService{
		log:         log,
		clock:       clock,
		room:        room,
		registry:    registry,
		broadcaster: broadcaster,
	}
}

// Connect admits a new participant. On duplicate identity nothing is
// mutated and no broadcast occurs: the transport must refuse the
// upgrade. On success the joiner receives room-connected with the full
// snapshot, then everyone else receives participant-joined, both before
// any chat frame from this connection can be accepted.
func (s *RoomService) Connect(id domain.ClientID, sink contract.EventSink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	snapshot, err := s.registry.Register(id, sink, now)
	if err != nil {
		s.log.Warn("Admission refused", "client_id", id, "error", err)
		return err
	}

	if err := sink.Consume(event.RoomConnected{Participants: snapshot}); err != nil {
		s.log.Warn("Failed to deliver room-connected", "client_id", id, "error", err)
	}
	s.broadcaster.BroadcastExcept(event.ParticipantJoined{ClientID: id, JoinedAt: now}, id)

	s.log.Info("Participant admitted", "client_id", id, "participants", len(snapshot))
	return nil
}

// PostMessage validates inbound text, appends it to the transcript with
// a freshly minted timestamp, and fans it out to everyone but the
// sender. A validation error rejects only this message.
func (s *RoomService) PostMessage(from domain.ClientID, raw string) error {
	content, err := domain.NewMessageContent(raw)
	if err != nil {
		return fmt.Errorf("message from %q rejected: %w", from, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg := domain.NewChatMessage(from, content, s.clock.Now())
	s.room.PostMessage(msg)
	s.broadcaster.BroadcastExcept(event.ChatPosted{
		ID:      msg.ID,
		From:    msg.From,
		Content: msg.Content,
		SentAt:  msg.SentAt,
	}, from)
	return nil
}

// Disconnect removes the participant and notifies the remaining ones.
// Idempotent: a second call for the same identity is a no-op and
// triggers no duplicate participant-left.
func (s *RoomService) Disconnect(id domain.ClientID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	participant, ok := s.registry.Unregister(id)
	if !ok {
		return
	}

	// The leaver is already out of the sink set, no exclusion needed.
	s.broadcaster.Broadcast(event.ParticipantLeft{
		ClientID: participant.ID,
		LeftAt:   s.clock.Now(),
	})
	s.log.Info("Participant left", "client_id", id)
}

func (s *RoomService) Snapshot() []domain.Participant {
	return s.registry.Snapshot()
}

func (s *RoomService) RoomInfo() (domain.RoomID, domain.Timestamp) {
	return s.room.ID, s.room.CreatedAt
}
