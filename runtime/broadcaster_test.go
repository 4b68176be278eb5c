package runtime

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/mocks"
	"fmt"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestBroadcaster_DeliversToEverySink(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := NewRegistry()
	aliceSink := mocks.NewMockEventSink(ctrl)
	bobSink := mocks.NewMockEventSink(ctrl)
	_, err := registry.Register("alice", aliceSink, domain.Timestamp(1000))
	req.NoError(err)
	_, err = registry.Register("bob", bobSink, domain.Timestamp(2000))
	req.NoError(err)

	posted := event.ChatPosted{From: "system", Content: "hello", SentAt: domain.Timestamp(3000)}
	aliceSink.EXPECT().Consume(posted).Return(nil).Times(1)
	bobSink.EXPECT().Consume(posted).Return(nil).Times(1)

	// When the event is broadcast with no exclusion
	NewBroadcaster(log, registry).Broadcast(posted)
}

func TestBroadcaster_BroadcastExcept_SkipsSender(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := NewRegistry()
	aliceSink := mocks.NewMockEventSink(ctrl)
	bobSink := mocks.NewMockEventSink(ctrl)
	_, err := registry.Register("alice", aliceSink, domain.Timestamp(1000))
	req.NoError(err)
	_, err = registry.Register("bob", bobSink, domain.Timestamp(2000))
	req.NoError(err)

	posted := event.ChatPosted{From: "alice", Content: "hi", SentAt: domain.Timestamp(3000)}

	// Then only bob's sink sees the event
	bobSink.EXPECT().Consume(posted).Return(nil).Times(1)

	NewBroadcaster(log, registry).BroadcastExcept(posted, "alice")
}

func TestBroadcaster_SinkFailureDoesNotStopFanout(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := NewRegistry()
	brokenSink := mocks.NewMockEventSink(ctrl)
	healthySink := mocks.NewMockEventSink(ctrl)
	_, err := registry.Register("broken", brokenSink, domain.Timestamp(1000))
	req.NoError(err)
	_, err = registry.Register("healthy", healthySink, domain.Timestamp(2000))
	req.NoError(err)

	left := event.ParticipantLeft{ClientID: "carol", LeftAt: domain.Timestamp(3000)}

	// Given the first sink rejects the event
	brokenSink.EXPECT().Consume(left).Return(fmt.Errorf("outbound queue full")).Times(1)
	// Then the second still receives it
	healthySink.EXPECT().Consume(left).Return(nil).Times(1)

	NewBroadcaster(log, registry).Broadcast(left)
}
