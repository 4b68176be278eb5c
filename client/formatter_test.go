package client

import (
	"chat-relay/domain"
	"chat-relay/infrastructure/wire"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatter_RoomConnectedMarksSelf(t *testing.T) {
	req := require.New(t)
	formatter := Formatter{Me: "alice", Colours: false}

	out := formatter.RoomConnected([]wire.ParticipantDTO{
		{ClientID: "alice", JoinedAt: 1672498800000},
		{ClientID: "bob", JoinedAt: 1672498900000},
	})

	req.Contains(out, "alice (me)")
	req.Contains(out, "bob")
	req.NotContains(out, "bob (me)")
	req.Contains(out, "2023-01-01T00:00:00+09:00")
}

func TestFormatter_JoinAndLeaveLines(t *testing.T) {
	req := require.New(t)
	formatter := Formatter{Me: "alice", Colours: false}

	joined := formatter.ParticipantJoined(wire.ParticipantJoinedFrame{
		ClientID: "bob", JoinedAt: 1672498800000,
	})
	req.Contains(joined, "+ bob entered at 2023-01-01T00:00:00+09:00")

	left := formatter.ParticipantLeft(wire.ParticipantLeftFrame{
		ClientID: "bob", LeftAt: 1672498800000,
	})
	req.Contains(left, "- bob left at 2023-01-01T00:00:00+09:00")
}

func TestFormatter_ChatShowsSenderContentAndTime(t *testing.T) {
	req := require.New(t)
	formatter := Formatter{Me: "alice", Colours: false}

	out := formatter.Chat(wire.ChatFrame{
		From: "bob", Content: "hello there", SentAt: 1672498800000,
	})

	req.Contains(out, "@bob")
	req.Contains(out, "hello there")
	req.Contains(out, "sent at 2023-01-01T00:00:00+09:00")
}

func TestFormatter_RejectedShowsReason(t *testing.T) {
	req := require.New(t)
	formatter := Formatter{Me: "alice", Colours: false}

	out := formatter.Rejected(wire.ErrorFrame{Reason: "message content is empty"})

	req.Contains(out, "message rejected")
	req.Contains(out, "message content is empty")
}

func TestFormatter_SentConfirmation(t *testing.T) {
	req := require.New(t)
	formatter := Formatter{Me: "alice", Colours: false}

	out := formatter.SentConfirmation(domain.Timestamp(1672498800000))

	req.Equal("sent at 2023-01-01T00:00:00+09:00\n", out)
}
