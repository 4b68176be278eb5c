package workers

import (
	"chat-relay/domain"
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestHeartbeatWorker_PublishesSelfStats(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	store := NewStatsStore()
	clock := domain.FixedClock{Fixed: domain.Timestamp(1672498800000)}

	worker := NewHeartbeatWorker(log, clock, 50*time.Millisecond, func() int { return 3 }, store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- worker.Run(ctx)
	}()

	// Then the store eventually holds a sample of this very process
	req.Eventually(func() bool {
		return store.GetLatest().PID != 0
	}, 2*time.Second, 20*time.Millisecond)

	latest := store.GetLatest()
	req.Equal(os.Getpid(), latest.PID)
	req.NotEmpty(latest.PIDStatus)
	req.Positive(latest.RSSBytes)
	req.Equal(3, latest.Participants)
	req.Equal(domain.Timestamp(1672498800000), latest.CollectedAt)

	// And cancellation stops the loop
	cancel()
	select {
	case err := <-done:
		req.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		req.Fail("Heartbeat worker should stop on context cancel")
	}
}

func TestStatsStore_LatestWins(t *testing.T) {
	req := require.New(t)
	store := NewStatsStore()

	store.Set(HealthStats{PID: 1, Participants: 1})
	store.Set(HealthStats{PID: 1, Participants: 2})

	req.Equal(2, store.GetLatest().Participants)
}
