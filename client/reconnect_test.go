package client

import (
	"chat-relay/errors"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// fakeSleep records requested pauses instead of waiting.
type fakeSleep struct {
	durations []time.Duration
	fail      error
}

func (f *fakeSleep) sleep(_ context.Context, d time.Duration) error {
	f.durations = append(f.durations, d)
	return f.fail
}

func TestRunner_GivesUpAfterMaxAttempts(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given a session that never connects
	calls := 0
	session := func(ctx context.Context, onConnected func()) error {
		calls++
		return fmt.Errorf("dial refused")
	}

	runner := NewRunner(log, session, 5, 5*time.Second)
	sleeper := &fakeSleep{}
	runner.sleep = sleeper.sleep

	err := runner.Run(context.Background())

	// Then the initial try plus five retries all ran
	req.ErrorIs(err, errors.ErrRetriesExhausted)
	req.Equal(6, calls)
	req.Equal(StateFailed, runner.State())

	// And exactly five pauses of the configured interval happened,
	// none after the final failure
	req.Len(sleeper.durations, 5)
	for _, d := range sleeper.durations {
		req.Equal(5*time.Second, d)
	}
}

func TestRunner_SuccessfulConnectResetsAttempts(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given 5 failed connects, then a session that connects and drops,
	// then failures again
	calls := 0
	session := func(ctx context.Context, onConnected func()) error {
		calls++
		if calls == 6 {
			onConnected()
			return fmt.Errorf("connection dropped")
		}
		return fmt.Errorf("dial refused")
	}

	runner := NewRunner(log, session, 5, time.Second)
	sleeper := &fakeSleep{}
	runner.sleep = sleeper.sleep

	err := runner.Run(context.Background())

	// Then the successful connect reset the counter: after the drop the
	// runner restarts the full retry budget before giving up
	req.ErrorIs(err, errors.ErrRetriesExhausted)
	req.Equal(6+6, calls)
	req.Len(sleeper.durations, 5+1+5)
}

func TestRunner_GracefulCloseNeverRetries(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given a session ending on user request
	calls := 0
	session := func(ctx context.Context, onConnected func()) error {
		calls++
		onConnected()
		return nil
	}

	runner := NewRunner(log, session, 5, time.Second)
	sleeper := &fakeSleep{}
	runner.sleep = sleeper.sleep

	err := runner.Run(context.Background())

	// Then no retry happened at all
	req.NoError(err)
	req.Equal(1, calls)
	req.Empty(sleeper.durations)
	req.Equal(StateDisconnected, runner.State())
}

func TestRunner_DuplicateIdentityConsumesAnAttempt(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given an identity held by another live session
	calls := 0
	session := func(ctx context.Context, onConnected func()) error {
		calls++
		return fmt.Errorf("handshake refused: %w", errors.ErrDuplicateIdentity)
	}

	runner := NewRunner(log, session, 5, time.Second)
	sleeper := &fakeSleep{}
	runner.sleep = sleeper.sleep

	err := runner.Run(context.Background())

	// Then the refusal is treated like any other failure
	req.ErrorIs(err, errors.ErrRetriesExhausted)
	req.Equal(6, calls)
}

func TestRunner_ContextCancelStopsRetrying(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	ctx, cancel := context.WithCancel(context.Background())

	// Given a session that fails and a context cancelled during it
	session := func(ctx context.Context, onConnected func()) error {
		cancel()
		return fmt.Errorf("connection dropped")
	}

	runner := NewRunner(log, session, 5, time.Second)
	sleeper := &fakeSleep{}
	runner.sleep = sleeper.sleep

	err := runner.Run(ctx)

	// Then the runner treats it as a shutdown, not a failure to retry
	req.ErrorIs(err, context.Canceled)
	req.Empty(sleeper.durations)
	req.Equal(StateDisconnected, runner.State())
}

func TestRunner_TransitionsAreObservable(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	calls := 0
	session := func(ctx context.Context, onConnected func()) error {
		calls++
		if calls == 1 {
			onConnected()
			return fmt.Errorf("connection dropped")
		}
		onConnected()
		return nil
	}

	runner := NewRunner(log, session, 5, time.Second)
	sleeper := &fakeSleep{}
	runner.sleep = sleeper.sleep

	var seen []State
	runner.onTransition = func(s State) { seen = append(seen, s) }

	req.NoError(runner.Run(context.Background()))

	req.Equal([]State{
		StateConnecting, StateConnected, StateReconnecting,
		StateConnecting, StateConnected, StateDisconnected,
	}, seen)
}
