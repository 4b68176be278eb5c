// Package client implements the terminal client: the session loop, the
// reconnection state machine, and the rendering of observed events.
package client

import (
	"chat-relay/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateFailed       State = "failed"
)

// SessionFunc runs one connection until it ends. It calls onConnected
// once the handshake and admission succeed, returns nil on a graceful
// user-initiated close, and an error when the connection fails or drops.
type SessionFunc func(ctx context.Context, onConnected func()) error

// Runner drives sessions through the reconnection state machine:
// a failed or dropped connection is retried after a fixed interval, a
// successful connect resets the attempt counter, and once the counter
// exceeds maxAttempts the runner gives up for good.
//
// A duplicate-identity refusal consumes a normal attempt, same as any
// other failure. Retrying it cannot succeed while the old session
// lives; callers wanting to bail out early can match
// errors.ErrDuplicateIdentity on the session error themselves.
type Runner struct {
	log          *slog.Logger
	session      SessionFunc
	maxAttempts  int
	interval     time.Duration
	sleep        func(ctx context.Context, d time.Duration) error
	onTransition func(State)

	mu    sync.Mutex
	state State
}

func NewRunner(log *slog.Logger, session SessionFunc, maxAttempts int, interval time.Duration) *Runner {
	return &Runner{
		log:         log,
		session:     session,
		maxAttempts: maxAttempts,
		interval:    interval,
		sleep:       sleepWithContext,
		state:       StateDisconnected,
	}
}

func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) Run(ctx context.Context) error {
	attempts := 0

	for {
		r.transition(StateConnecting)

		connected := false
		err := r.session(ctx, func() {
			connected = true
			attempts = 0
			r.transition(StateConnected)
		})
		if err == nil {
			// User-initiated close: not a failure, no reconnection.
			r.transition(StateDisconnected)
			r.log.Info("Session ended normally")
			return nil
		}
		if ctx.Err() != nil {
			r.transition(StateDisconnected)
			return ctx.Err()
		}

		attempts++
		if attempts > r.maxAttempts {
			r.transition(StateFailed)
			return fmt.Errorf("%w: gave up after %d attempts: %v", errors.ErrRetriesExhausted, r.maxAttempts, err)
		}

		r.transition(StateReconnecting)
		if connected {
			r.log.Warn("Connection lost, reconnecting",
				"attempt", attempts, "max", r.maxAttempts, "interval", r.interval, "error", err)
		} else {
			r.log.Warn("Connect failed, retrying",
				"attempt", attempts, "max", r.maxAttempts, "interval", r.interval, "error", err)
		}

		if err := r.sleep(ctx, r.interval); err != nil {
			r.transition(StateDisconnected)
			return err
		}
	}
}

func (r *Runner) transition(next State) {
	r.mu.Lock()
	r.state = next
	r.mu.Unlock()
	if r.onTransition != nil {
		r.onTransition(next)
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
