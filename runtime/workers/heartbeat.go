package workers

import (
	"chat-relay/domain"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HeartbeatWorker samples the relay's own process metrics (CPU, RAM,
// status) and the current participant count at a fixed interval, and
// publishes them to the StatsStore backing the health endpoint.
type HeartbeatWorker struct {
	log          *slog.Logger
	clock        domain.Clock
	interval     time.Duration
	participants func() int
	store        *StatsStore
}

func NewHeartbeatWorker(log *slog.Logger, clock domain.Clock, interval time.Duration,
	participants func() int, store *StatsStore) *HeartbeatWorker {
	return &HeartbeatWorker{
		log:          log,
		clock:        clock,
		interval:     interval,
		participants: participants,
		store:        store,
	}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting relay heartbeat worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, status, err := getSelfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			w.store.Set(HealthStats{
				PID:          os.Getpid(),
				PIDStatus:    status,
				CPUPercent:   cpu,
				RSSBytes:     rss,
				Participants: w.participants(),
				CollectedAt:  w.clock.Now(),
			})
		}
	}
}

// getSelfStats retrieves technical metrics (Memory, CPU, and OS Status) for the given process.
func getSelfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}

	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
