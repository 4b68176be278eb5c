package workers

import (
	"chat-relay/domain"
	"sync"
)

// HealthStats is the latest self-observation of the relay process,
// served by the health endpoint.
type HealthStats struct {
	PID          int
	PIDStatus    string
	CPUPercent   float64
	RSSBytes     uint64
	Participants int
	CollectedAt  domain.Timestamp
}

// StatsStore holds the most recent HealthStats.
type StatsStore struct {
	mu     sync.RWMutex
	latest HealthStats
}

func NewStatsStore() *StatsStore {
	return &StatsStore{}
}

func (s *StatsStore) Set(stats HealthStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = stats
}

func (s *StatsStore) GetLatest() HealthStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}
