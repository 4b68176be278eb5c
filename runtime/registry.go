// Package runtime handles admission, removal, and event propagation.
// It orchestrates the relay without containing domain rules.
package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"sync"
)

type registration struct {
	participant domain.Participant
	sink        contract.EventSink
}

// Registry is the single source of truth for who is currently connected.
// One lock guards the whole critical section, so the duplicate check and
// the insert of Register cannot interleave with another call.
type Registry struct {
	mu      sync.RWMutex
	entries map[domain.ClientID]registration
	order   []domain.ClientID // insertion order, oldest first
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[domain.ClientID]registration),
	}
}

func (r *Registry) Register(id domain.ClientID, sink contract.EventSink, now domain.Timestamp) ([]domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; ok {
		return nil, errors.ErrDuplicateIdentity
	}

	r.entries[id] = registration{
		participant: domain.Participant{ID: id, JoinedAt: now},
		sink:        sink,
	}
	r.order = append(r.order, id)

	return r.snapshotLocked(), nil
}

func (r *Registry) Unregister(id domain.ClientID) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.entries[id]
	if !ok {
		return domain.Participant{}, false
	}
	delete(r.entries, id)
	for i, candidate := range r.order {
		if candidate == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return reg.participant, true
}

// Snapshot returns the participants in insertion order, oldest first.
func (r *Registry) Snapshot() []domain.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *Registry) Sinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sinks := make([]contract.EventSink, 0, len(r.order))
	for _, id := range r.order {
		sinks = append(sinks, r.entries[id].sink)
	}
	return sinks
}

func (r *Registry) SinksExcept(exclude domain.ClientID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sinks []contract.EventSink
	for _, id := range r.order {
		if id == exclude {
			continue
		}
		sinks = append(sinks, r.entries[id].sink)
	}
	return sinks
}

func (r *Registry) snapshotLocked() []domain.Participant {
	participants := make([]domain.Participant, 0, len(r.order))
	for _, id := range r.order {
		participants = append(participants, r.entries[id].participant)
	}
	return participants
}
