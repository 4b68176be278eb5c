//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is the deliverable conduit handed to the registry at admission.
// Consume must never block: implementations queue or drop.
type EventSink interface {
	Consume(e event.Event) error
}

type IRegistry interface {
	// Register admits a participant atomically: the duplicate check and the
	// insert happen under the same critical section. On success it returns the
	// insertion-ordered snapshot including the new participant.
	Register(id domain.ClientID, sink EventSink, now domain.Timestamp) ([]domain.Participant, error)
	// Unregister removes the participant if present. Removing an absent
	// identity is a no-op.
	Unregister(id domain.ClientID) (domain.Participant, bool)
	Snapshot() []domain.Participant
	Sinks() []EventSink
	SinksExcept(id domain.ClientID) []EventSink
}

type IBroadcaster interface {
	Broadcast(e event.Event)
	BroadcastExcept(e event.Event, exclude domain.ClientID)
}

type IRoomService interface {
	Connect(id domain.ClientID, sink EventSink) error
	PostMessage(from domain.ClientID, raw string) error
	Disconnect(id domain.ClientID)
	Snapshot() []domain.Participant
	RoomInfo() (domain.RoomID, domain.Timestamp)
}
