package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrDuplicateIdentity  = fmt.Errorf("identity already connected")
	ErrEmptyClientID      = fmt.Errorf("client id is empty")
	ErrClientIDTooLong    = fmt.Errorf("client id exceeds 100 characters")
	ErrEmptyContent       = fmt.Errorf("message content is empty")
	ErrContentTooLong     = fmt.Errorf("message content exceeds 10000 characters")
	ErrRoomNotFound       = fmt.Errorf("room not found")
	ErrConnectionLost     = fmt.Errorf("connection lost")
	ErrRetriesExhausted   = fmt.Errorf("reconnect attempts exhausted")
	ErrSessionInterrupted = fmt.Errorf("session interrupted")
)
