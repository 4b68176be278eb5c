// Package domain contains core concepts of the relay.
// Value types validate on construction; an instance that exists is valid.
package domain

import (
	"chat-relay/errors"
	"unicode/utf8"
)

const maxClientIDLength = 100

// ClientID identifies a connected participant. Equality by value,
// used as the registry key.
type ClientID string

func NewClientID(raw string) (ClientID, error) {
	if raw == "" {
		return "", errors.ErrEmptyClientID
	}
	if utf8.RuneCountInString(raw) > maxClientIDLength {
		return "", errors.ErrClientIDTooLong
	}
	return ClientID(raw), nil
}

func (c ClientID) String() string {
	return string(c)
}
