package domain

import (
	"chat-relay/errors"
	"unicode/utf8"
)

const maxContentLength = 10000

// MessageContent is validated chat text. Never silently truncated.
type MessageContent string

func NewMessageContent(raw string) (MessageContent, error) {
	if raw == "" {
		return "", errors.ErrEmptyContent
	}
	if utf8.RuneCountInString(raw) > maxContentLength {
		return "", errors.ErrContentTooLong
	}
	return MessageContent(raw), nil
}

func (m MessageContent) String() string {
	return string(m)
}
