package domain

import "time"

// Timestamp is a wall-clock instant in Unix epoch milliseconds.
type Timestamp int64

// jst is the fixed zone used for external rendering.
var jst = time.FixedZone("JST", 9*3600)

// RFC3339 renders the instant in JST for HTTP projections and UIs.
// Wire events carry the raw millisecond value instead.
func (t Timestamp) RFC3339() string {
	return time.UnixMilli(int64(t)).In(jst).Format(time.RFC3339)
}

func (t Timestamp) Millis() int64 {
	return int64(t)
}

// Clock abstracts time acquisition so session logic stays deterministic in tests.
type Clock interface {
	Now() Timestamp
}

type SystemClock struct{}

func (SystemClock) Now() Timestamp {
	return Timestamp(time.Now().UnixMilli())
}

// FixedClock always returns the same instant.
type FixedClock struct {
	Fixed Timestamp
}

func (c FixedClock) Now() Timestamp {
	return c.Fixed
}
