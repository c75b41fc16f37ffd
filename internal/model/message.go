// Package model defines data structure.
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout renders UTC instants with an explicit numeric offset,
// e.g. 2024-05-01T12:00:00.123456+00:00.
const TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

// Timestamp is a UTC instant that marshals to ISO-8601 with an offset.
type Timestamp struct {
	time.Time
}

// NewTimestamp converts t to UTC, truncated to the precision of
// TimestampLayout so a value survives a JSON round trip unchanged.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Microsecond)}
}

// Now returns the current instant as a Timestamp.
func Now() Timestamp {
	return NewTimestamp(time.Now())
}

func (t Timestamp) String() string {
	return t.UTC().Format(TimestampLayout)
}

// MarshalJSON overrides the promoted time.Time encoder.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

func (t *Timestamp) UnmarshalJSON(p []byte) error {
	s, err := strconv.Unquote(strings.TrimSpace(string(p)))
	if err != nil {
		return fmt.Errorf("timestamp must be a JSON string: %w", err)
	}
	parsed, err := time.Parse(TimestampLayout, s)
	if err != nil {
		// Accept any RFC 3339 instant from other producers.
		parsed, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return err
		}
	}
	t.Time = parsed.UTC()
	return nil
}

// Message holds information about a single broadcast chat message.
// It is immutable once constructed.
type Message struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Text     string    `json:"text"`
	HTML     string    `json:"html"`
	TS       Timestamp `json:"ts"`
}
