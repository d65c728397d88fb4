// Package subscribe resolves batches of channel paths and applies a
// subscription level to each resolved channel concurrently.
package subscribe

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Level is a traQ channel subscription level.
type Level int

// Subscription levels, matching the server's integer encoding.
const (
	LevelNone       Level = 0
	LevelSubscribed Level = 1
	LevelNotified   Level = 2
)

// ErrInvalidLevel is returned for levels outside 0, 1 and 2.
var ErrInvalidLevel = errors.New("subscription level must be 0, 1 or 2")

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	return l >= LevelNone && l <= LevelNotified
}

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelSubscribed:
		return "subscribed"
	case LevelNotified:
		return "notified"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// ParseLevel accepts "0", "1" or "2".
func ParseLevel(s string) (Level, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: got %q", ErrInvalidLevel, s)
	}

	l := Level(n)
	if !l.Valid() {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidLevel, n)
	}

	return l, nil
}

// Request sets one channel's subscription level.
type Request struct {
	ChannelID string
	Path      string // the path it was resolved from, for reporting
	Level     Level
}
