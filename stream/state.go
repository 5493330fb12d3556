package stream

import (
	"errors"
	"fmt"

	"github.com/saudanwar3/portfolio"
)

// State is the lifecycle state of a Stream.
type State int

const (
	// Idle streams have no data yet, or are seeded but have no subscriber.
	Idle State = iota
	// Running streams tick and publish snapshots.
	Running
	// Stopped streams have been torn down. It is terminal.
	Stopped
	// Unavailable streams could not get a seed. It is terminal.
	Unavailable
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	case Unavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrStopped is returned when using a stream that has been torn down.
	ErrStopped = errors.New("stream stopped")
	// ErrSeeded is returned when seeding or failing an already seeded stream.
	ErrSeeded = errors.New("stream already seeded")
	// ErrUnavailable is returned when seeding a stream that has no data.
	ErrUnavailable = errors.New("portfolio unavailable")
)

// Update is what subscribers receive.
//
// When State is Running, Snapshot holds the values of one tick. When State is
// Unavailable, Err holds the reason no data is available. Idle is sent to
// subscribers joining a stream that is still waiting for its seed, Stopped to
// subscribers still attached when the stream is closed.
type Update struct {
	State    State
	Snapshot portfolio.Snapshot
	Err      error
}
