package tui

import (
	"github.com/rostra-dev/rostra/internal/api"
	"github.com/rostra-dev/rostra/internal/event"
)

// sessionEventMsg wraps a bus event for delivery into the update loop.
type sessionEventMsg struct {
	event event.Event
}

// loadDoneMsg signals that the initial debate fetch finished.
type loadDoneMsg struct {
	err error
}

// voteResultMsg carries the outcome of a vote request.
type voteResultMsg struct {
	result *api.VoteResult
	err    error
}
