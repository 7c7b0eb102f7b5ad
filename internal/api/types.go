package api

import "time"

// CreateDebateRequest starts a new debate against a party chatbot.
type CreateDebateRequest struct {
	PartyID   string `json:"partyId"`
	Topic     string `json:"topic"`
	MaxRounds int    `json:"maxRounds,omitempty"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

type voteRequest struct {
	Side string `json:"side"`
}

// VoteResult is the tally after a vote is cast.
type VoteResult struct {
	DebateID     string `json:"debateId"`
	PartyVotes   int    `json:"partyVotes"`
	CitizenVotes int    `json:"citizenVotes"`
	YourVote     string `json:"yourVote,omitempty"`
}

// User is the authenticated account returned by /auth/me.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName,omitempty"`
	IsAdmin     bool      `json:"isAdmin"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DebateListItem is a row in a debate listing (own debates, completed
// debates, trending).
type DebateListItem struct {
	ID           string    `json:"id"`
	ShareToken   string    `json:"shareToken,omitempty"`
	Topic        string    `json:"topic"`
	PartyID      string    `json:"partyId"`
	PartyName    string    `json:"partyName,omitempty"`
	Rounds       int       `json:"rounds"`
	Completed    bool      `json:"completed"`
	PartyVotes   int       `json:"partyVotes"`
	CitizenVotes int       `json:"citizenVotes"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TrendingDebate is a completed debate ranked by recent vote activity.
type TrendingDebate struct {
	DebateListItem
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// Party is a debatable political party chatbot.
type Party struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// errorBody is the server's error envelope.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
