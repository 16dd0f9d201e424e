package models

import "time"

// QueueEntry is a user waiting in a matchmaking queue
type QueueEntry struct {
	UserID   string    `json:"userId"`
	Gender   string    `json:"gender"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar"`
	JoinedAt time.Time `json:"joinedAt"`
}

// MatchedUser returns the public fields sent to the other side of a match
func (e QueueEntry) MatchedUser() MatchedUser {
	return MatchedUser{
		UserID:   e.UserID,
		Username: e.Username,
		Avatar:   e.Avatar,
		Gender:   e.Gender,
	}
}

// MatchEvent pairs two users under a fresh call id. It is never persisted.
type MatchEvent struct {
	CallID string `json:"callId"`
	UserA  string `json:"userA"`
	UserB  string `json:"userB"`
}

// ActiveCall is a call both participants have reported as started
type ActiveCall struct {
	CallID       string    `json:"callId"`
	Participants [2]string `json:"participants"`
	CallType     string    `json:"callType"`
	StartTime    time.Time `json:"startTime"`
}

func (c *ActiveCall) HasParticipant(userID string) bool {
	return c.Participants[0] == userID || c.Participants[1] == userID
}

// History converts the call into its persisted record
func (c *ActiveCall) History(endedAt time.Time, duration int) CallHistory {
	return CallHistory{
		PairKey:   PairKey(c.Participants[0], c.Participants[1]),
		StartedAt: c.StartTime,
		CallID:    c.CallID,
		Caller:    c.Participants[0],
		Receiver:  c.Participants[1],
		Duration:  duration,
		CallType:  c.CallType,
		EndedAt:   endedAt,
	}
}
