package models

// MatchedUser is the public part of a profile sent to the other side of a match
type MatchedUser struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Gender   string `json:"gender"`
}
