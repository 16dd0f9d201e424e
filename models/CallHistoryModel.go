package models

import (
	"sort"
	"strings"
	"time"
)

// CallHistory is the immutable record of a completed call
type CallHistory struct {
	PairKey       string    `dynamodbav:"pairKey" json:"pairKey"`     // Partition Key: sorted "<userA>#<userB>"
	StartedAt     time.Time `dynamodbav:"startedAt" json:"startedAt"` // Sort Key
	CallID        string    `dynamodbav:"callId" json:"callId"`
	Caller        string    `dynamodbav:"caller" json:"caller"`
	Receiver      string    `dynamodbav:"receiver" json:"receiver"`
	Duration      int       `dynamodbav:"duration" json:"duration"` // seconds
	CallType      string    `dynamodbav:"callType" json:"callType"` // video, audio
	EndedAt       time.Time `dynamodbav:"endedAt" json:"endedAt"`
	FollowedAfter bool      `dynamodbav:"followedAfter" json:"followedAfter"`
}

// PairKey builds the order-independent key shared by both participants' calls.
func PairKey(userA, userB string) string {
	ids := []string{userA, userB}
	sort.Strings(ids)
	return strings.Join(ids, "#")
}

// CallHistoryTable is the DynamoDB table name for completed calls
const CallHistoryTable = "CallHistory"
