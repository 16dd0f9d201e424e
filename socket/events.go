package socket

import (
	"encoding/json"
	"time"

	"opentalk_server/models"
)

// Inbound events
const (
	EventUserOnline   = "user_online"
	EventFindMatch    = "find_match"
	EventCancelMatch  = "cancel_match"
	EventCallUser     = "call_user"
	EventAnswerCall   = "answer_call"
	EventIceCandidate = "ice_candidate"
	EventCallStarted  = "call_started"
	EventCallEnded    = "call_ended"
	EventSendMessage  = "send_message"
	EventTyping       = "typing"
	EventStopTyping   = "stop_typing"
)

// Outbound events
const (
	EventUserCameOnline     = "user_came_online"
	EventUserWentOffline    = "user_went_offline"
	EventSearchingMatch     = "searching_match"
	EventMatchCancelled     = "match_cancelled"
	EventMatchError         = "match_error"
	EventMatchFound         = "match_found"
	EventIncomingCall       = "incoming_call"
	EventCallAnswered       = "call_answered"
	EventCallEndedConfirmed = "call_ended_confirmed"
	EventReceiveMessage     = "receive_message"
	EventUserTyping         = "user_typing"
	EventUserStopTyping     = "user_stop_typing"
)

type UserOnlinePayload struct {
	UserID string `json:"userId"`
}

type FindMatchPayload struct {
	UserID string `json:"userId"`
	Filter string `json:"filter"`
}

type CancelMatchPayload struct {
	UserID string `json:"userId"`
}

// Signaling payloads keep the SDP/ICE bodies as raw JSON so they are relayed verbatim

type CallUserPayload struct {
	To     string          `json:"to"`
	Offer  json.RawMessage `json:"offer"`
	CallID string          `json:"callId"`
}

type AnswerCallPayload struct {
	To     string          `json:"to"`
	Answer json.RawMessage `json:"answer"`
	CallID string          `json:"callId"`
}

type IceCandidatePayload struct {
	To        string          `json:"to"`
	Candidate json.RawMessage `json:"candidate"`
}

type CallStartedPayload struct {
	CallID       string   `json:"callId"`
	Participants []string `json:"participants"`
	CallType     string   `json:"callType,omitempty"`
}

type CallEndedPayload struct {
	CallID       string   `json:"callId"`
	Participants []string `json:"participants"`
}

type SendMessagePayload struct {
	To             string          `json:"to"`
	Message        json.RawMessage `json:"message"`
	ConversationID string          `json:"conversationId"`
}

type TypingPayload struct {
	To string `json:"to"`
}

type UserCameOnline struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type UserWentOffline struct {
	UserID string `json:"userId"`
}

type SearchingMatch struct {
	Message       string `json:"message"`
	QueuePosition int    `json:"queuePosition"`
}

type MatchCancelled struct {
	Message string `json:"message"`
}

type MatchErrorPayload struct {
	Message string `json:"message"`
	Reason  string `json:"reason"`
}

type MatchFound struct {
	MatchedUser models.MatchedUser `json:"matchedUser"`
	CallID      string             `json:"callId"`
}

type IncomingCall struct {
	From   string          `json:"from"`
	Offer  json.RawMessage `json:"offer"`
	CallID string          `json:"callId"`
}

type CallAnswered struct {
	From   string          `json:"from"`
	Answer json.RawMessage `json:"answer"`
	CallID string          `json:"callId"`
}

type IceCandidate struct {
	From      string          `json:"from"`
	Candidate json.RawMessage `json:"candidate"`
}

type CallEndedConfirmed struct {
	CallID    string `json:"callId"`
	Duration  int    `json:"duration"`
	CanFollow bool   `json:"canFollow"`
}

type ReceiveMessage struct {
	From           string          `json:"from"`
	Message        json.RawMessage `json:"message"`
	ConversationID string          `json:"conversationId"`
	Timestamp      time.Time       `json:"timestamp"`
}

type UserTyping struct {
	From string `json:"from"`
}
