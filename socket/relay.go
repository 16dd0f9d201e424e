package socket

import (
	log "github.com/sirupsen/logrus"
)

// relay delivers payload to the live connection of to. Unknown destinations
// and senders that never sent user_online are dropped.
func (h *Hub) relay(from, to, event string, payload interface{}) bool {
	if from == "" {
		log.WithFields(log.Fields{"to": to, "event": event}).Warn("⚠️ Dropping relay from unbound socket")
		return false
	}
	conn, ok := h.Lookup(to)
	if !ok {
		log.WithFields(log.Fields{"from": from, "to": to, "event": event}).Debug("Dropping relay to offline user")
		return false
	}
	conn.Emit(event, payload)
	return true
}

func (h *Hub) RelayOffer(from string, p CallUserPayload) bool {
	return h.relay(from, p.To, EventIncomingCall, IncomingCall{From: from, Offer: p.Offer, CallID: p.CallID})
}

func (h *Hub) RelayAnswer(from string, p AnswerCallPayload) bool {
	return h.relay(from, p.To, EventCallAnswered, CallAnswered{From: from, Answer: p.Answer, CallID: p.CallID})
}

func (h *Hub) RelayIceCandidate(from string, p IceCandidatePayload) bool {
	return h.relay(from, p.To, EventIceCandidate, IceCandidate{From: from, Candidate: p.Candidate})
}

// RelayMessage forwards a chat message, stamped with the server time
func (h *Hub) RelayMessage(from string, p SendMessagePayload) bool {
	return h.relay(from, p.To, EventReceiveMessage, ReceiveMessage{
		From:           from,
		Message:        p.Message,
		ConversationID: p.ConversationID,
		Timestamp:      h.now(),
	})
}

// RelayTyping forwards typing start/stop indicators
func (h *Hub) RelayTyping(from, to string, typing bool) bool {
	event := EventUserStopTyping
	if typing {
		event = EventUserTyping
	}
	return h.relay(from, to, event, UserTyping{From: from})
}
