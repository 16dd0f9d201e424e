package socket

import (
	socketio "github.com/googollee/go-socket.io"
	log "github.com/sirupsen/logrus"
)

// session is stored as the Socket.IO connection context
type session struct {
	userID string
}

// sessionUser returns the user bound at user_online, or fallback when the socket is unbound
func sessionUser(s socketio.Conn, fallback string) string {
	if sess, ok := s.Context().(*session); ok && sess.userID != "" {
		return sess.userID
	}
	return fallback
}

// NewSocketServer initializes and returns a new Socket.IO server bound to hub
func NewSocketServer(hub *Hub) *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext(&session{})
		log.WithField("socketId", s.ID()).Info("✅ Socket connected")
		return nil
	})

	server.OnEvent("/", EventUserOnline, func(s socketio.Conn, p UserOnlinePayload) {
		if p.UserID == "" {
			log.WithField("socketId", s.ID()).Warn("⚠️ user_online without userId")
			return
		}
		s.SetContext(&session{userID: p.UserID})
		hub.SetOnline(p.UserID, s)
	})

	server.OnEvent("/", EventFindMatch, func(s socketio.Conn, p FindMatchPayload) {
		userID := sessionUser(s, p.UserID)
		if userID == "" {
			log.WithField("socketId", s.ID()).Warn("⚠️ find_match without userId")
			return
		}
		ctx, cancel := hub.RequestContext()
		defer cancel()
		_ = hub.FindMatch(ctx, s, userID, p.Filter)
	})

	server.OnEvent("/", EventCancelMatch, func(s socketio.Conn, p CancelMatchPayload) {
		hub.CancelMatch(sessionUser(s, p.UserID), s)
	})

	server.OnEvent("/", EventCallUser, func(s socketio.Conn, p CallUserPayload) {
		hub.RelayOffer(sessionUser(s, ""), p)
	})

	server.OnEvent("/", EventAnswerCall, func(s socketio.Conn, p AnswerCallPayload) {
		hub.RelayAnswer(sessionUser(s, ""), p)
	})

	server.OnEvent("/", EventIceCandidate, func(s socketio.Conn, p IceCandidatePayload) {
		hub.RelayIceCandidate(sessionUser(s, ""), p)
	})

	server.OnEvent("/", EventCallStarted, func(s socketio.Conn, p CallStartedPayload) {
		hub.CallStarted(sessionUser(s, ""), p)
	})

	server.OnEvent("/", EventCallEnded, func(s socketio.Conn, p CallEndedPayload) {
		hub.CallEnded(sessionUser(s, ""), p)
	})

	server.OnEvent("/", EventSendMessage, func(s socketio.Conn, p SendMessagePayload) {
		hub.RelayMessage(sessionUser(s, ""), p)
	})

	server.OnEvent("/", EventTyping, func(s socketio.Conn, p TypingPayload) {
		hub.RelayTyping(sessionUser(s, ""), p.To, true)
	})

	server.OnEvent("/", EventStopTyping, func(s socketio.Conn, p TypingPayload) {
		hub.RelayTyping(sessionUser(s, ""), p.To, false)
	})

	server.OnError("/", func(s socketio.Conn, err error) {
		fields := log.Fields{}
		if s != nil {
			fields["socketId"] = s.ID()
		}
		log.WithFields(fields).WithError(err).Error("❌ Socket error")
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		hub.Disconnect(sessionUser(s, ""), s, reason)
	})

	return server
}
