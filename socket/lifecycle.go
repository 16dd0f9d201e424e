package socket

import (
	log "github.com/sirupsen/logrus"
)

// Disconnect evicts userID from every live table when conn is still the
// connection registered for it. An older connection of a user who has since
// reconnected, or a socket that never sent user_online, only loses the queue
// entries it created.
func (h *Hub) Disconnect(userID string, conn Conn, reason string) {
	fields := log.Fields{"userId": userID, "socketId": conn.ID(), "reason": reason}

	var out outbox
	var ended []endedCall

	h.mu.Lock()
	current, present := h.online[userID]
	if userID == "" || !present || current.ID() != conn.ID() {
		h.dequeueConnLocked(conn)
		h.mu.Unlock()
		if userID == "" {
			log.WithFields(fields).Info("❌ Anonymous socket disconnected")
		} else {
			log.WithFields(fields).Info("❌ Stale socket disconnected")
		}
		return
	}

	delete(h.online, userID)
	h.dequeueLocked(userID)

	for callID, pc := range h.pending {
		if pc.hasParticipant(userID) {
			delete(h.pending, callID)
		}
	}
	for _, call := range h.active {
		if call.HasParticipant(userID) {
			ended = append(ended, h.endCallLocked(call, &out))
		}
	}
	h.persistOfflineLocked(userID)
	h.mu.Unlock()

	log.WithFields(fields).Info("❌ User disconnected")
	out.flush()
	for _, e := range ended {
		h.persistCallEnd(e)
	}
}
