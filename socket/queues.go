package socket

import (
	"opentalk_server/models"

	log "github.com/sirupsen/logrus"
)

// QueueKey names a matchmaking queue
type QueueKey string

const (
	QueueFree   QueueKey = "free"
	QueueMale   QueueKey = "male"
	QueueFemale QueueKey = "female"
)

var QueueKeys = []QueueKey{QueueFree, QueueMale, QueueFemale}

// ParseFilter maps a find_match filter to its queue
func ParseFilter(filter string) (QueueKey, error) {
	switch filter {
	case "", "none", string(QueueFree):
		return QueueFree, nil
	case string(QueueMale):
		return QueueMale, nil
	case string(QueueFemale):
		return QueueFemale, nil
	}
	return "", ErrInvalidFilter
}

// targetGender is the gender a filtered queue pairs with, empty for the free queue
func (k QueueKey) targetGender() string {
	switch k {
	case QueueMale:
		return models.GenderMale
	case QueueFemale:
		return models.GenderFemale
	}
	return ""
}

type queueEntry struct {
	models.QueueEntry
	conn Conn
}

// enqueueLocked appends entry to the tail of key and returns its 1-based position
func (h *Hub) enqueueLocked(key QueueKey, entry *queueEntry) (int, error) {
	if _, searching := h.queueOfLocked(entry.UserID); searching {
		return 0, ErrAlreadySearching
	}
	h.queues[key] = append(h.queues[key], entry)
	return len(h.queues[key]), nil
}

func (h *Hub) queueOfLocked(userID string) (QueueKey, bool) {
	for key, entries := range h.queues {
		for _, e := range entries {
			if e.UserID == userID {
				return key, true
			}
		}
	}
	return "", false
}

// dequeueLocked removes userID from whichever queue holds it
func (h *Hub) dequeueLocked(userID string) bool {
	return h.removeEntriesLocked(func(e *queueEntry) bool { return e.UserID == userID })
}

// dequeueConnLocked removes every entry added through conn, whatever user it names
func (h *Hub) dequeueConnLocked(conn Conn) bool {
	return h.removeEntriesLocked(func(e *queueEntry) bool { return e.conn.ID() == conn.ID() })
}

func (h *Hub) removeEntriesLocked(drop func(*queueEntry) bool) bool {
	removed := false
	for key, entries := range h.queues {
		filtered := entries[:0]
		for _, e := range entries {
			if drop(e) {
				removed = true
				continue
			}
			filtered = append(filtered, e)
		}
		for i := len(filtered); i < len(entries); i++ {
			entries[i] = nil
		}
		h.queues[key] = filtered
	}
	return removed
}

// CancelMatch removes the user from any queue and confirms to conn
func (h *Hub) CancelMatch(userID string, conn Conn) {
	h.mu.Lock()
	removed := h.dequeueLocked(userID)
	h.mu.Unlock()

	conn.Emit(EventMatchCancelled, MatchCancelled{Message: "Search cancelled"})
	if removed {
		log.WithField("userId", userID).Info("❌ User cancelled match search")
	}
}

// QueueLength reports how many users wait in key
func (h *Hub) QueueLength(key QueueKey) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queues[key])
}

// Queued lists the user ids waiting in key, oldest first
func (h *Hub) Queued(key QueueKey) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	ids := make([]string, 0, len(h.queues[key]))
	for _, e := range h.queues[key] {
		ids = append(ids, e.UserID)
	}
	return ids
}
