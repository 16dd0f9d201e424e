package socket

import (
	"context"
	"errors"

	"opentalk_server/models"
	"opentalk_server/utils"

	log "github.com/sirupsen/logrus"
)

// FindMatch enqueues userID in the queue named by filter and pairs the queue
// head if possible. conn must be the connection registered for userID when the
// entry is added. User errors are sent to conn as match_error and returned.
func (h *Hub) FindMatch(ctx context.Context, conn Conn, userID, filter string) error {
	key, err := ParseFilter(filter)
	if err != nil {
		return h.rejectMatch(conn, userID, err)
	}

	profile, err := h.users.GetUserProfile(ctx, userID)
	if err != nil {
		log.WithField("userId", userID).WithError(err).Error("❌ Failed to load profile for matchmaking")
		return h.rejectMatch(conn, userID, ErrProfileUnavailable)
	}

	now := h.now()
	if key != QueueFree && !profile.IsPremiumActive(now) {
		if profile.PremiumLapsed(now) {
			h.background("expire premium", log.Fields{"userId": userID}, func(ctx context.Context) error {
				return h.users.ExpirePremium(ctx, userID)
			})
		}
		return h.rejectMatch(conn, userID, ErrPremiumRequired)
	}

	entry := &queueEntry{
		QueueEntry: models.QueueEntry{
			UserID:   userID,
			Gender:   profile.Gender,
			Username: profile.Username,
			Avatar:   h.resolveAvatar(ctx, profile.Avatar),
			JoinedAt: now,
		},
		conn: conn,
	}

	var out outbox
	var match *models.MatchEvent
	h.mu.Lock()
	position := 0
	err = ErrNotOnline
	if current, ok := h.online[userID]; ok && current.ID() == conn.ID() {
		position, err = h.enqueueLocked(key, entry)
	}
	if err == nil {
		out.add(conn, EventSearchingMatch, SearchingMatch{Message: "Searching for a match...", QueuePosition: position})
		match = h.tryMatchLocked(key, &out)
	}
	h.mu.Unlock()

	if err != nil {
		return h.rejectMatch(conn, userID, err)
	}

	log.WithFields(log.Fields{"userId": userID, "queue": key}).Info("🔍 User searching for match")
	out.flush()

	if match != nil {
		h.persistMatch(*match)
	}
	return nil
}

func (h *Hub) rejectMatch(conn Conn, userID string, err error) error {
	var matchErr *MatchError
	if !errors.As(err, &matchErr) {
		matchErr = &MatchError{Reason: "error", Message: err.Error()}
	}
	log.WithFields(log.Fields{"userId": userID, "reason": matchErr.Reason}).Warn("⚠️ Match request rejected")
	conn.Emit(EventMatchError, matchErr.payload())
	return err
}

// tryMatchLocked pairs the two oldest entries of key. In a filtered queue the
// second entry must have the queue's gender; otherwise the two are reordered
// (second to the head, first to the tail) and no match is made this round.
func (h *Hub) tryMatchLocked(key QueueKey, out *outbox) *models.MatchEvent {
	queue := h.queues[key]
	if len(queue) < 2 {
		return nil
	}

	first, second := queue[0], queue[1]
	rest := queue[2:]

	if gender := key.targetGender(); gender != "" && second.Gender != gender {
		reordered := make([]*queueEntry, 0, len(queue))
		reordered = append(reordered, second)
		reordered = append(reordered, rest...)
		reordered = append(reordered, first)
		h.queues[key] = reordered

		log.WithFields(log.Fields{"queue": key, "userId": second.UserID}).Debug("Gender mismatch at queue head, reordered")
		return nil
	}

	h.queues[key] = append(queue[:0], rest...)
	for i := len(rest); i < len(queue); i++ {
		queue[i] = nil
	}

	match := &models.MatchEvent{
		CallID: utils.NewCallID(h.now()),
		UserA:  first.UserID,
		UserB:  second.UserID,
	}
	out.add(first.conn, EventMatchFound, MatchFound{MatchedUser: second.MatchedUser(), CallID: match.CallID})
	out.add(second.conn, EventMatchFound, MatchFound{MatchedUser: first.MatchedUser(), CallID: match.CallID})

	log.WithFields(log.Fields{
		"callId": match.CallID,
		"queue":  key,
	}).Infof("✅ Match found: %s <-> %s", first.Username, second.Username)
	return match
}

// persistMatch stores each user's currentMatch, best-effort
func (h *Hub) persistMatch(match models.MatchEvent) {
	h.background("store current match", log.Fields{"callId": match.CallID}, func(ctx context.Context) error {
		return errors.Join(
			h.users.SetCurrentMatch(ctx, match.UserA, match.UserB),
			h.users.SetCurrentMatch(ctx, match.UserB, match.UserA),
		)
	})
}

func (h *Hub) resolveAvatar(ctx context.Context, ref string) string {
	if h.avatars == nil {
		return ref
	}
	return h.avatars.ResolveAvatar(ctx, ref)
}
