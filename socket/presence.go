package socket

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

// SetOnline registers conn as the way to reach userID, replacing any earlier connection
func (h *Hub) SetOnline(userID string, conn Conn) {
	socketID := conn.ID()

	h.mu.Lock()
	h.online[userID] = conn
	h.serial(userID, "mark online", log.Fields{"userId": userID}, func(ctx context.Context) error {
		var errs []error
		if err := h.users.SetOnline(ctx, userID, socketID); err != nil {
			errs = append(errs, err)
		}
		if h.presence != nil {
			if err := h.presence.MarkOnline(ctx, userID, socketID); err != nil {
				errs = append(errs, err)
			}
		}
		if err := h.notifyFollowers(ctx, userID, true); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})
	h.mu.Unlock()

	log.WithFields(log.Fields{"userId": userID, "socketId": socketID}).Info("👤 User is online")
}

// SetOffline removes userID from the directory. Absent users are a no-op.
func (h *Hub) SetOffline(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.online[userID]; ok {
		delete(h.online, userID)
		h.persistOfflineLocked(userID)
	}
}

// Lookup returns the live connection for userID
func (h *Hub) Lookup(userID string) (Conn, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conn, ok := h.online[userID]
	return conn, ok
}

func (h *Hub) Online() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.online)
}

// persistOfflineLocked queues the offline write behind any earlier presence write for userID
func (h *Hub) persistOfflineLocked(userID string) {
	log.WithField("userId", userID).Info("👋 User went offline")

	h.serial(userID, "mark offline", log.Fields{"userId": userID}, func(ctx context.Context) error {
		var errs []error
		if err := h.users.SetOffline(ctx, userID); err != nil {
			errs = append(errs, err)
		}
		if h.presence != nil {
			if err := h.presence.MarkOffline(ctx, userID); err != nil {
				errs = append(errs, err)
			}
		}
		if err := h.notifyFollowers(ctx, userID, false); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})
}

// notifyFollowers tells every present follower that userID came online or went offline
func (h *Hub) notifyFollowers(ctx context.Context, userID string, online bool) error {
	profile, err := h.users.GetUserProfile(ctx, userID)
	if err != nil {
		return err
	}

	var out outbox
	h.mu.Lock()
	for _, followerID := range profile.Followers {
		conn, ok := h.online[followerID]
		if !ok {
			continue
		}
		if online {
			out.add(conn, EventUserCameOnline, UserCameOnline{UserID: userID, Username: profile.Username})
		} else {
			out.add(conn, EventUserWentOffline, UserWentOffline{UserID: userID})
		}
	}
	h.mu.Unlock()

	out.flush()
	return nil
}
