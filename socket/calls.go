package socket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"opentalk_server/models"

	log "github.com/sirupsen/logrus"
)

// pendingCall is a call only one participant has reported as started
type pendingCall struct {
	participants [2]string
	callType     string
	reported     map[string]bool
}

func (p *pendingCall) sameParticipants(parts [2]string) bool {
	return (p.participants[0] == parts[0] && p.participants[1] == parts[1]) ||
		(p.participants[0] == parts[1] && p.participants[1] == parts[0])
}

func (p *pendingCall) hasParticipant(userID string) bool {
	return p.participants[0] == userID || p.participants[1] == userID
}

// endedCall carries what is needed to persist a call after the lock is released
type endedCall struct {
	call     models.ActiveCall
	duration int
	endedAt  time.Time
}

// validParticipants accepts exactly two distinct ids that include the reporter
func validParticipants(reporter string, participants []string) ([2]string, bool) {
	var parts [2]string
	if len(participants) != 2 || participants[0] == "" || participants[1] == "" || participants[0] == participants[1] {
		return parts, false
	}
	if reporter != participants[0] && reporter != participants[1] {
		return parts, false
	}
	copy(parts[:], participants)
	return parts, true
}

// CallStarted records that userID has the call running. The call becomes
// active once both participants have reported, in either order.
func (h *Hub) CallStarted(userID string, p CallStartedPayload) {
	fields := log.Fields{"callId": p.CallID, "userId": userID}

	parts, ok := validParticipants(userID, p.Participants)
	if p.CallID == "" || !ok {
		log.WithFields(fields).WithField("participants", p.Participants).Warn("⚠️ Ignoring call_started with invalid participants")
		return
	}

	h.mu.Lock()
	if _, active := h.active[p.CallID]; active {
		h.mu.Unlock()
		log.WithFields(fields).Debug("call_started for an already active call")
		return
	}

	pc, exists := h.pending[p.CallID]
	if !exists {
		pc = &pendingCall{participants: parts, callType: p.CallType, reported: make(map[string]bool, 2)}
		h.pending[p.CallID] = pc
	} else if !pc.sameParticipants(parts) {
		h.mu.Unlock()
		log.WithFields(fields).WithField("participants", p.Participants).Warn("⚠️ call_started participants disagree with pending call")
		return
	}
	if pc.callType == "" {
		pc.callType = p.CallType
	}
	pc.reported[userID] = true

	var started *models.ActiveCall
	if len(pc.reported) == 2 {
		delete(h.pending, p.CallID)
		callType := pc.callType
		if callType == "" {
			callType = models.CallTypeVideo
		}
		started = &models.ActiveCall{
			CallID:       p.CallID,
			Participants: pc.participants,
			CallType:     callType,
			StartTime:    h.now(),
		}
		h.active[p.CallID] = started
	}
	h.mu.Unlock()

	if started == nil {
		log.WithFields(fields).Debug("Waiting for the other participant to start the call")
		return
	}

	log.WithFields(log.Fields{"callId": started.CallID, "participants": started.Participants}).Info("📞 Call started")
	a, b := started.Participants[0], started.Participants[1]
	h.background("mark in call", log.Fields{"callId": started.CallID}, func(ctx context.Context) error {
		return errors.Join(h.users.StartCall(ctx, a), h.users.StartCall(ctx, b))
	})
}

// CallEnded finishes the call userID participates in. Unknown call ids are
// ignored and a pending call is simply dropped.
func (h *Hub) CallEnded(userID string, p CallEndedPayload) {
	fields := log.Fields{"callId": p.CallID, "userId": userID}

	var out outbox
	h.mu.Lock()
	if pc, ok := h.pending[p.CallID]; ok {
		if pc.hasParticipant(userID) {
			delete(h.pending, p.CallID)
		}
		h.mu.Unlock()
		log.WithFields(fields).Info("📞 Call ended before both sides started")
		return
	}

	call, ok := h.active[p.CallID]
	if !ok {
		h.mu.Unlock()
		log.WithFields(fields).Debug("call_ended for unknown call")
		return
	}
	if !call.HasParticipant(userID) {
		h.mu.Unlock()
		log.WithFields(fields).Warn("⚠️ call_ended from a non-participant")
		return
	}
	ended := h.endCallLocked(call, &out)
	h.mu.Unlock()

	out.flush()
	h.persistCallEnd(ended)
}

// endCallLocked removes the call, computes its duration and queues the
// confirmation for each participant that is still connected
func (h *Hub) endCallLocked(call *models.ActiveCall, out *outbox) endedCall {
	delete(h.active, call.CallID)

	endedAt := h.now()
	duration := int(endedAt.Sub(call.StartTime) / time.Second)
	if duration < 0 {
		duration = 0
	}
	canFollow := time.Duration(duration)*time.Second >= h.opts.FollowThreshold

	for _, userID := range call.Participants {
		if conn, ok := h.online[userID]; ok {
			out.add(conn, EventCallEndedConfirmed, CallEndedConfirmed{
				CallID:    call.CallID,
				Duration:  duration,
				CanFollow: canFollow,
			})
		}
	}

	log.WithFields(log.Fields{
		"callId":   call.CallID,
		"duration": duration,
	}).Info("📞 Call ended")
	return endedCall{call: *call, duration: duration, endedAt: endedAt}
}

// persistCallEnd writes the history record, updates both users and posts to the feed
func (h *Hub) persistCallEnd(ended endedCall) {
	h.background("record call", log.Fields{"callId": ended.call.CallID}, func(ctx context.Context) error {
		var errs []error
		if err := h.calls.RecordCall(ctx, ended.call.History(ended.endedAt, ended.duration)); err != nil {
			errs = append(errs, err)
		}

		minutes := ended.duration / 60
		for _, userID := range ended.call.Participants {
			if err := h.users.FinishCall(ctx, userID, minutes); err != nil {
				errs = append(errs, err)
			}
		}

		if time.Duration(ended.duration)*time.Second > h.opts.FeedThreshold {
			if err := h.publishCallCompleted(ctx, ended); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

func (h *Hub) publishCallCompleted(ctx context.Context, ended endedCall) error {
	caller, err := h.users.GetUserProfile(ctx, ended.call.Participants[0])
	if err != nil {
		return err
	}
	receiver, err := h.users.GetUserProfile(ctx, ended.call.Participants[1])
	if err != nil {
		return err
	}

	return h.feed.PublishActivity(ctx, models.FeedActivity{
		UserID:       ended.call.Participants[0],
		CreatedAt:    ended.endedAt.UTC().Format(time.RFC3339Nano),
		ActivityType: models.ActivityCallCompleted,
		Description:  fmt.Sprintf("%s had a %d minute call with %s", caller.Username, ended.duration/60, receiver.Username),
		RelatedUser:  ended.call.Participants[1],
		Metadata: &models.FeedMetadata{
			Duration: ended.duration,
			CallType: ended.call.CallType,
		},
		IsPublic: true,
	})
}
