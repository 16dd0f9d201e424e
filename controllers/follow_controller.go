package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"opentalk_server/services"
	"opentalk_server/utils"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// Follower is implemented by *services.FollowService
type Follower interface {
	FollowUser(ctx context.Context, followerID, targetID string, reportedDuration int) (*services.FollowResult, error)
}

// FollowController handles follow requests made after a call
type FollowController struct {
	FollowService Follower
}

func NewFollowController(followService Follower) *FollowController {
	return &FollowController{FollowService: followService}
}

// FollowUser handles POST /api/follows/{id}
func (c *FollowController) FollowUser(w http.ResponseWriter, r *http.Request) {
	targetID := mux.Vars(r)["id"]

	var payload struct {
		UserID      string `json:"userId"`
		MetDuration int    `json:"metDuration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.WithError(err).Warn("⚠️ Failed to decode follow request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.UserID == "" || targetID == "" {
		http.Error(w, "userId and target id are required", http.StatusBadRequest)
		return
	}

	result, err := c.FollowService.FollowUser(r.Context(), payload.UserID, targetID, payload.MetDuration)
	switch {
	case errors.Is(err, services.ErrCannotFollowSelf), errors.Is(err, services.ErrInsufficientCallDuration):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, services.ErrAlreadyFollowing):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		log.WithError(err).WithField("target", targetID).Error("❌ Failed to follow user")
		http.Error(w, "Failed to follow user", http.StatusInternalServerError)
		return
	}

	utils.WriteJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"message":  "User followed successfully",
		"follow":   result.Follow,
		"isMutual": result.IsMutual,
	})
}
