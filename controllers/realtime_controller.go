package controllers

import (
	"net/http"

	"opentalk_server/socket"
	"opentalk_server/utils"
)

// StatsSource is implemented by *socket.Hub
type StatsSource interface {
	Stats() socket.Stats
}

// RealtimeController exposes the live presence/matchmaking state
type RealtimeController struct {
	Hub StatsSource
}

func NewRealtimeController(hub StatsSource) *RealtimeController {
	return &RealtimeController{Hub: hub}
}

// GetStats returns online users, queue sizes and call counts
func (c *RealtimeController) GetStats(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, c.Hub.Stats())
}
