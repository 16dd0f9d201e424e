package routes

import (
	"opentalk_server/controllers"

	"github.com/gorilla/mux"
)

// RegisterRealtimeRoutes sets up routes under /api/realtime
func RegisterRealtimeRoutes(r *mux.Router, hub controllers.StatsSource) {
	controller := controllers.NewRealtimeController(hub)

	realtimeRouter := r.PathPrefix("/api/realtime").Subrouter()
	realtimeRouter.HandleFunc("/stats", controller.GetStats).Methods("GET")
}
