package routes

import (
	"opentalk_server/controllers"

	"github.com/gorilla/mux"
)

// RegisterFollowRoutes sets up routes under /api/follows
func RegisterFollowRoutes(r *mux.Router, followService controllers.Follower) {
	controller := controllers.NewFollowController(followService)

	followRouter := r.PathPrefix("/api/follows").Subrouter()
	followRouter.HandleFunc("/{id}", controller.FollowUser).Methods("POST")
}
