package routes

import (
	"opentalk_server/controllers"
	"opentalk_server/services"

	"github.com/gorilla/mux"
)

// RegisterS3Routes sets up routes for avatar uploads under /api/s3
func RegisterS3Routes(r *mux.Router, s3Service *services.S3Service) {
	controller := controllers.NewS3Controller(s3Service)

	s3Router := r.PathPrefix("/api/s3").Subrouter()
	s3Router.HandleFunc("/upload-url", controller.GeneratePresignedURL).Methods("POST")
	s3Router.HandleFunc("/read-url", controller.GetPresignedReadURL).Methods("POST")
}
