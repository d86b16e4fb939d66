package routes

import (
	"polyglot_server/controllers"
	"polyglot_server/services"

	"github.com/gorilla/mux"
)

// RegisterMediaRoutes sets up presigned-URL routes under /api/media
func RegisterMediaRoutes(r *mux.Router, mediaService *services.MediaService, authMW mux.MiddlewareFunc) {
	controller := controllers.NewMediaController(mediaService)

	mediaRouter := r.PathPrefix("/api/media").Subrouter()
	mediaRouter.Use(authMW)
	mediaRouter.HandleFunc("/upload-url", controller.UploadURLHandler).Methods("POST")
	mediaRouter.HandleFunc("/read-url", controller.ReadURLHandler).Methods("GET")
}
