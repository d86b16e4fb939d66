package routes

import (
	"polyglot_server/controllers"
	"polyglot_server/services"

	"github.com/gorilla/mux"
)

// RegisterProfileRoutes sets up routes for profile operations under /api/profiles
func RegisterProfileRoutes(r *mux.Router, profileService *services.ProfileService, authMW mux.MiddlewareFunc) {
	controller := controllers.NewProfileController(profileService)

	profileRouter := r.PathPrefix("/api/profiles").Subrouter()
	profileRouter.Use(authMW)
	profileRouter.HandleFunc("/me", controller.UpdateProfileHandler).Methods("PATCH")
	profileRouter.HandleFunc("/{userId}", controller.GetProfileHandler).Methods("GET")
}
