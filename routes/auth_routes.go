package routes

import (
	"polyglot_server/controllers"
	"polyglot_server/services"

	"github.com/gorilla/mux"
)

// RegisterAuthRoutes sets up routes for signup, login and session lookup under /api/auth
func RegisterAuthRoutes(r *mux.Router, authService *services.AuthService, authMW mux.MiddlewareFunc) {
	controller := controllers.NewAuthController(authService)

	authRouter := r.PathPrefix("/api/auth").Subrouter()
	authRouter.HandleFunc("/signup", controller.SignupHandler).Methods("POST")
	authRouter.HandleFunc("/login", controller.LoginHandler).Methods("POST")
	authRouter.HandleFunc("/verify", controller.VerifyHandler).Methods("GET")

	meRouter := r.PathPrefix("/api/auth").Subrouter()
	meRouter.Use(authMW)
	meRouter.HandleFunc("/me", controller.MeHandler).Methods("GET")
}
