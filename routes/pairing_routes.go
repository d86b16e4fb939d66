package routes

import (
	"polyglot_server/controllers"
	"polyglot_server/services"
	"polyglot_server/socket"

	"github.com/gorilla/mux"
)

// RegisterPairingRoutes sets up the token resolution endpoint plus the
// token and connection-request APIs.
func RegisterPairingRoutes(
	r *mux.Router,
	pairingService *services.PairingService,
	tokenService *services.TokenService,
	profileService *services.ProfileService,
	connectionService *services.ConnectionService,
	notifier *socket.Notifier,
	authMW mux.MiddlewareFunc,
	optionalAuthMW mux.MiddlewareFunc,
) {
	connectController := controllers.NewConnectController(pairingService)
	tokenController := controllers.NewTokenController(tokenService, profileService)
	connectionController := controllers.NewConnectionController(connectionService, notifier)

	// /connect/{token} works for anonymous visitors too; the controller
	// answers 401 with a login redirect when no session is present.
	connectRouter := r.PathPrefix("/connect").Subrouter()
	connectRouter.Use(optionalAuthMW)
	connectRouter.HandleFunc("/{token}", connectController.ResolveHandler).Methods("GET")

	tokenRouter := r.PathPrefix("/api/tokens").Subrouter()
	tokenRouter.Use(authMW)
	tokenRouter.HandleFunc("", tokenController.CreateTokenHandler).Methods("POST")
	tokenRouter.HandleFunc("", tokenController.ListTokensHandler).Methods("GET")
	tokenRouter.HandleFunc("/{token}", tokenController.DeleteTokenHandler).Methods("DELETE")

	requestRouter := r.PathPrefix("/api/requests").Subrouter()
	requestRouter.Use(authMW)
	requestRouter.HandleFunc("", connectionController.CreateRequestHandler).Methods("POST")
	requestRouter.HandleFunc("/pending", connectionController.PendingRequestsHandler).Methods("GET")
	requestRouter.HandleFunc("/{id}/respond", connectionController.RespondHandler).Methods("POST")

	connectionRouter := r.PathPrefix("/api/connections").Subrouter()
	connectionRouter.Use(authMW)
	connectionRouter.HandleFunc("", connectionController.ListConnectionsHandler).Methods("GET")
}
