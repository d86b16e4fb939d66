package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"polyglot_server/middleware"
	"polyglot_server/routes"
	"polyglot_server/services"
	"polyglot_server/socket"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load environment variables from .env when present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	baseURL := os.Getenv("APP_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// Initialize Services
	profileService := &services.ProfileService{Dynamo: dynamoService}
	authService := &services.AuthService{Dynamo: dynamoService, Profiles: profileService, JWTSecret: jwtSecret, TokenTTL: 24 * time.Hour}
	tokenService := &services.TokenService{Dynamo: dynamoService, BaseURL: baseURL}
	connectionService := &services.ConnectionService{Dynamo: dynamoService}
	chatService := &services.ChatService{Dynamo: dynamoService, Connections: connectionService}
	pairingService := &services.PairingService{
		Tokens:      tokenService,
		Connections: connectionService,
		Profiles:    profileService,
	}
	mediaService := &services.MediaService{
		Client: services.InitializeS3Client(),
		Bucket: os.Getenv("S3_BUCKET_NAME"),
	}

	// Initialize the socket.io server and notifier
	socketServer := socket.NewSocketServer(jwtSecret)
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Fatalf("Socket server error: %v", err)
		}
	}()
	defer socketServer.Close()
	notifier := &socket.Notifier{Server: socketServer}

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to Polyglot Chat")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	r.Handle("/socket.io/", socketServer)

	// Register routes
	authMW := middleware.Auth(jwtSecret)
	optionalAuthMW := middleware.OptionalAuth(jwtSecret)

	routes.RegisterAuthRoutes(r, authService, authMW)
	routes.RegisterProfileRoutes(r, profileService, authMW)
	routes.RegisterPairingRoutes(r, pairingService, tokenService, profileService, connectionService, notifier, authMW, optionalAuthMW)
	routes.RegisterChatRoutes(r, chatService, notifier, authMW)
	routes.RegisterMediaRoutes(r, mediaService, authMW)
	routes.RegisterSharePage(r, tokenService, profileService)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
