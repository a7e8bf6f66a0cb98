package main

import (
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/mfcarvalho/flashdeck-api/config"
	"github.com/mfcarvalho/flashdeck-api/genai"
	"github.com/mfcarvalho/flashdeck-api/handlers"
	"github.com/mfcarvalho/flashdeck-api/middleware"
	"github.com/mfcarvalho/flashdeck-api/study"
)

func init() {
	// Load .env file if not in production environment
	if os.Getenv("RAILWAY_ENVIRONMENT_NAME") == "" {
		err := godotenv.Load()
		if err != nil {
			logrus.Warnf(".env file not found, environment variables might not be loaded: %v", err)
		}
	}

	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logrus.SetLevel(level)
	}
	if os.Getenv("LOG_JSON") == "true" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}

func main() {
	// Initialize database connection
	config.Connect()
	authMiddleware := middleware.EnsureValidToken()

	// Model calls take minutes; give the client a matching timeout and let
	// request contexts cancel early
	generator := genai.NewClient(config.Env.OpenAIKey, config.Env.OpenAIModel, 4*time.Minute)
	defer generator.Close()

	DBHandler := &handlers.DBHandler{
		DB:        config.Database,
		Sessions:  study.NewManager(),
		Generator: generator,
	}
	mux := http.NewServeMux()

	// Users
	mux.HandleFunc("POST /api/users", DBHandler.AddUser)
	mux.HandleFunc("GET /api/users/{nickname}/classes", DBHandler.ListClassesForUser)

	// Classes
	mux.HandleFunc("POST /api/classes", middleware.SyncUserMiddleware(DBHandler.CreateClass))
	mux.HandleFunc("GET /api/classes/{classID}", DBHandler.GetClassByID)
	mux.HandleFunc("PUT /api/classes/{classID}", middleware.SyncUserMiddleware(DBHandler.UpdateClassByID))
	mux.HandleFunc("DELETE /api/classes/{classID}", middleware.SyncUserMiddleware(DBHandler.DeleteClassByID))

	// Flashcards
	mux.HandleFunc("GET /api/classes/{classID}/flashcards", DBHandler.GetFlashcardsForClass)
	mux.HandleFunc("POST /api/classes/{classID}/flashcards", middleware.SyncUserMiddleware(DBHandler.CreateFlashcard))
	mux.HandleFunc("POST /api/classes/{classID}/flashcards/bulk", middleware.SyncUserMiddleware(DBHandler.CreateFlashcardsBulk))
	mux.HandleFunc("PUT /api/classes/{classID}/flashcards/{flashcardID}", middleware.SyncUserMiddleware(DBHandler.UpdateFlashcardByID))
	mux.HandleFunc("DELETE /api/classes/{classID}/flashcards/{flashcardID}", middleware.SyncUserMiddleware(DBHandler.DeleteFlashcardByID))

	// Generation
	mux.HandleFunc("POST /api/generate", middleware.SyncUserMiddleware(DBHandler.GenerateFlashcards))

	// Study sessions
	mux.HandleFunc("POST /api/classes/{classID}/study", middleware.SyncUserMiddleware(DBHandler.StartStudySession))
	mux.HandleFunc("GET /api/study/{sessionID}", DBHandler.GetStudySession)
	mux.HandleFunc("POST /api/study/{sessionID}/reveal", DBHandler.RevealCard)
	mux.HandleFunc("POST /api/study/{sessionID}/answer", DBHandler.AnswerCard)

	// Performance
	mux.HandleFunc("POST /api/performance", middleware.SyncUserMiddleware(DBHandler.SavePerformance))
	mux.HandleFunc("GET /api/classes/{classID}/performance", DBHandler.GetClassPerformance)
	mux.HandleFunc("GET /api/classes/{classID}/performance/best", DBHandler.GetBestPerformance)
	mux.HandleFunc("GET /api/classes/{classID}/performance/errors", DBHandler.GetCardErrorStats)

	// Configure CORS with specific options
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "https://flashdeck.vercel.app"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(authMiddleware(mux))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // fallback port for local development
	}
	serverAddr := "0.0.0.0:" + port

	logrus.Infof("Listening on %s", serverAddr)
	if err := http.ListenAndServe(serverAddr, corsHandler); err != nil {
		logrus.Fatalf("Server failed: %v", err)
	}
}
