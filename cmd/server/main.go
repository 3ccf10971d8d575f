package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"cafe-rater-backend/internal/database"
	"cafe-rater-backend/internal/handlers"
	customMiddleware "cafe-rater-backend/internal/middleware"
	"cafe-rater-backend/internal/notify"
	"cafe-rater-backend/internal/repository"
	"cafe-rater-backend/internal/stats"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env (ignore error in production — env vars set directly)
	_ = godotenv.Load()

	mongoURI := getEnv("MONGODB_URI", "")
	dbName := getEnv("DB_NAME", "cafe_rater")
	port := getEnv("PORT", "8080")
	authSecret := getEnv("AUTH_JWT_SECRET", "")

	if mongoURI == "" {
		log.Fatal("❌ MONGODB_URI is required")
	}

	// Connect to MongoDB — a failed startup connection is fatal
	if err := database.Connect(mongoURI, dbName); err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}

	// Initialize repositories
	cafeRepo := repository.NewCafeRepo()
	reviewRepo := repository.NewReviewRepo()

	// Ensure indexes
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := cafeRepo.EnsureIndexes(ctx); err != nil {
		log.Printf("⚠️  Warning: failed to create cafe indexes: %v", err)
	}
	if err := reviewRepo.EnsureIndexes(ctx); err != nil {
		log.Printf("⚠️  Warning: failed to create review indexes: %v", err)
	}

	// Review alert notifier: Resend email when configured, log mock otherwise
	var notifier notify.Notifier
	if apiKey := getEnv("RESEND_API_KEY", ""); apiKey != "" && getEnv("REVIEW_ALERT_EMAIL", "") != "" {
		notifier = notify.NewEmailNotifier(apiKey, getEnv("FROM_EMAIL", ""), getEnv("REVIEW_ALERT_EMAIL", ""))
		log.Println("📧 Review alerts via email enabled")
	} else {
		notifier = notify.NewLogNotifier()
	}

	// Initialize services and handlers
	statsSvc := stats.NewService(cafeRepo, reviewRepo)
	cafeHandler := handlers.NewCafeHandler(cafeRepo, reviewRepo, statsSvc)
	reviewHandler := handlers.NewReviewHandler(reviewRepo, cafeRepo, notifier)
	statsHandler := handlers.NewStatsHandler(statsSvc)

	// Setup chi router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"cafe-rater-backend"}`))
	})

	// Read routes (public)
	r.Get("/cafes", cafeHandler.ListCafes)
	r.Get("/cafes/{id}/stats", statsHandler.CafeStats)
	r.Get("/items/{id}/stats", statsHandler.ItemStats)
	r.Get("/stats", statsHandler.GlobalStats)

	// Write routes — bearer tokens from the identity provider required when
	// AUTH_JWT_SECRET is set
	r.Group(func(r chi.Router) {
		if authSecret != "" {
			r.Use(customMiddleware.JWTAuth(authSecret))
		}

		r.Post("/cafes", cafeHandler.CreateCafe)
		r.Delete("/cafes/{id}", cafeHandler.DeleteCafe)
		r.Post("/cafes/{id}/items", cafeHandler.AddItem)
		r.Delete("/items/{id}", cafeHandler.DeleteItem)
		r.Post("/reviews", reviewHandler.SubmitReview)
	})

	// Start server
	log.Printf("🚀 Cafe Rater server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
