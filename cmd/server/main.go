package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"estate-listing-backend/internal/config"
	"estate-listing-backend/internal/database"
	"estate-listing-backend/internal/dispatch"
	"estate-listing-backend/internal/handlers"
	"estate-listing-backend/internal/listings"
	"estate-listing-backend/internal/marketplace"
	"estate-listing-backend/internal/middleware"
	"estate-listing-backend/internal/realtime"
	"estate-listing-backend/internal/storage"
	"estate-listing-backend/internal/store"
	"estate-listing-backend/internal/wizard"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Marketplace API client
	marketplaceClient := marketplace.NewClient(cfg.MarketplaceAPIBaseURL, cfg.MarketplaceAPIKey)

	// Supabase clients
	realtimeClient, err := realtime.NewClient(cfg.SupabaseURL, cfg.SupabasePublishableKey)
	if err != nil {
		log.Fatalf("Failed to initialize realtime client: %v", err)
	}

	storageClient, err := storage.NewClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
	if err != nil {
		log.Fatalf("Failed to initialize storage client: %v", err)
	}

	// Draft persistence requires a direct PostgreSQL connection
	dbURL := cfg.DatabaseURL
	if dbURL == "" {
		log.Println("Warning: DATABASE_URL not set. Migrations will be skipped.")
		log.Println("Draft snapshots will not survive restarts until DATABASE_URL is configured")
	}

	var draftStore *store.DraftStore
	if dbURL != "" {
		draftStore, err = store.NewDraftStore(dbURL)
		if err != nil {
			log.Printf("Warning: Failed to initialize draft store: %v", err)
			log.Println("Draft persistence will be limited. Please configure DATABASE_URL properly.")
			draftStore = nil
		} else {
			defer draftStore.Close()

			// Run migrations
			migrator, err := database.NewMigrator(dbURL)
			if err != nil {
				log.Printf("Warning: Failed to initialize migrator: %v", err)
			} else {
				defer migrator.Close()
				if err := migrator.Run(); err != nil {
					log.Printf("Warning: Migration failed: %v", err)
				} else {
					log.Println("Migrations completed successfully")
				}
			}
		}
	}

	// Listing views cache backed by the marketplace API
	listingCache := listings.NewCache(marketplaceClient, 5*time.Minute)

	// Dispatcher assembles the final multipart submission
	dispatcher := dispatch.NewDispatcher(marketplaceClient, listingCache, realtimeClient)

	// In-memory wizard sessions
	sessions := wizard.NewManager()

	// Initialize handlers
	wizardHandler := handlers.NewWizardHandler(cfg, sessions, marketplaceClient, dispatcher, draftStore, storageClient, realtimeClient)
	listingsHandler := handlers.NewListingsHandler(listingCache)
	projectsHandler := handlers.NewProjectsHandler(dispatcher)

	// Setup router
	router := gin.Default()

	// Middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	// Catalog and calculators
	api.GET("/catalog", handlers.Catalog)
	api.POST("/emi", handlers.EMI)

	// Listing views
	api.GET("/listings/:view", listingsHandler.GetView)

	// Wizard sessions
	api.POST("/wizard", wizardHandler.CreateSession)
	api.GET("/wizard/:session_id", wizardHandler.GetSession)
	api.DELETE("/wizard/:session_id", wizardHandler.DeleteSession)
	api.PATCH("/wizard/:session_id/fields", wizardHandler.UpdateFields)
	api.POST("/wizard/:session_id/advance", wizardHandler.Advance)
	api.POST("/wizard/:session_id/retreat", wizardHandler.Retreat)

	// Upload staging
	api.POST("/wizard/:session_id/uploads/:category", wizardHandler.Upload)
	api.DELETE("/wizard/:session_id/uploads/:category/:file_id", wizardHandler.RemoveUpload)

	// OTP gate and final submission
	api.POST("/wizard/:session_id/otp/send", wizardHandler.SendOTP)
	api.POST("/wizard/:session_id/otp/verify", wizardHandler.VerifyOTP)
	api.POST("/wizard/:session_id/otp/dismiss", wizardHandler.DismissOTP)
	api.POST("/wizard/:session_id/submit", wizardHandler.Submit)

	// Builder project submissions
	api.POST("/projects", projectsHandler.SubmitProject)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
