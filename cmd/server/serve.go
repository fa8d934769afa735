package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mindpath/therapy-app/internal/ai"
	"mindpath/therapy-app/internal/api"
	"mindpath/therapy-app/internal/config"
	"mindpath/therapy-app/internal/quota"
	"mindpath/therapy-app/internal/repository/mongo"
	"mindpath/therapy-app/internal/service"
	"mindpath/therapy-app/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(*configPath)
		},
	}
}

func serve(configPath string) error {
	log.Println("Starting Therapy App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		return fmt.Errorf("connecting to MongoDB: %w", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() { // Run index creation in background; `ensure-indexes` is the blocking variant
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, appDB); err != nil {
			log.Printf("ERROR: Index creation failed: %v", err)
			return
		}
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(context.Background(), cfg.S3)
	if err != nil {
		return fmt.Errorf("initializing S3 storage: %w", err)
	}

	// --- Initialize AI ---
	var observer ai.Observer = ai.NoopObserver{}
	if cfg.AI.LogCalls {
		observer = ai.NewLogObserver(os.Stderr)
	}
	generator, err := ai.NewGeminiGenerator(context.Background(), cfg.AI, observer)
	if err != nil {
		return fmt.Errorf("initializing AI client: %w", err)
	}
	adapter := ai.NewAdapter(generator)

	// --- Initialize Quota ---
	var limiter quota.Limiter = quota.Unlimited{}
	if cfg.Redis.URL != "" {
		redisClient, err := quota.ConnectRedis(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer redisClient.Close()
		limiter = quota.NewRedisLimiter(redisClient, cfg.Quota.MaxGenerations, cfg.Quota.Window)
		log.Printf("AI quota: %d generations per %s", cfg.Quota.MaxGenerations, cfg.Quota.Window)
	} else {
		log.Println("WARN: redis.url not set, AI generation quota disabled")
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	planRepo := mongo.NewMongoTherapyPlanRepository(appDB)
	profileRepo := mongo.NewMongoProfileRepository(appDB)
	onboardingRepo := mongo.NewMongoOnboardingRepository(appDB)
	moodRepo := mongo.NewMongoMoodRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	aggregator := service.NewContextAggregator(planRepo, profileRepo, onboardingRepo, moodRepo, cfg.Plan.MoodWindow)
	planService := service.NewTherapyPlanService(planRepo, userRepo, aggregator, adapter, limiter, service.PlanOptions{
		PreserveCompletion: cfg.Plan.PreserveCompletion,
		AdaptationReason:   cfg.Plan.AdaptationReason,
	})
	moodService := service.NewMoodService(moodRepo, fileStorage, adapter, limiter, cfg.Plan.MoodWindow, service.MediaOptions{
		PresignExpiry: cfg.S3.PresignExpiry,
		MaxBytes:      cfg.S3.MaxMediaBytes,
	})

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, planService, moodService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("ListenAndServe: %w", err)
	case <-quit:
	}
	log.Println("Shutting down server...")

	// In-flight AI calls get until the shutdown timeout to finish
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server exiting.")
	return nil
}
