package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"opentalk_server/config"
	"opentalk_server/routes"
	"opentalk_server/services"
	"opentalk_server/socket"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	config.SetupLogging(cfg.LogLevel)

	// Initialize AWS clients
	log.Println("Initializing AWS clients...")
	awsCfg, err := services.LoadAWSConfig(cfg.AWSRegion)
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	dynamoService := &services.DynamoService{Client: dynamodb.NewFromConfig(awsCfg)}
	s3Service := services.NewS3Service(awsCfg, cfg.S3Bucket)
	log.Println("AWS clients initialized.")

	// Initialize Services
	userProfileService := &services.UserProfileService{Dynamo: dynamoService}
	callHistoryService := &services.CallHistoryService{Dynamo: dynamoService}
	feedService := &services.FeedService{Dynamo: dynamoService}
	followService := &services.FollowService{
		Dynamo:    dynamoService,
		Users:     userProfileService,
		Calls:     callHistoryService,
		Feed:      feedService,
		Threshold: cfg.FollowThreshold,
	}

	deps := socket.Deps{
		Users: userProfileService,
		Calls: callHistoryService,
		Feed:  feedService,
	}
	if cfg.S3Bucket != "" {
		deps.Avatars = s3Service
	}

	var redisPresence *services.RedisPresence
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisPresence, err = services.NewRedisPresence(ctx, cfg.RedisAddr)
		if err == nil {
			if err := redisPresence.Reset(ctx); err != nil {
				log.WithError(err).Warn("⚠️ Failed to clear stale presence")
			}
			deps.Presence = redisPresence
		} else {
			log.WithError(err).Warn("⚠️ Redis presence mirror disabled")
		}
		cancel()
	}

	hub := socket.NewHub(deps, socket.Options{
		PersistTimeout:  cfg.PersistTimeout,
		FollowThreshold: cfg.FollowThreshold,
		FeedThreshold:   cfg.FeedThreshold,
	})

	socketServer := socket.NewSocketServer(hub)
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Fatalf("Socket.IO server stopped: %v", err)
		}
	}()

	var statsCron *cron.Cron
	if cfg.StatsSchedule != "" {
		statsCron, err = socket.StartStatsReporter(hub, cfg.StatsSchedule)
		if err != nil {
			log.WithError(err).Warn("⚠️ Stats reporter disabled")
		}
	}

	// Initialize the router
	r := mux.NewRouter()
	routes.RegisterRoutes(r)
	routes.RegisterRealtimeRoutes(r, hub)
	routes.RegisterFollowRoutes(r, followService)
	routes.RegisterS3Routes(r, s3Service)
	r.Handle("/socket.io/", socketServer)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: corsHandler,
	}

	go func() {
		log.Printf("Starting server on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("❌ HTTP shutdown failed")
	}
	if err := socketServer.Close(); err != nil {
		log.WithError(err).Error("❌ Socket.IO shutdown failed")
	}
	if statsCron != nil {
		<-statsCron.Stop().Done()
	}

	hub.Wait()
	if redisPresence != nil {
		if err := redisPresence.Close(); err != nil {
			log.WithError(err).Error("❌ Redis close failed")
		}
	}
	log.Println("Server stopped")
}
