package main

import (
	"fmt"
	"log"
	"net/http"

	"authbase/internal/api"
	"authbase/internal/api/handlers"
	"authbase/internal/api/middleware"
	"authbase/internal/pkg/logger"
	"authbase/internal/platform/cache"
	"authbase/internal/platform/config"
	"authbase/internal/platform/database"
	"authbase/internal/platform/email"
	"authbase/internal/platform/pubsub"
	"authbase/internal/platform/queue"
	"authbase/internal/platform/repositories"
	"authbase/internal/platform/token"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	dbWrapper := database.NewWrapper(db)

	redisClient := cache.NewClient(cfg.Redis)
	defer redisClient.Close()

	cacheStore := cache.NewRedisStore(redisClient, cfg.Redis.CacheTTL)
	broker := pubsub.NewRedisBroker(redisClient)
	purgeQueue := queue.NewDelayedQueue(redisClient)

	// Repositories
	devRepo := repositories.NewDeveloperRepository(db)
	orgRepo := repositories.NewOrganizationRepository(db)
	userRepo := repositories.NewUserRepository(db)
	tokenRepo := repositories.NewTokenRepository(db)
	profileRepo := repositories.NewProfileRepository(db)

	// Services
	tokenSvc := token.NewService(cfg.JWT)
	mailer := email.NewSMTPMailer(cfg.SMTP)

	// Handlers
	developerHandler := handlers.NewDeveloperHandler(devRepo, profileRepo, cacheStore, mailer, cfg.Tokens)
	orgHandler := handlers.NewOrgHandler(orgRepo, cacheStore)
	authHandler := handlers.NewAuthHandler(userRepo, orgRepo, tokenRepo, profileRepo, devRepo,
		cacheStore, mailer, tokenSvc, cfg.JWT, cfg.Tokens)
	profileHandler := handlers.NewProfileHandler(profileRepo, userRepo, devRepo, tokenRepo,
		cacheStore, broker, purgeQueue, tokenSvc, cfg.Sweeper)
	healthHandler := handlers.NewHealthHandler(dbWrapper, redisClient)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenSvc)
	devMiddleware := middleware.NewDeveloperMiddleware(devRepo, cacheStore)

	deps := &api.Dependencies{
		DeveloperHandler: developerHandler,
		OrgHandler:       orgHandler,
		AuthHandler:      authHandler,
		ProfileHandler:   profileHandler,
		HealthHandler:    healthHandler,
		AuthMiddleware:   authMiddleware,
		DevMiddleware:    devMiddleware,
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Printf("Server starting on %s", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
