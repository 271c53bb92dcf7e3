package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"vireo.social/vireo/internal/config"
	"vireo.social/vireo/internal/handler"
	"vireo.social/vireo/internal/middleware"
	"vireo.social/vireo/internal/model"
	"vireo.social/vireo/internal/realtime"
	"vireo.social/vireo/internal/repository"
	"vireo.social/vireo/internal/service"
	"vireo.social/vireo/pkg/database"
	"vireo.social/vireo/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := seedDevUsers(db); err != nil {
			log.Fatalf("failed to seed dev users: %v", err)
		}
	}

	redisClient := newRedisClient(cfg)

	meiliClient := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	lookupService := service.NewLookupService(meiliClient)

	objectStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	hub := realtime.NewHub()

	userRepo := repository.NewUserRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	followRepo := repository.NewFollowRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, redisClient)
	graphService := service.NewGraphService(followRepo, likeRepo, userRepo, notificationService)
	feedService := service.NewFeedService(statusRepo, followRepo, cfg.FeedPageSize)
	statusService := service.NewStatusService(statusRepo, objectStorage, hub)
	chatService := service.NewChatService(messageRepo, hub)
	trendService := service.NewTrendService(statusRepo, service.NewRedisCache(redisClient), cfg.TrendTTL)
	profileService := service.NewProfileService(userRepo, objectStorage, lookupService)

	feedHandler := handler.NewFeedHandler(feedService, trendService)
	statusHandler := handler.NewStatusHandler(statusService, graphService)
	userHandler := handler.NewUserHandler(graphService, statusService, notificationService, profileService, lookupService)
	chatHandler := handler.NewChatHandler(chatService)
	notificationHandler := handler.NewNotificationHandler(redisClient)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	setupCORS(router, cfg)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)

	api := router.Group("/api")

	// Public feed surface
	api.GET("/feed", feedHandler.GetFeed)
	api.GET("/feed/trends", feedHandler.GetTrends)
	api.GET("/user/:id/followers", userHandler.GetFollowers)
	api.GET("/user/:id/status", userHandler.GetUserStatuses)

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/feed/following", feedHandler.GetFollowingFeed)

		protected.POST("/status", statusHandler.CreateStatus)
		protected.DELETE("/status/:id", statusHandler.DeleteStatus)
		protected.POST("/status/reply/:id", statusHandler.CreateReply)
		protected.GET("/status/reply/:id", statusHandler.GetReplies)
		protected.POST("/status/:id/like", statusHandler.ToggleLike)
		protected.POST("/status/:id/view", statusHandler.RecordView)

		protected.POST("/user/:id/follow", userHandler.ToggleFollow)
		protected.GET("/user/:id/replies", userHandler.GetUserReplies)
		protected.GET("/user/notifications", userHandler.GetNotifications)
		protected.GET("/user/notifications/ws", notificationHandler.HandleWebSocket)
		protected.GET("/user/lookup", userHandler.Lookup)
		protected.GET("/profile/:username", userHandler.GetProfileByUsername)
		protected.PUT("/profile", userHandler.UpdateProfile)

		protected.GET("/chat/:userID/messages", chatHandler.GetMessages)
		protected.POST("/chat/:userID/messages", chatHandler.SendMessage)
		protected.GET("/chat/:userID/ws", chatHandler.HandleWebSocket)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server exited with error: %v", err)
		}
	}()

	<-ctx.Done()

	// Terminate realtime subscriptions before dropping connections
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func newRedisClient(cfg *config.Config) *redis.Client {
	if cfg.RedisURL == "" {
		return redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	return redis.NewClient(opts)
}

func setupCORS(router *gin.Engine, cfg *config.Config) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.AllowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Status{},
		&model.StatusReply{},
		&model.Follow{},
		&model.Like{},
		&model.Message{},
		&model.Notification{},
	)
}

func seedDevUsers(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []model.User{
		{Name: "Ada Lovelace", Username: "ada", PasswordHash: string(hash)},
		{Name: "Alan Turing", Username: "alan", PasswordHash: string(hash)},
	}
	for i := range users {
		if err := db.Create(&users[i]).Error; err != nil {
			return err
		}
	}

	log.Println("seeded development users (password: password)")
	return nil
}
