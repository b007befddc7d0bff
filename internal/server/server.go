package server

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pagebound/bookchat/internal/config"
	"github.com/pagebound/bookchat/internal/delivery"
	"github.com/pagebound/bookchat/internal/directory"
	"github.com/pagebound/bookchat/internal/handler"
	"github.com/pagebound/bookchat/internal/middleware"
	"github.com/pagebound/bookchat/internal/repository"
	"github.com/pagebound/bookchat/internal/service"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client

	FanoutService service.FanoutService
}

func NewServer(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Server {
	roomRepo := repository.NewRoomRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	mentionRepo := repository.NewMentionRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	userRepo := repository.NewUserRepository(db)
	bookRepo := repository.NewBookRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)

	userDirectory := directory.NewUserDirectory(userRepo)
	bookCatalog := directory.NewBookCatalog(bookRepo)
	prefStore := directory.NewPreferenceStore(prefRepo)

	pushDeliverer := delivery.NewRedisPushDeliverer(redisClient)
	emailDeliverer := delivery.NewLogEmailDeliverer()

	fanoutSvc := service.NewFanoutService(
		redisClient, prefStore, roomRepo,
		pushDeliverer, emailDeliverer,
		cfg.FanoutMaxAttempts, cfg.FanoutAttemptTimeout, cfg.FanoutDedupWindow,
	)
	activitySvc := service.NewActivityService(activityRepo, mentionRepo, fanoutSvc)
	mentionSvc := service.NewMentionService(mentionRepo, userDirectory, activitySvc)
	roomSvc := service.NewRoomService(roomRepo, messageRepo, bookCatalog, activitySvc)
	messageSvc := service.NewMessageService(
		messageRepo, roomRepo, mentionSvc, fanoutSvc, redisClient,
		cfg.MessageMaxLength, cfg.MessageEditWindow, cfg.RateLimitPost,
	)
	reactionSvc := service.NewReactionService(reactionRepo, messageRepo, roomRepo, activitySvc)

	roomHandler := handler.NewRoomHandler(roomSvc)
	messageHandler := handler.NewMessageHandler(messageSvc)
	reactionHandler := handler.NewReactionHandler(reactionSvc)
	activityHandler := handler.NewActivityHandler(activitySvc, redisClient)
	mentionHandler := handler.NewMentionHandler(mentionSvc)
	eventHandler := handler.NewEventHandler(activitySvc, mentionSvc)

	authMiddleware := middleware.NewAuthMiddleware()

	router := gin.Default()
	setupCORS(router)

	api := router.Group("/api")
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Room routes
		protected.GET("/books/:book_id/room", roomHandler.GetOrCreateRoom)
		protected.POST("/rooms/:room_id/join", roomHandler.Join)
		protected.POST("/rooms/:room_id/leave", roomHandler.Leave)
		protected.POST("/rooms/:room_id/mute", roomHandler.Mute)
		protected.POST("/rooms/:room_id/unmute", roomHandler.Unmute)
		protected.PUT("/rooms/:room_id/read", roomHandler.MarkRead)

		// Message routes
		protected.POST("/rooms/:room_id/messages", messageHandler.Post)
		protected.GET("/rooms/:room_id/messages", messageHandler.List)
		protected.PUT("/messages/:message_id", messageHandler.Edit)
		protected.DELETE("/messages/:message_id", messageHandler.Delete)

		// Reaction routes
		protected.POST("/reactions", reactionHandler.React)
		protected.DELETE("/reactions", reactionHandler.Unreact)
		protected.GET("/messages/:message_id/reactions", reactionHandler.GetReactions)

		// Mention routes
		protected.GET("/mentions", mentionHandler.List)

		// Activity feed routes
		protected.GET("/activity", activityHandler.List)
		protected.GET("/activity/unread-count", activityHandler.UnreadCount)
		protected.PUT("/activity/:id/read", activityHandler.MarkRead)
		protected.PUT("/activity/read-all", activityHandler.MarkAllRead)
		protected.GET("/activity/ws", activityHandler.HandleWebSocket)

		// Event ingestion for the review/follow subsystems
		protected.POST("/events", eventHandler.RecordEvent)
		protected.POST("/events/comment-scan", eventHandler.ScanComment)
	}

	return &Server{
		engine:        router,
		db:            db,
		redisClient:   redisClient,
		FanoutService: fanoutSvc,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine) {
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
