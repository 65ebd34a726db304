package server

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"sheesh.app/server/internal/config"
	"sheesh.app/server/internal/middleware"
	"sheesh.app/server/pkg/database"
	"sheesh.app/server/pkg/storage"
	"sheesh.app/server/pkg/validator"

	groupHttp "sheesh.app/server/internal/modules/group/delivery/http"
	groupRepo "sheesh.app/server/internal/modules/group/repository"
	groupService "sheesh.app/server/internal/modules/group/service"

	leaderboardHttp "sheesh.app/server/internal/modules/leaderboard/delivery/http"
	leaderboardRepo "sheesh.app/server/internal/modules/leaderboard/repository"
	leaderboardService "sheesh.app/server/internal/modules/leaderboard/service"

	notiHttp "sheesh.app/server/internal/modules/notification/delivery/http"
	notifService "sheesh.app/server/internal/modules/notification/service"

	screentimeHttp "sheesh.app/server/internal/modules/screentime/delivery/http"
	screentimeRepo "sheesh.app/server/internal/modules/screentime/repository"
	screentimeService "sheesh.app/server/internal/modules/screentime/service"

	searchService "sheesh.app/server/internal/modules/search/service"

	userHttp "sheesh.app/server/internal/modules/user/delivery/http"
	userRepo "sheesh.app/server/internal/modules/user/repository"
	userService "sheesh.app/server/internal/modules/user/service"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	cfg         *config.Config
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if err := validator.RegisterCustomValidations(); err != nil {
		return nil, err
	}

	var imageStorage storage.ImageStorage
	if cfg.CloudinaryEnabled() {
		var err error
		imageStorage, err = storage.NewCloudinaryStorage(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryUploadFolder)
		if err != nil {
			return nil, err
		}
	} else {
		log.Println("⚠️ Cloudinary not configured, avatar uploads are disabled")
	}

	var groupIndex searchService.GroupIndex
	if cfg.MeiliSearchHost != "" {
		meiliHost := cfg.MeiliSearchHost
		if !strings.HasPrefix(meiliHost, "http") {
			meiliHost = "http://" + meiliHost + ":7700"
		}
		meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		groupIndex = searchService.NewMeiliSearchService(meiliClient)
	}

	notificationSvc := notifService.NewNotificationService(redisClient)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, cfg.AllowedOrigins)

	groupRepository := groupRepo.NewGroupRepository(db)
	groupSvc := groupService.NewGroupService(groupRepository, groupIndex, notificationSvc, redisClient, cfg.PublicGroupID, cfg.RateLimitJoinCode)
	groupHandler := groupHttp.NewGroupHandler(groupSvc)

	userRepository := userRepo.NewUserRepository(db)
	authSvc := userService.NewAuthService(userRepository, groupSvc, cfg.JWTSecret, cfg.JWTTTL)
	profileSvc := userService.NewProfileService(userRepository, imageStorage)
	userHandler := userHttp.NewUserHandler(authSvc, profileSvc)

	screentimeSvc := screentimeService.NewScreentimeService(screentimeRepo.NewScreentimeRepository(db), groupRepository, notificationSvc, redisClient, cfg.RateLimitUpload)
	screentimeHandler := screentimeHttp.NewScreentimeHandler(screentimeSvc)

	engine := leaderboardService.NewEngine(cfg.PublicGroupID, cfg.Location)
	leaderboardSvc := leaderboardService.NewLeaderboardService(leaderboardRepo.NewLeaderboardRepository(db), engine)
	leaderboardHandler := leaderboardHttp.NewLeaderboardHandler(leaderboardSvc, time.Now)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/health", "/metrics"},
	}))

	s := &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		cfg:         cfg,
	}

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)

	api := router.Group("/api")
	api.GET("/health", s.health)

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", userHandler.Register)
		auth.POST("/login", userHandler.Login)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// User routes
		protected.GET("/users/me", userHandler.GetMe)
		protected.PUT("/users/me", userHandler.UpdateMe)
		protected.GET("/users/:user_id/groups", groupHandler.GetUserGroups)

		// Screentime routes
		protected.POST("/screentime", screentimeHandler.Upload)
		protected.GET("/screentime/:user_id", screentimeHandler.GetUserEntries)

		// Group routes
		protected.POST("/groups", groupHandler.CreateGroup)
		protected.GET("/groups", groupHandler.ListGroups)
		protected.GET("/groups/mine", groupHandler.GetMyGroups)
		protected.GET("/groups/search", groupHandler.SearchGroups)
		protected.POST("/groups/join-by-code", groupHandler.JoinByCode)
		protected.PUT("/groups/:group_id", groupHandler.UpdateGroup)
		protected.DELETE("/groups/:group_id", groupHandler.DeleteGroup)
		protected.GET("/groups/:group_id/members", groupHandler.GetMembers)
		protected.POST("/groups/:group_id/join", groupHandler.JoinGroup)
		protected.DELETE("/groups/:group_id/members/:user_id", groupHandler.RemoveMember)

		// Leaderboard routes
		protected.GET("/groups/:group_id/leaderboard", leaderboardHandler.GetLeaderboard)
		protected.GET("/groups/:group_id/leaderboard/ws", notificationHandler.HandleLeaderboardSocket)
	}

	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) health(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{
		"status":      "ok",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": s.cfg.AppEnv,
		"database":    "ok",
	}

	if err := database.Ping(c.Request.Context(), s.db); err != nil {
		log.Printf("Health check: database unreachable: %v", err)
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["database"] = "unreachable"
	}

	if s.redisClient != nil {
		body["redis"] = "ok"
		if err := s.redisClient.Ping(c.Request.Context()).Err(); err != nil {
			body["redis"] = "unreachable"
		}
	}

	c.JSON(status, body)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

// Close releases the database and redis connections.
func (s *Server) Close() error {
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Printf("Failed to close redis: %v", err)
		}
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
