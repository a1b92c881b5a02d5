package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"verbmaster/config"
	"verbmaster/database"
	"verbmaster/internal/controller"
	"verbmaster/internal/logger"
	"verbmaster/internal/model"
	"verbmaster/internal/repository"
	"verbmaster/internal/scheduler"
	"verbmaster/internal/service"
	"verbmaster/internal/verbs"
)

func main() {
	godotenv.Load()
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			NewGinEngine,         // Provides *gin.Engine
			verbs.Load,           // Provides the immutable verb dictionary
			func(cfg *config.Config) *time.Location { return cfg.Location() },
		),

		// Repositories Layer
		fx.Provide(
			repository.NewUserRepository,
			repository.NewVerbProgressRepository,
			repository.NewUserProgressRepository,
			repository.NewProcessedAttemptRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewProgressService,
			service.NewSyncService,
			service.NewAuthService,
			service.NewLeaderboardService,
		),

		// API Controllers Layer
		fx.Provide(
			controller.NewProgressController,
			controller.NewSyncController,
			controller.NewAuthController,
			controller.NewLeaderboardController,
			controller.NewVerbController,
			controller.NewRateLimiter,
			scheduler.New,
		),

		// Invokers - Functions that are executed by Fx
		fx.Invoke(AutoMigrateDB),
		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(StartScheduler),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Route gin's request log through zerolog.
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())
	r.Use(controller.RequestID())
	r.Use(ginGzip.Gzip(ginGzip.DefaultCompression))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	authService service.AuthService,
	rl *controller.RateLimiter,
	authCtrl *controller.AuthController,
	progressCtrl *controller.ProgressController,
	syncCtrl *controller.SyncController,
	leaderboardCtrl *controller.LeaderboardController,
	verbCtrl *controller.VerbController,
) {
	api := router.Group("/api/v1")
	api.Use(rl.Middleware())

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authCtrl.Register)
		authGroup.POST("/login", authCtrl.Login)
		authGroup.POST("/logout", authCtrl.Logout)
	}

	// The dictionary never changes between deployments; let clients cache it.
	verbsGroup := api.Group("/verbs", cachecontrol.New(cachecontrol.Config{
		Public: true,
		MaxAge: cachecontrol.Duration(24 * time.Hour),
	}))
	{
		verbsGroup.GET("", verbCtrl.List)
		verbsGroup.GET("/:verb", verbCtrl.Get)
	}

	api.GET("/leaderboard", leaderboardCtrl.Top)

	authed := api.Group("")
	authed.Use(controller.AuthRequired(authService))
	{
		authed.POST("/progress", progressCtrl.RecordAttempt)
		authed.GET("/progress", progressCtrl.GetProgress)
		authed.POST("/sync", syncCtrl.Sync)
		authed.PUT("/leaderboard/name", leaderboardCtrl.SetName)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("verbmaster API server starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func StartScheduler(lc fx.Lifecycle, s *scheduler.Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Start()
		},
		OnStop: func(ctx context.Context) error {
			s.Stop()
			return nil
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.UserProgress{},
		&model.VerbProgress{},
		&model.ProcessedAttempt{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
