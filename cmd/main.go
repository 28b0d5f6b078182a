package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/m-deepankar-singh/cultus-platform-sub006/config"
	"github.com/m-deepankar-singh/cultus-platform-sub006/database"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/cache"
	adminctrl "github.com/m-deepankar-singh/cultus-platform-sub006/internal/controller/admin"
	learnerctrl "github.com/m-deepankar-singh/cultus-platform-sub006/internal/controller/learner"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/logger"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/model"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/repository"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/service"
)

// @title Learning Progress & Grading API
// @version 1.0
// @description Assessment grading, course completion and Job Readiness tier progression for the learning platform.
// @BasePath /api/v1
// @schemes http https
func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	app := fx.New(
		fx.Provide(
			func() *config.Config { return cfg },
			database.NewDatabase,
			cache.NewInvalidator,
			NewGinEngine,
		),

		// Repositories
		fx.Provide(
			repository.NewProductRepository,
			repository.NewModuleRepository,
			repository.NewLessonRepository,
			repository.NewSubmissionRepository,
			repository.NewProgressRepository,
			repository.NewProgressionRepository,
		),

		// Services
		fx.Provide(
			service.NewModuleService,
			service.NewAdminModuleService,
			service.NewAssessmentService,
			service.NewProgressService,
			service.NewProgressionService,
		),

		// Controllers
		fx.Provide(
			adminctrl.NewAdminController,
			learnerctrl.NewLearnerController,
		),

		fx.Invoke(AutoMigrateDB),
		fx.Invoke(RegisterRoutesAndStartServer),
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

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("http_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer wires the API groups and manages the
// HTTP server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	adminCtrl *adminctrl.AdminController,
	learnerCtrl *learnerctrl.LearnerController,
) {
	adminGroup := router.Group("/api/v1/admin")
	{
		adminGroup.POST("/products", adminCtrl.CreateProduct)
		adminGroup.POST("/modules", adminCtrl.CreateModule)
		adminGroup.GET("/modules/:module_id", adminCtrl.GetModule)
		adminGroup.POST("/students/:student_id/progression/override", adminCtrl.OverrideProgression)
	}

	learnerGroup := router.Group("/api/v1")
	{
		learnerGroup.GET("/modules", learnerCtrl.GetAllModules)
		learnerGroup.GET("/modules/:module_id", learnerCtrl.GetModuleDetails)
		learnerGroup.POST("/modules/:module_id/submissions", learnerCtrl.SubmitAssessment)
		learnerGroup.GET("/modules/:module_id/submissions", learnerCtrl.GetSubmissions)
		learnerGroup.GET("/modules/:module_id/progress", learnerCtrl.GetModuleProgress)
		learnerGroup.POST("/lessons/:lesson_id/progress", learnerCtrl.RecordVideoProgress)
		learnerGroup.POST("/lessons/:lesson_id/quiz-attempts", learnerCtrl.SubmitQuizAttempt)
		learnerGroup.GET("/students/:student_id/progression", learnerCtrl.GetProgression)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Learning progress API starting on port %s", cfg.Server.Port)
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

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Product{},
		&model.Module{},
		&model.Lesson{},
		&model.Question{},
		&model.AssessmentSubmission{},
		&model.LessonProgress{},
		&model.QuizAttempt{},
		&model.ModuleProgress{},
		&model.StudentProgression{},
		&model.ProgressionEvent{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed")
	return nil
}
