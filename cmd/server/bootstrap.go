package main

import (
	"github.com/reviewloop/backend/internal/config"
	"github.com/reviewloop/backend/internal/handlers"
	"github.com/reviewloop/backend/internal/models"
	"github.com/reviewloop/backend/internal/services"
	"github.com/reviewloop/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg              *config.Config
	systemLog        *services.SystemLogService
	reviewHandler    *handlers.ReviewHandler
	businessHandler  *handlers.BusinessHandler
	userHandler      *handlers.UserHandler
	bonusHandler     *handlers.BonusHandler
	systemLogHandler *handlers.SystemLogHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	db := models.GetDB()

	systemConfig := services.NewSystemConfigService(db)
	systemLog := services.NewSystemLogService(db, systemConfig)
	if err := systemLog.StartCleanupScheduler(); err != nil {
		logger.Warn().Err(err).Msg("Failed to start log cleanup scheduler")
	}

	businesses := services.NewBusinessService(db)
	users := services.NewUserService(db)
	bonuses := services.NewBonusService(db)
	duplicates := services.NewDuplicateDetector(db, systemConfig)
	ocr := services.NewOCRService(&cfg.OCR)

	classifier := services.NewClassifier()
	heuristic := services.NewHeuristicValidator(classifier)
	llm := services.NewLLMClient(db, &cfg.OpenAI)

	// Without provider credentials the heuristic validator serves directly
	// instead of failing an AI call per submission.
	var validator services.ReviewValidator = heuristic
	if llm.Configured() {
		validator = services.NewAIValidator(llm, heuristic)
	} else {
		logger.Warn().Msg("no language model configured, using heuristic review validation")
	}

	submissions := services.NewSubmissionService(db, businesses, users, bonuses, duplicates, ocr, validator, systemLog)

	return &appServices{
		cfg:              cfg,
		systemLog:        systemLog,
		reviewHandler:    handlers.NewReviewHandler(submissions, businesses, users),
		businessHandler:  handlers.NewBusinessHandler(businesses, bonuses),
		userHandler:      handlers.NewUserHandler(users, bonuses),
		bonusHandler:     handlers.NewBonusHandler(bonuses),
		systemLogHandler: handlers.NewSystemLogHandler(systemLog),
	}
}

// shutdown gracefully stops all background services.
func (s *appServices) shutdown() {
	s.systemLog.StopCleanupScheduler()
	logger.Info().Msg("All schedulers stopped")
}
