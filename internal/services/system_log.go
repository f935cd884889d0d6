package services

import (
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/reviewloop/backend/internal/models"
	"github.com/reviewloop/backend/pkg/logger"
)

const defaultLogRetentionDays = 30

// SystemLogService writes pipeline audit records to the database and prunes
// them on a retention schedule.
type SystemLogService struct {
	db           *gorm.DB
	systemConfig *SystemConfigService
	cron         *cron.Cron
}

func NewSystemLogService(db *gorm.DB, systemConfig *SystemConfigService) *SystemLogService {
	return &SystemLogService{db: db, systemConfig: systemConfig}
}

func (s *SystemLogService) write(level, module, action, message string, userID *uint, ip string) {
	entry := models.SystemLog{
		Level:   level,
		Module:  module,
		Action:  action,
		Message: message,
		UserID:  userID,
		IP:      ip,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		// Audit writes are best-effort; never fail the caller.
		logger.Error().Err(err).Str("module", module).Str("action", action).Msg("failed to write system log")
	}
}

func (s *SystemLogService) LogInfo(module, action, message string, userID *uint, ip string) {
	s.write("info", module, action, message, userID, ip)
}

func (s *SystemLogService) LogWarning(module, action, message string, userID *uint, ip string) {
	s.write("warning", module, action, message, userID, ip)
}

func (s *SystemLogService) LogError(module, action, message string, userID *uint, ip string) {
	s.write("error", module, action, message, userID, ip)
}

// LogFilter narrows List results. Zero values mean "any".
type LogFilter struct {
	Level  string
	Module string
	Limit  int
	Offset int
}

// List returns audit records newest first with the total match count.
func (s *SystemLogService) List(filter LogFilter) ([]models.SystemLog, int64, error) {
	query := s.db.Model(&models.SystemLog{})
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.Module != "" {
		query = query.Where("module = ?", filter.Module)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var logs []models.SystemLog
	err := query.Order("created_at DESC").Limit(limit).Offset(filter.Offset).Find(&logs).Error
	return logs, total, err
}

// CleanupOldLogs deletes records older than the configured retention window
// and returns the number removed.
func (s *SystemLogService) CleanupOldLogs() (int64, error) {
	days := defaultLogRetentionDays
	if s.systemConfig != nil {
		days = s.systemConfig.GetInt("log_retention_days", defaultLogRetentionDays)
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	result := s.db.Where("created_at < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// StartCleanupScheduler prunes old records daily at 03:00.
func (s *SystemLogService) StartCleanupScheduler() error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc("0 3 * * *", func() {
		removed, err := s.CleanupOldLogs()
		if err != nil {
			logger.Error().Err(err).Msg("system log cleanup failed")
			return
		}
		if removed > 0 {
			logger.Info().Int64("removed", removed).Msg("system log cleanup completed")
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	logger.Info().Msg("system log cleanup scheduler started")
	return nil
}

// StopCleanupScheduler stops the retention job.
func (s *SystemLogService) StopCleanupScheduler() {
	if s.cron != nil {
		s.cron.Stop()
	}
}
