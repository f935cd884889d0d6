package services

import (
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/reviewloop/backend/internal/models"
)

// SystemConfigService reads and writes runtime-tunable settings stored in
// the system_configs table.
type SystemConfigService struct {
	db *gorm.DB
}

func NewSystemConfigService(db *gorm.DB) *SystemConfigService {
	return &SystemConfigService{db: db}
}

// Get returns the raw value for a key.
func (s *SystemConfigService) Get(key string) (string, error) {
	var cfg models.SystemConfig
	if err := s.db.Where("config_key = ?", key).First(&cfg).Error; err != nil {
		return "", err
	}
	return cfg.Value, nil
}

// GetWithDefault returns the value for a key, or the default when missing.
func (s *SystemConfigService) GetWithDefault(key, defaultValue string) string {
	value, err := s.Get(key)
	if err != nil {
		return defaultValue
	}
	return value
}

// GetInt returns the value parsed as an integer, or the default when missing
// or malformed.
func (s *SystemConfigService) GetInt(key string, defaultValue int) int {
	value, err := s.Get(key)
	if err != nil {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// Set creates or updates a config entry.
func (s *SystemConfigService) Set(key, value, configType, group, label string) error {
	var cfg models.SystemConfig
	err := s.db.Where("config_key = ?", key).First(&cfg).Error
	if err == gorm.ErrRecordNotFound {
		return s.db.Create(&models.SystemConfig{
			Key:   key,
			Value: value,
			Type:  configType,
			Group: group,
			Label: label,
		}).Error
	}
	if err != nil {
		return err
	}

	updates := map[string]interface{}{"value": value}
	if configType != "" {
		updates["type"] = configType
	}
	if label != "" {
		updates["label"] = label
	}
	return s.db.Model(&cfg).Updates(updates).Error
}

// List returns config entries, optionally filtered by group.
func (s *SystemConfigService) List(group string) ([]models.SystemConfig, error) {
	var configs []models.SystemConfig
	query := s.db.Order("config_group, config_key")
	if group != "" {
		query = query.Where("config_group = ?", group)
	}
	if err := query.Find(&configs).Error; err != nil {
		return nil, fmt.Errorf("failed to list system configs: %w", err)
	}
	return configs, nil
}
