package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"mlmapi/models"
	"mlmapi/utils"

	"gorm.io/gorm"
)

const planCacheTTL = 60 * time.Second

// loadPlanSetting fetches a plan row, going through Redis when the shared
// client is configured. Cache misses and Redis outages fall back to the DB;
// a stale entry can survive up to the TTL after an admin edit.
func loadPlanSetting(db *gorm.DB, planKey string) (*models.PlanSetting, error) {
	cacheKey := "plan_settings:" + planKey

	if utils.RedisClient != nil {
		ctx := context.Background()
		if raw, err := utils.RedisClient.Get(ctx, cacheKey).Result(); err == nil {
			var cached models.PlanSetting
			if jerr := json.Unmarshal([]byte(raw), &cached); jerr == nil {
				return &cached, nil
			}
		}
	}

	var setting models.PlanSetting
	if err := db.Where("plan_key = ?", planKey).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if utils.RedisClient != nil {
		if raw, err := json.Marshal(&setting); err == nil {
			_ = utils.RedisClient.Set(context.Background(), cacheKey, raw, planCacheTTL).Err()
		}
	}
	return &setting, nil
}

// IsPlanActive reports whether a commission feature is switched on. A missing
// row counts as inactive.
func IsPlanActive(db *gorm.DB, planKey string) bool {
	setting, err := loadPlanSetting(db, planKey)
	if err != nil {
		log.Printf("[plan] failed loading %s: %v", planKey, err)
		return false
	}
	return setting != nil && setting.IsActive
}

// LoadBinaryConfig returns the binary plan parameters, or nil when the plan
// is disabled or absent.
func LoadBinaryConfig(db *gorm.DB) (*models.BinaryPlanConfig, error) {
	setting, err := loadPlanSetting(db, models.PlanBinary)
	if err != nil {
		return nil, err
	}
	if setting == nil || !setting.IsActive {
		return nil, nil
	}
	var cfg models.BinaryPlanConfig
	if err := json.Unmarshal([]byte(setting.Config), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadBoosterConfig returns the booster plan parameters, or nil when the plan
// is disabled or absent.
func LoadBoosterConfig(db *gorm.DB) (*models.BoosterPlanConfig, error) {
	setting, err := loadPlanSetting(db, models.PlanBooster)
	if err != nil {
		return nil, err
	}
	if setting == nil || !setting.IsActive {
		return nil, nil
	}
	var cfg models.BoosterPlanConfig
	if err := json.Unmarshal([]byte(setting.Config), &cfg); err != nil {
		return nil, err
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 30
	}
	return &cfg, nil
}
