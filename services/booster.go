package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"mlmapi/models"
	"mlmapi/utils"

	"gorm.io/gorm"
)

// boosterRewardRate is the fixed one-time reward: 10% of the linked
// investment amount.
const boosterRewardRate = 0.10

// boosterWindowClosed reports whether the qualification window has ended.
// The end instant itself counts as closed.
func boosterWindowClosed(endDate, now time.Time) bool {
	return !now.Before(endDate)
}

// boosterRewardAmount is the one-time reward for a given linked investment.
func boosterRewardAmount(investmentAmount float64) float64 {
	return utils.RoundFloat(investmentAmount*boosterRewardRate, 2)
}

// InitializeBooster opens a 30-day qualification window tied to one
// investment. At most one Active or Achieved booster exists per user, so a
// second qualifying purchase while a window is live is a silent no-op.
// packageID/amount may be zero to resolve from the user's most recent active
// package.
func InitializeBooster(db *gorm.DB, userID uint, packageID uint, investmentAmount float64) error {
	cfg, err := LoadBoosterConfig(db)
	if err != nil {
		return err
	}
	if cfg == nil {
		log.Printf("[booster] init skipped for user %d: plan inactive", userID)
		return nil
	}

	var existing models.Booster
	err = db.Where("user_id = ? AND status IN ?", userID, []string{"Active", "Achieved"}).First(&existing).Error
	if err == nil {
		log.Printf("[booster] init skipped for user %d: booster %d already %s", userID, existing.ID, existing.Status)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if packageID == 0 {
		var pkg models.UserPackage
		if err := db.Where("user_id = ? AND status = ?", userID, "Active").
			Order("activated_at DESC").First(&pkg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("[booster] init skipped for user %d: no active package", userID)
				return nil
			}
			return err
		}
		packageID = pkg.ID
		investmentAmount = pkg.Amount
	}

	now := time.Now()
	booster := models.Booster{
		UserID:             userID,
		PackageID:          packageID,
		InvestmentAmount:   investmentAmount,
		StartDate:          now,
		EndDate:            now.Add(time.Duration(cfg.WindowDays) * 24 * time.Hour),
		QualifiedDirects:   0,
		TargetDirects:      cfg.TargetDirects,
		BonusROIPercentage: cfg.BonusROIPercentage,
		RewardCredited:     false,
		Status:             "Active",
	}
	return db.Create(&booster).Error
}

// UpdateBoosterDirectCount recomputes qualification for a sponsor's active
// booster after a downline event. Unlike volume accounting this propagates
// errors: a failed reward credit must surface to the caller.
func UpdateBoosterDirectCount(db *gorm.DB, sponsorID uint) error {
	var booster models.Booster
	err := db.Where("user_id = ? AND status = ?", sponsorID, "Active").First(&booster).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	// Expiry wins over qualification: a target reached after the window
	// closes credits nothing.
	if boosterWindowClosed(booster.EndDate, time.Now()) {
		return db.Model(&booster).Update("status", "Expired").Error
	}

	qualified, err := countQualifiedDirects(db, sponsorID, booster.InvestmentAmount)
	if err != nil {
		return err
	}
	if err := db.Model(&booster).Update("qualified_directs", qualified).Error; err != nil {
		return err
	}

	if qualified < booster.TargetDirects || booster.RewardCredited {
		return nil
	}
	return creditBoosterReward(db, &booster)
}

// countQualifiedDirects counts directly sponsored active users holding an
// Active package at least as large as the booster's linked investment.
func countQualifiedDirects(db *gorm.DB, sponsorID uint, minAmount float64) (int, error) {
	var count int64
	err := db.Model(&models.User{}).
		Joins("JOIN user_packages ON user_packages.user_id = users.id").
		Where("users.sponsor_id = ? AND users.status = ?", sponsorID, "Active").
		Where("user_packages.status = ? AND user_packages.amount >= ?", "Active", minAmount).
		Distinct("users.id").
		Count(&count).Error
	return int(count), err
}

// creditBoosterReward pays the one-time 10% reward and flips the booster to
// Achieved. Runs under one transaction with the booster row locked; the
// deterministic idempotency key on the ledger row is the second guard against
// a double credit.
func creditBoosterReward(db *gorm.DB, booster *models.Booster) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var locked models.Booster
		if err := lockForUpdate(tx).First(&locked, booster.ID).Error; err != nil {
			return err
		}
		if locked.Status != "Active" || locked.RewardCredited {
			return nil
		}
		// The caller's expiry check ran outside this lock and can race the
		// deadline. Re-assert it here so a reward never commits at or after
		// end_date.
		if boosterWindowClosed(locked.EndDate, time.Now()) {
			return tx.Model(&locked).Update("status", "Expired").Error
		}

		reward := boosterRewardAmount(locked.InvestmentAmount)
		key := fmt.Sprintf("booster_reward_%d", locked.ID)
		if _, err := PostLedgerEntry(tx, locked.UserID, reward, LedgerEntry{
			Type:           "booster_reward",
			Description:    fmt.Sprintf("Booster reward for %d qualified directs", locked.TargetDirects),
			ReferenceType:  "booster",
			ReferenceID:    &locked.ID,
			IdempotencyKey: &key,
			Earning:        true,
			EarningField:   "booster_earnings",
			Metadata: map[string]interface{}{
				"investment_amount": locked.InvestmentAmount,
				"target_directs":    locked.TargetDirects,
			},
		}); err != nil {
			return err
		}

		if err := tx.Model(&locked).Updates(map[string]interface{}{
			"status":          "Achieved",
			"reward_credited": true,
		}).Error; err != nil {
			return err
		}

		payout := models.Payout{
			UserID:      locked.UserID,
			PayoutType:  "booster_reward",
			Amount:      reward,
			ReferenceID: &locked.ID,
		}
		if err := tx.Create(&payout).Error; err != nil {
			return err
		}

		// Flag running packages so the daily accrual applies the bonus rate.
		if err := tx.Model(&models.UserPackage{}).
			Where("user_id = ? AND status = ?", locked.UserID, "Active").
			Updates(map[string]interface{}{
				"has_booster":            true,
				"booster_roi_percentage": locked.BonusROIPercentage,
			}).Error; err != nil {
			return err
		}

		log.Printf("[booster] user %d achieved booster %d, reward %.2f credited", locked.UserID, locked.ID, reward)
		return nil
	})
}

// ExpireOverdueBoosters marks every Active booster whose window has closed as
// Expired. Invoked by the daily cron sweep.
func ExpireOverdueBoosters(db *gorm.DB) (int, error) {
	res := db.Model(&models.Booster{}).
		Where("status = ? AND end_date <= ?", "Active", time.Now()).
		Update("status", "Expired")
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("[booster] expired %d overdue boosters", res.RowsAffected)
	}
	return int(res.RowsAffected), nil
}
