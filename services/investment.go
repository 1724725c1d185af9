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

var (
	ErrPackageNotFound  = errors.New("package not found")
	ErrPackageNotActive = errors.New("only active packages can be processed")
	ErrInvalidROI       = errors.New("roi percentage out of range")
)

// roiAccrualDays spreads the monthly ROI rate across daily payouts.
const roiAccrualDays = 30

// PurchasePackage debits the wallet and activates an investment package in
// one transaction, then fires the best-effort side effects: binary volume
// propagation, the buyer's booster window, and the sponsor's booster
// qualification recount.
func PurchasePackage(db *gorm.DB, userID uint, name string, amount, roiPercentage float64) (*models.UserPackage, error) {
	if amount <= 0 {
		return nil, errors.New("amount must be greater than zero")
	}

	var pkg models.UserPackage
	err := db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		next := now.Add(24 * time.Hour)
		pkg = models.UserPackage{
			UserID:        userID,
			Name:          name,
			Amount:        amount,
			ROIPercentage: roiPercentage,
			ActivatedAt:   &now,
			NextReturnAt:  &next,
			OrderID:       utils.GenerateOrderID(userID),
			Status:        "Active",
		}
		if err := tx.Create(&pkg).Error; err != nil {
			return err
		}

		if _, err := PostLedgerEntry(tx, userID, -amount, LedgerEntry{
			Type:          "package_purchase",
			Description:   fmt.Sprintf("Purchase of package %s", name),
			ReferenceType: "user_package",
			ReferenceID:   &pkg.ID,
		}); err != nil {
			return err
		}

		return tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"total_invest":      gorm.Expr("total_invest + ?", amount),
			"investment_status": "Active",
		}).Error
	})
	if err != nil {
		return nil, err
	}

	// Volume propagation never fails the purchase; booster errors do surface
	// in logs but the package is already committed.
	_ = UpdateBinaryVolume(db, userID, amount)
	if err := InitializeBooster(db, userID, pkg.ID, amount); err != nil {
		log.Printf("[package] booster init failed for user %d: %v", userID, err)
	}
	var buyer models.User
	if err := db.Select("id, sponsor_id").First(&buyer, userID).Error; err == nil && buyer.SponsorID != nil {
		if err := UpdateBoosterDirectCount(db, *buyer.SponsorID); err != nil {
			log.Printf("[package] sponsor %d booster recount failed: %v", *buyer.SponsorID, err)
		}
	}
	return &pkg, nil
}

// StopPackage halts a running package early and refunds the remaining
// principal minus the configured early-stop deduction. One transaction,
// package row locked, refund posted through the ledger.
func StopPackage(db *gorm.DB, packageID uint, adminID uint, deductionPercentage float64) (float64, error) {
	if deductionPercentage < 0 || deductionPercentage > 100 {
		return 0, errors.New("deduction percentage out of range")
	}

	var refund float64
	err := db.Transaction(func(tx *gorm.DB) error {
		var pkg models.UserPackage
		if err := lockForUpdate(tx).First(&pkg, packageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPackageNotFound
			}
			return err
		}
		if pkg.Status != "Active" {
			return ErrPackageNotActive
		}

		deduction := utils.RoundFloat(pkg.Amount*deductionPercentage/100, 2)
		refund = utils.RoundFloat(pkg.Amount-deduction, 2)

		now := time.Now()
		if err := tx.Model(&pkg).Updates(map[string]interface{}{
			"status":     "Stopped",
			"stopped_at": now,
		}).Error; err != nil {
			return err
		}

		if _, err := PostLedgerEntry(tx, pkg.UserID, refund, LedgerEntry{
			Type:          "investment_stop",
			Description:   fmt.Sprintf("Package %s stopped, principal refund", pkg.OrderID),
			ReferenceType: "user_package",
			ReferenceID:   &pkg.ID,
			Metadata: map[string]interface{}{
				"principal":            pkg.Amount,
				"deduction_percentage": deductionPercentage,
				"deduction_amount":     deduction,
				"stopped_by":           adminID,
			},
		}); err != nil {
			return err
		}
		log.Printf("[package] %d stopped by admin %d, refund %.2f", pkg.ID, adminID, refund)
		return nil
	})
	return refund, err
}

// AdjustPackageROI updates the base ROI rate and records the change as a
// zero-delta ledger row so rate history stays reconcilable.
func AdjustPackageROI(db *gorm.DB, packageID uint, newROI float64, adminID uint) error {
	if newROI <= 0 || newROI > 100 {
		return ErrInvalidROI
	}
	return db.Transaction(func(tx *gorm.DB) error {
		var pkg models.UserPackage
		if err := lockForUpdate(tx).First(&pkg, packageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPackageNotFound
			}
			return err
		}
		if pkg.Status != "Active" {
			return ErrPackageNotActive
		}

		oldROI := pkg.ROIPercentage
		if err := tx.Model(&pkg).Update("roi_percentage", newROI).Error; err != nil {
			return err
		}

		if _, err := PostLedgerEntry(tx, pkg.UserID, 0, LedgerEntry{
			Type:          "roi_adjustment",
			Description:   fmt.Sprintf("Package %s ROI changed %.2f%% -> %.2f%%", pkg.OrderID, oldROI, newROI),
			ReferenceType: "user_package",
			ReferenceID:   &pkg.ID,
			Metadata: map[string]interface{}{
				"old_roi":     oldROI,
				"new_roi":     newROI,
				"adjusted_by": adminID,
			},
		}); err != nil {
			return err
		}
		log.Printf("[package] %d roi %.2f -> %.2f by admin %d", pkg.ID, oldROI, newROI, adminID)
		return nil
	})
}

// ProcessDailyReturns credits one day of ROI to every package that is due,
// including the booster bonus rate where flagged. Each package gets its own
// transaction so one failure does not poison the sweep.
func ProcessDailyReturns(db *gorm.DB) (int, error) {
	now := time.Now()
	var due []models.UserPackage
	if err := db.Where("status = ? AND next_return_at IS NOT NULL AND next_return_at <= ?", "Active", now).
		Find(&due).Error; err != nil {
		return 0, err
	}

	processed := 0
	for i := range due {
		pkg := due[i]
		err := db.Transaction(func(tx *gorm.DB) error {
			rate := pkg.ROIPercentage
			if pkg.HasBooster {
				rate += pkg.BoosterROIPercentage
			}
			amount := utils.RoundFloat(pkg.Amount*rate/100/roiAccrualDays, 2)
			if amount <= 0 {
				return nil
			}

			if _, err := PostLedgerEntry(tx, pkg.UserID, amount, LedgerEntry{
				Type:          "roi_earning",
				Description:   fmt.Sprintf("Daily ROI for package %s", pkg.OrderID),
				ReferenceType: "user_package",
				ReferenceID:   &pkg.ID,
				Earning:       true,
			}); err != nil {
				return err
			}

			next := now.Add(24 * time.Hour)
			return tx.Model(&pkg).Updates(map[string]interface{}{
				"total_returned": gorm.Expr("total_returned + ?", amount),
				"last_return_at": now,
				"next_return_at": next,
			}).Error
		})
		if err != nil {
			log.Printf("[roi] package %d accrual failed: %v", pkg.ID, err)
			continue
		}
		processed++
	}
	return processed, nil
}
