package users

import (
	"errors"
	"net/http"
	"strings"

	"mlmapi/database"
	"mlmapi/models"
	"mlmapi/services"
	"mlmapi/utils"

	"gorm.io/gorm"
)

func InfoHandler(w http.ResponseWriter, r *http.Request) {
	// Auth middleware sets user ID in context; use that
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	db := database.DB
	var user models.User
	if err := db.First(&user, uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	var totalWithdraw float64
	db.Model(&models.Withdrawal{}).
		Where("user_id = ? AND status IN ?", user.ID, []string{"Approved", "Completed"}).
		Select("COALESCE(SUM(requested_amount),0)").Scan(&totalWithdraw)

	var pendingWithdraw float64
	db.Model(&models.Withdrawal{}).
		Where("user_id = ? AND status = ?", user.ID, "Pending").
		Select("COALESCE(SUM(requested_amount),0)").Scan(&pendingWithdraw)

	var booster models.Booster
	boosterInfo := map[string]interface{}{"active": false}
	if err := db.Where("user_id = ? AND status = ?", user.ID, "Active").
		Order("id DESC").First(&booster).Error; err == nil {
		boosterInfo = map[string]interface{}{
			"active":            true,
			"target_directs":    booster.TargetDirects,
			"qualified_directs": booster.QualifiedDirects,
			"end_date":          booster.EndDate,
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"user": map[string]interface{}{
				"name":             user.Name,
				"number":           user.Number,
				"reff_code":        user.ReffCode,
				"balance":          utils.RoundFloat(user.Balance, 2),
				"total_earnings":   utils.RoundFloat(user.TotalEarnings, 2),
				"binary_earnings":  utils.RoundFloat(user.BinaryEarnings, 2),
				"booster_earnings": utils.RoundFloat(user.BoosterEarnings, 2),
				"total_invest":     utils.RoundFloat(user.TotalInvest, 2),
				"total_withdraw":   utils.RoundFloat(totalWithdraw, 2),
				"pending_withdraw": utils.RoundFloat(pendingWithdraw, 2),
				"direct_count":     user.DirectCount,
				"unlocked_levels":  len(services.CalculateUnlockedLevels(user.DirectCount)),
				"active":           strings.ToLower(user.InvestmentStatus) == "active",
			},
			"booster": boosterInfo,
		},
	})
}
