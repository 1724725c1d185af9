package users

import (
	"net/http"
	"time"

	"mlmapi/database"
	"mlmapi/models"
	"mlmapi/services"
	"mlmapi/utils"
)

// GET /api/users/team
func TeamHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	db := database.DB

	var directs []models.User
	if err := db.Where("sponsor_id = ?", uid).Order("id ASC").Find(&directs).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve team data"})
		return
	}

	var members []map[string]interface{}
	for _, d := range directs {
		var invested float64
		db.Model(&models.UserPackage{}).
			Where("user_id = ? AND status = ?", d.ID, "Active").
			Select("COALESCE(SUM(amount), 0)").Scan(&invested)

		members = append(members, map[string]interface{}{
			"name":           d.Name,
			"reff_code":      d.ReffCode,
			"status":         d.Status,
			"total_invested": invested,
			"joined_at":      d.CreatedAt.Format(time.RFC3339),
		})
	}

	var node models.BinaryTreeNode
	tree := map[string]interface{}{}
	if err := db.Where("user_id = ?", uid).First(&node).Error; err == nil {
		tree = map[string]interface{}{
			"left_volume":     node.LeftVolume,
			"right_volume":    node.RightVolume,
			"left_unmatched":  node.LeftUnmatched,
			"right_unmatched": node.RightUnmatched,
			"matched_to_date": node.MatchedToDate,
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"direct_count": len(directs),
			"members":      members,
			"binary_tree":  tree,
		},
	})
}

// GET /api/users/levels
func LevelStatusHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	db := database.DB

	var user models.User
	if err := db.First(&user, uid).Error; err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}

	unlocked := services.CalculateUnlockedLevels(user.DirectCount)

	resp := map[string]interface{}{
		"direct_count":    user.DirectCount,
		"unlocked_levels": unlocked,
		"unlocked_count":  len(unlocked),
	}
	if next := services.GetNextUnlockMilestone(user.DirectCount); next != nil {
		resp["next_milestone"] = map[string]interface{}{
			"directs_required": next.DirectsRequired,
			"directs_needed":   next.DirectsNeeded,
			"levels":           next.Levels,
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: resp})
}
