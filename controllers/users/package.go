package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"mlmapi/database"
	"mlmapi/models"
	"mlmapi/services"
	"mlmapi/utils"
)

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

type PurchasePackageRequest struct {
	Name          string  `json:"name"`
	Amount        float64 `json:"amount"`
	ROIPercentage float64 `json:"roi_percentage"`
}

// POST /api/users/packages
func PurchasePackageHandler(w http.ResponseWriter, r *http.Request) {
	var req PurchasePackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not valid JSON"})
		return
	}

	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	if req.Amount <= 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Amount must be greater than zero"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		req.Name = "Standard"
	}
	if req.ROIPercentage <= 0 {
		req.ROIPercentage = 10
	}

	db := database.DB

	var user models.User
	if err := db.First(&user, uid).Error; err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}
	if strings.ToLower(user.Status) != "active" {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Your account is not active, please contact support"})
		return
	}

	pkg, err := services.PurchasePackage(db, uid, req.Name, req.Amount, req.ROIPercentage)
	if err != nil {
		if errors.Is(err, services.ErrInsufficientBalance) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Insufficient balance"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong, please try again"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Package purchased",
		Data: map[string]interface{}{
			"package": map[string]interface{}{
				"id":             pkg.ID,
				"order_id":       pkg.OrderID,
				"name":           pkg.Name,
				"amount":         pkg.Amount,
				"roi_percentage": pkg.ROIPercentage,
				"status":         pkg.Status,
				"next_return_at": formatTimePtr(pkg.NextReturnAt),
				"created_at":     pkg.CreatedAt.Format(time.RFC3339),
			},
		},
	})
}

// GET /api/users/packages
func ListPackagesHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	db := database.DB

	var packages []models.UserPackage
	if err := db.Where("user_id = ?", uid).Order("id DESC").Find(&packages).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve package data"})
		return
	}

	var resp []map[string]interface{}
	var totalActive float64
	for _, p := range packages {
		roi := p.ROIPercentage
		if p.HasBooster {
			roi = utils.RoundFloat(roi+p.BoosterROIPercentage, 2)
		}
		if p.Status == "Active" {
			totalActive += p.Amount
		}
		resp = append(resp, map[string]interface{}{
			"id":             p.ID,
			"order_id":       p.OrderID,
			"name":           p.Name,
			"amount":         p.Amount,
			"roi_percentage": p.ROIPercentage,
			"effective_roi":  roi,
			"has_booster":    p.HasBooster,
			"total_returned": p.TotalReturned,
			"status":         p.Status,
			"next_return_at": formatTimePtr(p.NextReturnAt),
			"purchase_time":  p.CreatedAt.Format(time.RFC3339),
		})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"data":                resp,
			"total_active_amount": utils.RoundFloat(totalActive, 2),
		},
	})
}
