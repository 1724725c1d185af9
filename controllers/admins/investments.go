package admins

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"mlmapi/database"
	"mlmapi/models"
	"mlmapi/services"
	"mlmapi/utils"

	"github.com/gorilla/mux"
)

type InvestmentResponse struct {
	ID            uint    `json:"id"`
	UserID        uint    `json:"user_id"`
	UserName      string  `json:"username"`
	Phone         string  `json:"phone"`
	OrderID       string  `json:"order_id"`
	Name          string  `json:"name"`
	Amount        float64 `json:"amount"`
	ROIPercentage float64 `json:"roi_percentage"`
	HasBooster    bool    `json:"has_booster"`
	TotalReturned float64 `json:"total_returned"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
}

func GetInvestments(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	status := r.URL.Query().Get("status")
	search := r.URL.Query().Get("search")

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	db := database.DB
	query := db.Model(&models.UserPackage{})

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if search != "" {
		query = query.Where("order_id LIKE ?", "%"+search+"%")
	}

	var packages []models.UserPackage
	query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&packages)

	userIDsSet := make(map[uint]struct{})
	for _, p := range packages {
		userIDsSet[p.UserID] = struct{}{}
	}
	var userIDs []uint
	for id := range userIDsSet {
		userIDs = append(userIDs, id)
	}

	usersByID := make(map[uint]models.User, len(userIDs))
	if len(userIDs) > 0 {
		var users []models.User
		db.Select("id, name, number").Where("id IN ?", userIDs).Find(&users)
		for _, u := range users {
			usersByID[u.ID] = u
		}
	}

	var response []InvestmentResponse
	for _, p := range packages {
		response = append(response, InvestmentResponse{
			ID:            p.ID,
			UserID:        p.UserID,
			UserName:      usersByID[p.UserID].Name,
			Phone:         usersByID[p.UserID].Number,
			OrderID:       p.OrderID,
			Name:          p.Name,
			Amount:        p.Amount,
			ROIPercentage: p.ROIPercentage,
			HasBooster:    p.HasBooster,
			TotalReturned: p.TotalReturned,
			Status:        p.Status,
			CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    response,
	})
}

type StopInvestmentRequest struct {
	DeductionPercentage float64 `json:"deduction_percentage"`
}

// POST /api/admin/investments/{id}/stop
func StopInvestment(w http.ResponseWriter, r *http.Request) {
	adminID := adminIDFromRequest(r)
	if adminID == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid package ID"})
		return
	}

	var req StopInvestmentRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.DeductionPercentage < 0 || req.DeductionPercentage > 100 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Deduction percentage must be between 0 and 100"})
		return
	}

	refund, err := services.StopPackage(database.DB, uint(id), uint(adminID), req.DeductionPercentage)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPackageNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Package not found"})
		case errors.Is(err, services.ErrPackageNotActive):
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Package is not active"})
		default:
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to stop package"})
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Package stopped and principal refunded",
		Data:    map[string]interface{}{"refund_amount": refund},
	})
}

type AdjustROIRequest struct {
	ROIPercentage float64 `json:"roi_percentage"`
}

// PUT /api/admin/investments/{id}/roi
func AdjustInvestmentROI(w http.ResponseWriter, r *http.Request) {
	adminID := adminIDFromRequest(r)
	if adminID == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid package ID"})
		return
	}

	var req AdjustROIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid JSON body"})
		return
	}
	if req.ROIPercentage <= 0 || req.ROIPercentage > 100 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ROI percentage must be between 0 and 100"})
		return
	}

	if err := services.AdjustPackageROI(database.DB, uint(id), req.ROIPercentage, uint(adminID)); err != nil {
		switch {
		case errors.Is(err, services.ErrPackageNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Package not found"})
		case errors.Is(err, services.ErrPackageNotActive):
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Package is not active"})
		default:
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to update ROI"})
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Package ROI updated"})
}
