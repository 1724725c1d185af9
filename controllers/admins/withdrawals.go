package admins

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mlmapi/database"
	"mlmapi/models"
	"mlmapi/services"
	"mlmapi/utils"

	"github.com/gorilla/mux"
)

type WithdrawalResponse struct {
	ID              uint    `json:"id"`
	UserID          uint    `json:"user_id"`
	UserName        string  `json:"username"`
	Phone           string  `json:"phone"`
	OrderID         string  `json:"order_id"`
	RequestedAmount float64 `json:"requested_amount"`
	FinalAmount     float64 `json:"final_amount"`
	WalletAddress   string  `json:"wallet_address"`
	PaymentMethod   string  `json:"payment_method"`
	Network         string  `json:"network"`
	Status          string  `json:"status"`
	RejectionReason string  `json:"rejection_reason,omitempty"`
	ProcessedAt     string  `json:"processed_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

func GetWithdrawals(w http.ResponseWriter, r *http.Request) {
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
	query := db.Model(&models.Withdrawal{})

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if search != "" {
		query = query.Where("order_id LIKE ?", "%"+search+"%")
	}

	var withdrawals []models.Withdrawal
	query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&withdrawals)

	userIDsSet := make(map[uint]struct{})
	for _, wd := range withdrawals {
		userIDsSet[wd.UserID] = struct{}{}
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

	var response []WithdrawalResponse
	for _, wd := range withdrawals {
		item := WithdrawalResponse{
			ID:              wd.ID,
			UserID:          wd.UserID,
			UserName:        usersByID[wd.UserID].Name,
			Phone:           usersByID[wd.UserID].Number,
			OrderID:         wd.OrderID,
			RequestedAmount: wd.RequestedAmount,
			FinalAmount:     wd.FinalAmount,
			WalletAddress:   wd.WalletAddress,
			PaymentMethod:   wd.PaymentMethod,
			Network:         wd.Network,
			Status:          wd.Status,
			CreatedAt:       wd.CreatedAt.Format(time.RFC3339),
		}
		item.RejectionReason = utils.GetStringValue(wd.RejectionReason)
		if wd.ProcessedAt != nil {
			item.ProcessedAt = wd.ProcessedAt.Format(time.RFC3339)
		}
		response = append(response, item)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    response,
	})
}

// POST /api/admin/withdrawals/{id}/approve
func ApproveWithdrawal(w http.ResponseWriter, r *http.Request) {
	adminID := adminIDFromRequest(r)
	if adminID == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid withdrawal ID"})
		return
	}

	if err := services.ApproveWithdrawal(database.DB, uint(id), uint(adminID)); err != nil {
		switch {
		case errors.Is(err, services.ErrWithdrawalNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Withdrawal not found"})
		case errors.Is(err, services.ErrWithdrawalNotPending):
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Withdrawal has already been processed"})
		default:
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to approve withdrawal"})
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Withdrawal approved"})
}

type RejectWithdrawalRequest struct {
	Reason string `json:"reason"`
}

// POST /api/admin/withdrawals/{id}/reject
func RejectWithdrawal(w http.ResponseWriter, r *http.Request) {
	adminID := adminIDFromRequest(r)
	if adminID == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid withdrawal ID"})
		return
	}

	var req RejectWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Rejection reason is required"})
		return
	}

	if err := services.RejectWithdrawal(database.DB, uint(id), uint(adminID), req.Reason); err != nil {
		switch {
		case errors.Is(err, services.ErrWithdrawalNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Withdrawal not found"})
		case errors.Is(err, services.ErrWithdrawalNotPending):
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Withdrawal has already been processed"})
		default:
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to reject withdrawal"})
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Withdrawal rejected and refunded"})
}
