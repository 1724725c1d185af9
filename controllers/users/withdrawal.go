package users

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mlmapi/database"
	"mlmapi/models"
	"mlmapi/services"
	"mlmapi/utils"
)

type WithdrawalRequest struct {
	Amount        float64 `json:"amount"`
	WalletAddress string  `json:"wallet_address"`
	PaymentMethod string  `json:"payment_method"`
	Network       string  `json:"network"`
}

// POST /api/users/withdrawals
func SubmitWithdrawalHandler(w http.ResponseWriter, r *http.Request) {
	var req WithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not valid JSON"})
		return
	}

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
	if strings.ToLower(user.Status) != "active" {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Your account is not active, please contact support"})
		return
	}
	if strings.TrimSpace(req.WalletAddress) == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Wallet address is required"})
		return
	}

	wd, err := services.SubmitWithdrawalRequest(db, uid, req.Amount, req.WalletAddress, req.PaymentMethod, req.Network)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBelowMinimumWithdrawal):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
		case errors.Is(err, services.ErrInsufficientBalance):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Insufficient balance"})
		default:
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong, please try again"})
		}
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Withdrawal request submitted",
		Data: map[string]interface{}{
			"withdrawal": map[string]interface{}{
				"id":               wd.ID,
				"order_id":         wd.OrderID,
				"requested_amount": wd.RequestedAmount,
				"final_amount":     wd.FinalAmount,
				"wallet_address":   wd.WalletAddress,
				"payment_method":   wd.PaymentMethod,
				"status":           wd.Status,
				"created_at":       wd.CreatedAt.Format(time.RFC3339),
			},
		},
	})
}

// GET /api/users/withdrawals
func ListWithdrawalHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 10
	}
	searchQuery := strings.TrimSpace(r.URL.Query().Get("search"))

	db := database.DB

	countQuery := db.Model(&models.Withdrawal{}).Where("user_id = ?", uid)
	if searchQuery != "" {
		countQuery = countQuery.Where("order_id LIKE ?", "%"+searchQuery+"%")
	}
	var totalRows int64
	if err := countQuery.Count(&totalRows).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve withdrawal data"})
		return
	}

	totalPages := int(math.Ceil(float64(totalRows) / float64(limit)))
	offset := (page - 1) * limit

	var withdrawals []models.Withdrawal
	query := db.Where("user_id = ?", uid)
	if searchQuery != "" {
		query = query.Where("order_id LIKE ?", "%"+searchQuery+"%")
	}
	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&withdrawals).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve withdrawal data"})
		return
	}

	var resp []map[string]interface{}
	for _, wd := range withdrawals {
		item := map[string]interface{}{
			"order_id":         wd.OrderID,
			"requested_amount": wd.RequestedAmount,
			"final_amount":     wd.FinalAmount,
			"wallet_address":   MaskWalletAddress(wd.WalletAddress),
			"payment_method":   wd.PaymentMethod,
			"status":           wd.Status,
			"withdrawal_time":  wd.CreatedAt.Format(time.RFC3339),
		}
		if wd.RejectionReason != nil {
			item["rejection_reason"] = *wd.RejectionReason
		}
		resp = append(resp, item)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"data": resp,
			"pagination": map[string]interface{}{
				"page":        page,
				"limit":       limit,
				"total_rows":  totalRows,
				"total_pages": totalPages,
			},
		},
	})
}

func MaskWalletAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "****" + addr[len(addr)-4:]
}
