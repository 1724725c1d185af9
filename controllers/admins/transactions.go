package admins

import (
	"net/http"
	"strconv"
	"time"

	"mlmapi/database"
	"mlmapi/models"
	"mlmapi/utils"
)

type TransactionResponse struct {
	ID              uint    `json:"id"`
	UserID          uint    `json:"user_id"`
	UserName        string  `json:"username"`
	Phone           string  `json:"phone"`
	Amount          float64 `json:"amount"`
	TransactionType string  `json:"transaction_type"`
	Description     string  `json:"description"`
	Status          string  `json:"status"`
	BalanceBefore   float64 `json:"balance_before"`
	BalanceAfter    float64 `json:"balance_after"`
	ReferenceType   string  `json:"reference_type,omitempty"`
	ReferenceID     *uint   `json:"reference_id,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

func GetTransactions(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	userId := r.URL.Query().Get("userId")
	transactionType := r.URL.Query().Get("type")
	status := r.URL.Query().Get("status")
	search := r.URL.Query().Get("search")
	startDate := r.URL.Query().Get("start_date")
	endDate := r.URL.Query().Get("end_date")

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	offset := (page - 1) * limit

	db := database.DB
	query := db.Model(&models.MLMTransaction{})

	if userId != "" {
		query = query.Where("user_id = ?", userId)
	}
	if transactionType != "" {
		query = query.Where("transaction_type = ?", transactionType)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if search != "" {
		query = query.Where("description LIKE ?", "%"+search+"%")
	}

	if startDate != "" {
		startTime, err := time.Parse("2006-01-02", startDate)
		if err == nil {
			query = query.Where("created_at >= ?", startTime)
		}
	}
	if endDate != "" {
		endTime, err := time.Parse("2006-01-02", endDate)
		if err == nil {
			// Inclusive end date: match everything before the next day
			endTime = endTime.AddDate(0, 0, 1)
			query = query.Where("created_at < ?", endTime)
		}
	}

	var transactions []models.MLMTransaction
	query.Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&transactions)

	// Prepare user IDs to fetch names and phones in batch
	userIDsSet := make(map[uint]struct{})
	for _, t := range transactions {
		userIDsSet[t.UserID] = struct{}{}
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

	var response []TransactionResponse
	for _, t := range transactions {
		response = append(response, TransactionResponse{
			ID:              t.ID,
			UserID:          t.UserID,
			UserName:        usersByID[t.UserID].Name,
			Phone:           usersByID[t.UserID].Number,
			Amount:          t.Amount,
			TransactionType: t.TransactionType,
			Description:     t.Description,
			Status:          t.Status,
			BalanceBefore:   t.BalanceBefore,
			BalanceAfter:    t.BalanceAfter,
			ReferenceType:   t.ReferenceType,
			ReferenceID:     t.ReferenceID,
			CreatedAt:       t.CreatedAt.Format(time.RFC3339),
		})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    response,
	})
}
