package admins

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"mlmapi/database"
	"mlmapi/models"
	"mlmapi/services"
	"mlmapi/utils"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserResponse struct {
	ID               uint    `json:"id"`
	Name             string  `json:"name"`
	Number           string  `json:"number"`
	ReffCode         string  `json:"reff_code"`
	SponsorID        uint    `json:"sponsor_id"`
	Balance          float64 `json:"balance"`
	TotalEarnings    float64 `json:"total_earnings"`
	TotalInvest      float64 `json:"total_invest"`
	DirectCount      int     `json:"direct_count"`
	Status           string  `json:"status"`
	InvestmentStatus string  `json:"investment_status"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at,omitempty"`
}

func toUserResponse(user models.User) UserResponse {
	var sponsorID uint
	if user.SponsorID != nil {
		sponsorID = *user.SponsorID
	}
	return UserResponse{
		ID:               user.ID,
		Name:             user.Name,
		Number:           user.Number,
		ReffCode:         user.ReffCode,
		SponsorID:        sponsorID,
		Balance:          user.Balance,
		TotalEarnings:    user.TotalEarnings,
		TotalInvest:      user.TotalInvest,
		DirectCount:      user.DirectCount,
		Status:           user.Status,
		InvestmentStatus: user.InvestmentStatus,
		CreatedAt:        user.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:        user.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// adminIDFromRequest parses the Bearer token and returns the admin id claim.
func adminIDFromRequest(r *http.Request) int64 {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return 0
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	_, claims, err := utils.ValidateAccessToken(tokenString)
	if err != nil {
		return 0
	}
	var adminID int64
	if rawID, ok := claims["id"]; ok {
		switch v := rawID.(type) {
		case float64:
			adminID = int64(v)
		case int64:
			adminID = v
		case int:
			adminID = int64(v)
		case string:
			var n int64
			_, _ = fmt.Sscanf(v, "%d", &n)
			adminID = n
		}
	}
	return adminID
}

func GetUsers(w http.ResponseWriter, r *http.Request) {
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
	query := db.Model(&models.User{})

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if search != "" {
		search = "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR number LIKE ? OR reff_code LIKE ?", search, search, search)
	}

	var users []models.User
	query.Offset(offset).Limit(limit).Find(&users)

	var response []UserResponse
	for _, user := range users {
		response = append(response, toUserResponse(user))
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    response,
	})
}

func GetUserDetail(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid user ID",
		})
		return
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
				Success: false,
				Message: "User not found",
			})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Something went wrong, please try again",
		})
		return
	}

	detail := map[string]interface{}{
		"user": toUserResponse(user),
	}

	// Binary tree position and counters
	var node models.BinaryTreeNode
	if err := database.DB.Where("user_id = ?", user.ID).First(&node).Error; err == nil {
		detail["binary_tree"] = node
	}

	// Latest booster window, if any
	var booster models.Booster
	if err := database.DB.Where("user_id = ?", user.ID).Order("id DESC").First(&booster).Error; err == nil {
		detail["booster"] = booster
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    detail,
	})
}

type UpdateUserRequest struct {
	Name             string `json:"name"`
	Number           string `json:"number"`
	Status           string `json:"status"`
	InvestmentStatus string `json:"investment_status"`
}

func UpdateUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid user ID",
		})
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
				Success: false,
				Message: "User not found",
			})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to load user data",
		})
		return
	}

	// Check if phone number is already used by another user
	if user.Number != req.Number {
		var existingUser models.User
		if err := database.DB.Where("number = ? AND id != ?", req.Number, id).First(&existingUser).Error; err == nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
				Success: false,
				Message: "Phone number is already used by another user",
			})
			return
		} else if err != gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
				Success: false,
				Message: "Failed to check phone number",
			})
			return
		}
	}

	user.Name = req.Name
	user.Number = req.Number
	user.Status = req.Status
	user.InvestmentStatus = req.InvestmentStatus

	if err := database.DB.Save(&user).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to update user data",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "User data updated",
		Data:    toUserResponse(user),
	})
}

type UpdateBalanceRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// UpdateUserBalance credits manual funds to a wallet through the ledger.
func UpdateUserBalance(w http.ResponseWriter, r *http.Request) {
	adminID := adminIDFromRequest(r)
	if adminID == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid user ID",
		})
		return
	}

	var req UpdateBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	if req.Amount <= 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Amount must be greater than zero",
		})
		return
	}

	if err := services.AdminAddFunds(database.DB, uint(id), req.Amount, uint(adminID), req.Description); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
				Success: false,
				Message: "User not found",
			})
			return
		}
		log.Printf("[admin/balance] add funds user %d: %v", id, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to update user balance",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "User balance updated",
	})
}

type UpdatePasswordRequest struct {
	Password string `json:"password"`
}

func UpdateUserPassword(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid user ID",
		})
		return
	}

	var req UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	if len(req.Password) < 6 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Password must be at least 6 characters",
		})
		return
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
				Success: false,
				Message: "User not found",
			})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to load user data",
		})
		return
	}

	// Hash new password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to update password",
		})
		return
	}

	user.Password = string(hashedPassword)

	if err := database.DB.Save(&user).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to update password",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "User password updated",
	})
}
