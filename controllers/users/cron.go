package users

import (
	"net/http"
	"os"

	"mlmapi/database"
	"mlmapi/services"
	"mlmapi/utils"
)

func cronAuthorized(r *http.Request) bool {
	key := r.Header.Get("X-CRON-KEY")
	return key != "" && key == os.Getenv("CRON_KEY")
}

// POST /api/cron/binary-matching
func CronBinaryMatchingHandler(w http.ResponseWriter, r *http.Request) {
	if !cronAuthorized(r) {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	summary, err := services.RunBinaryMatchingForAll(database.DB)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Matching run failed"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Matching run completed",
		Data:    summary,
	})
}

// POST /api/cron/daily-returns
func CronDailyReturnsHandler(w http.ResponseWriter, r *http.Request) {
	if !cronAuthorized(r) {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	processed, err := services.ProcessDailyReturns(database.DB)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Daily returns run failed"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Daily returns processed",
		Data:    map[string]interface{}{"processed": processed},
	})
}

// POST /api/cron/booster-expiry
func CronBoosterExpiryHandler(w http.ResponseWriter, r *http.Request) {
	if !cronAuthorized(r) {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	expired, err := services.ExpireOverdueBoosters(database.DB)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Booster expiry run failed"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Overdue boosters expired",
		Data:    map[string]interface{}{"expired": expired},
	})
}
