package admins

import (
	"net/http"
	"strings"
	"time"

	"mlmapi/database"
	"mlmapi/models"
	"mlmapi/utils"
)

type DailyGrowth struct {
	Day   string `json:"day"`
	Count *int64 `json:"count"`
}

type DailyInvestment struct {
	Day    string   `json:"day"`
	Amount *float64 `json:"amount"`
}

type TransactionDetail struct {
	UserName    string    `json:"user_name"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type TypeTransactions struct {
	PackagePurchase *int64 `json:"package_purchase"`
	Withdrawal      *int64 `json:"withdrawal"`
	ROIEarning      *int64 `json:"roi_earning"`
	BinaryBonus     *int64 `json:"binary_bonus"`
	BoosterReward   *int64 `json:"booster_reward"`
}

type DashboardStats struct {
	TotalUsers          int64               `json:"total_users"`
	ActiveUsers         int64               `json:"active_users"`
	GrowthUsers         []DailyGrowth       `json:"growth_users"`
	TotalPackages       int64               `json:"total_packages"`
	ActivePackages      int64               `json:"active_packages"`
	OverviewInvestments []DailyInvestment   `json:"overview_investments"`
	TotalWithdrawals    int64               `json:"total_withdrawals"`
	PendingWithdrawals  int64               `json:"pending_withdrawals"`
	TotalBalance        float64             `json:"total_balance"`
	ActiveBoosters      int64               `json:"active_boosters"`
	MatchesToday        int64               `json:"matches_today"`
	MatchedVolumeToday  float64             `json:"matched_volume_today"`
	TypeTransactions    TypeTransactions    `json:"type_transactions"`
	LastTransactions    []TransactionDetail `json:"last_transactions"`
}

func GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	var stats DashboardStats
	db := database.DB

	// initialize slices to ensure empty arrays are returned (not null)
	stats.GrowthUsers = make([]DailyGrowth, 0)
	stats.OverviewInvestments = make([]DailyInvestment, 0)
	stats.LastTransactions = make([]TransactionDetail, 0)

	db.Model(&models.User{}).Count(&stats.TotalUsers)

	db.Model(&models.User{}).
		Where("investment_status = ?", "Active").
		Count(&stats.ActiveUsers)

	// Users created in the last 7 days, grouped by day name
	growthMap := map[string]int64{}
	rows, err := db.Model(&models.User{}).
		Select("DATE_FORMAT(created_at, '%W') as day, COUNT(*) as count").
		Where("created_at >= NOW() - INTERVAL 7 DAY").
		Group("DATE_FORMAT(created_at, '%W')").
		Rows()
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var day string
			var count int64
			if scanErr := rows.Scan(&day, &count); scanErr == nil {
				growthMap[strings.TrimSpace(day)] = count
			}
		}
	}
	for i := 6; i >= 0; i-- {
		d := time.Now().AddDate(0, 0, -i)
		dayName := d.Format("Monday")
		if val, ok := growthMap[dayName]; ok {
			v := val
			stats.GrowthUsers = append(stats.GrowthUsers, DailyGrowth{Day: dayName, Count: &v})
		} else {
			stats.GrowthUsers = append(stats.GrowthUsers, DailyGrowth{Day: dayName, Count: nil})
		}
	}

	db.Model(&models.UserPackage{}).Count(&stats.TotalPackages)

	db.Model(&models.UserPackage{}).
		Where("status = ?", "Active").
		Count(&stats.ActivePackages)

	// Package purchase totals per day for the overview chart
	investMap := map[string]float64{}
	rows, err = db.Model(&models.UserPackage{}).
		Select("DATE_FORMAT(created_at, '%Y-%m-%d') as day, COALESCE(SUM(amount), 0) as amount").
		Where("created_at >= CURDATE() - INTERVAL 6 DAY").
		Group("DATE_FORMAT(created_at, '%Y-%m-%d')").
		Rows()
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var day string
			var amount float64
			if scanErr := rows.Scan(&day, &amount); scanErr == nil {
				investMap[strings.TrimSpace(day)] = amount
			}
		}
	}
	for i := 6; i >= 0; i-- {
		d := time.Now().AddDate(0, 0, -i)
		dateKey := d.Format("2006-01-02") // matches SQL grouping
		dayName := d.Format("Monday")
		if val, ok := investMap[dateKey]; ok {
			v := val
			stats.OverviewInvestments = append(stats.OverviewInvestments, DailyInvestment{Day: dayName, Amount: &v})
		} else {
			stats.OverviewInvestments = append(stats.OverviewInvestments, DailyInvestment{Day: dayName, Amount: nil})
		}
	}

	db.Model(&models.Withdrawal{}).Count(&stats.TotalWithdrawals)

	db.Model(&models.Withdrawal{}).
		Where("status = ?", "Pending").
		Count(&stats.PendingWithdrawals)

	type Result struct {
		TotalBalance float64
	}
	var result Result
	db.Model(&models.User{}).
		Select("COALESCE(SUM(balance), 0) as total_balance").
		Scan(&result)
	stats.TotalBalance = result.TotalBalance

	db.Model(&models.Booster{}).
		Where("status = ?", "Active").
		Count(&stats.ActiveBoosters)

	startOfDay := time.Now().Truncate(24 * time.Hour)
	db.Model(&models.BinaryMatch{}).
		Where("created_at >= ?", startOfDay).
		Count(&stats.MatchesToday)
	db.Model(&models.BinaryMatch{}).
		Where("created_at >= ?", startOfDay).
		Select("COALESCE(SUM(matched_volume), 0)").
		Scan(&stats.MatchedVolumeToday)

	// Ledger type counts (set to null when zero)
	typeCount := func(txType string) *int64 {
		var cnt int64
		db.Model(&models.MLMTransaction{}).
			Where("transaction_type = ?", txType).
			Count(&cnt)
		if cnt == 0 {
			return nil
		}
		return &cnt
	}
	stats.TypeTransactions.PackagePurchase = typeCount("package_purchase")
	stats.TypeTransactions.Withdrawal = typeCount("withdrawal_request")
	stats.TypeTransactions.ROIEarning = typeCount("roi_earning")
	stats.TypeTransactions.BinaryBonus = typeCount("binary_bonus")
	stats.TypeTransactions.BoosterReward = typeCount("booster_reward")

	// Last 10 ledger rows joined with user names
	rows, err = db.Model(&models.MLMTransaction{}).
		Select("users.name as user_name, mlm_transactions.amount, mlm_transactions.transaction_type, mlm_transactions.description, mlm_transactions.created_at").
		Joins("JOIN users ON mlm_transactions.user_id = users.id").
		Order("mlm_transactions.created_at DESC").
		Limit(10).
		Rows()
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var td TransactionDetail
			if scanErr := rows.Scan(&td.UserName, &td.Amount, &td.Type, &td.Description, &td.CreatedAt); scanErr == nil {
				stats.LastTransactions = append(stats.LastTransactions, td)
			}
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    stats,
	})
}
