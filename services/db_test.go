package services

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB returns an in-memory database carrying the tables the money
// paths touch. The schema mirrors the production models with portable column
// types; a single connection keeps every query on the same :memory: handle.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	for _, ddl := range testSchema() {
		if err := db.Exec(ddl).Error; err != nil {
			t.Fatalf("create table: %v\n%s", err, ddl)
		}
	}
	return db
}

func testSchema() []string {
	levelCols := make([]string, 0, 30)
	for i := 1; i <= 30; i++ {
		levelCols = append(levelCols, fmt.Sprintf("level_%d_unlocked BOOLEAN NOT NULL DEFAULT 0", i))
	}

	return []string{
		`CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL DEFAULT '',
			number TEXT NOT NULL DEFAULT '',
			password TEXT NOT NULL DEFAULT '',
			reff_code TEXT NOT NULL DEFAULT '',
			sponsor_id INTEGER,
			balance REAL NOT NULL DEFAULT 0,
			total_earnings REAL NOT NULL DEFAULT 0,
			direct_count INTEGER NOT NULL DEFAULT 0,
			binary_earnings REAL NOT NULL DEFAULT 0,
			booster_earnings REAL NOT NULL DEFAULT 0,
			total_invest REAL NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'Active',
			investment_status TEXT NOT NULL DEFAULT 'Inactive',
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE mlm_transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			transaction_type TEXT NOT NULL,
			amount REAL NOT NULL,
			description TEXT,
			status TEXT NOT NULL DEFAULT 'Success',
			reference_type TEXT,
			reference_id INTEGER,
			balance_before REAL NOT NULL,
			balance_after REAL NOT NULL,
			idempotency_key TEXT UNIQUE,
			metadata TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE withdrawals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			requested_amount REAL NOT NULL,
			deduction_percentage REAL NOT NULL DEFAULT 0,
			deduction_amount REAL NOT NULL DEFAULT 0,
			final_amount REAL NOT NULL,
			wallet_address TEXT,
			payment_method TEXT,
			network TEXT,
			order_id TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL DEFAULT 'Pending',
			rejection_reason TEXT,
			processed_by INTEGER,
			processed_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE boosters (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			package_id INTEGER NOT NULL,
			investment_amount REAL NOT NULL,
			start_date DATETIME NOT NULL,
			end_date DATETIME NOT NULL,
			qualified_directs INTEGER NOT NULL DEFAULT 0,
			target_directs INTEGER NOT NULL,
			bonus_roi_percentage REAL NOT NULL DEFAULT 0,
			reward_credited BOOLEAN NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'Active',
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE user_packages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			amount REAL NOT NULL,
			roi_percentage REAL NOT NULL DEFAULT 0,
			has_booster BOOLEAN NOT NULL DEFAULT 0,
			booster_roi_percentage REAL NOT NULL DEFAULT 0,
			total_returned REAL NOT NULL DEFAULT 0,
			next_return_at DATETIME,
			last_return_at DATETIME,
			activated_at DATETIME,
			stopped_at DATETIME,
			order_id TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL DEFAULT 'Active',
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE payouts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			payout_type TEXT NOT NULL,
			amount REAL NOT NULL,
			reference_id INTEGER,
			created_at DATETIME
		)`,
		`CREATE TABLE plan_settings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			plan_key TEXT NOT NULL UNIQUE,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			config TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE level_unlocks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL UNIQUE,
			direct_count INTEGER NOT NULL DEFAULT 0,
			unlocked_levels INTEGER NOT NULL DEFAULT 0,
			` + strings.Join(levelCols, ",\n\t\t\t") + `,
			created_at DATETIME,
			updated_at DATETIME
		)`,
	}
}
