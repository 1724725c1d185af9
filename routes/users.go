package routes

import (
	"net/http"
	"time"

	"mlmapi/controllers/auth"
	"mlmapi/controllers/users"
	"mlmapi/middleware"

	"github.com/gorilla/mux"
)

// UsersRoutes registers all user-facing routes on the given subrouter
func UsersRoutes(api *mux.Router) {
	// Rate limiter login/register: 60 per IP per 5 minutes
	loginLimiter := middleware.NewIPRateLimiter(60, 5*time.Minute)
	// Rate limiter session: 120 reads, 60 writes per user per minute
	userLimiter := middleware.NewUserRateLimiter(120, 60, 60)

	// Register & Login
	api.Handle("/register", loginLimiter.Middleware(http.HandlerFunc(auth.RegisterHandler))).Methods(http.MethodPost)
	api.Handle("/login", loginLimiter.Middleware(http.HandlerFunc(auth.LoginHandler))).Methods(http.MethodPost)
	api.Handle("/refresh", loginLimiter.Middleware(http.HandlerFunc(auth.RefreshHandler))).Methods(http.MethodPost)
	api.Handle("/logout", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(auth.LogoutHandler)))).Methods(http.MethodPost)
	api.Handle("/logout-all", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(auth.LogoutAllHandler)))).Methods(http.MethodPost)

	// Change password (write)
	api.Handle("/users/change-password", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.ChangePasswordHandler)))).Methods(http.MethodPost)

	// User info (read)
	api.Handle("/users/info", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.InfoHandler)))).Methods(http.MethodGet)

	// Investment packages
	api.Handle("/users/packages", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.PurchasePackageHandler)))).Methods(http.MethodPost)
	api.Handle("/users/packages", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.ListPackagesHandler)))).Methods(http.MethodGet)

	// Withdrawals
	api.Handle("/users/withdrawals", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.SubmitWithdrawalHandler)))).Methods(http.MethodPost)
	api.Handle("/users/withdrawals", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.ListWithdrawalHandler)))).Methods(http.MethodGet)

	// Ledger history
	api.Handle("/users/transactions", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.GetTransactionHistory)))).Methods(http.MethodGet)

	// Team and level progression
	api.Handle("/users/team", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.TeamHandler)))).Methods(http.MethodGet)
	api.Handle("/users/levels", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.LevelStatusHandler)))).Methods(http.MethodGet)
}
