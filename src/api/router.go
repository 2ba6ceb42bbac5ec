package api

import (
	"log/slog"
	"net/http"

	"ledgerly-server/src/config"
	"ledgerly-server/src/handlers"
	"ledgerly-server/src/ledger"
	"ledgerly-server/src/logger"
	"ledgerly-server/src/middleware"
	"ledgerly-server/src/util"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRouter(cfg config.Config, pool *pgxpool.Pool, svc *ledger.Service, issuer *util.TokenIssuer, l *slog.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(logger.Middleware(logger.WithComponent(l, logger.ComponentHTTP)))
	r.Use(chimw.Recoverer)
	r.Use(chimw.StripSlashes)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.ReadOnlyMiddleware(cfg.ReadOnly, issuer))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	auth := middleware.JWTAuthMiddleware(issuer)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, issuer))

		r.Post("/users", handlers.Register(pool, issuer))
		r.Post("/token", handlers.Login(pool, issuer))
		r.Post("/token/refresh", handlers.RefreshToken(pool, issuer))

		r.Get("/categories", handlers.GetAllCategories(pool))
		r.Get("/categories/{id}", handlers.GetCategory(pool))

		// Protected routes
		r.With(auth).Group(func(r chi.Router) {
			// User
			r.Get("/users", handlers.GetAllUsers(pool))
			r.Get("/users/me", handlers.GetMe(pool))
			r.Post("/users/update-firebase-token", handlers.UpdateFirebaseToken(pool))
			r.Post("/users/change-password", handlers.ChangePassword(pool))
			r.Get("/users/{id}", handlers.GetUser(pool))
			r.Put("/users/{id}", handlers.UpdateUser(pool))
			r.Patch("/users/{id}", handlers.UpdateUser(pool))
			r.Delete("/users/{id}", handlers.DeleteUser(pool))

			// Budget
			r.Get("/budgets", handlers.GetAllBudgetsForUser(pool))
			r.Post("/budgets", handlers.CreateBudget(svc, pool))
			r.Get("/budgets/{id}", handlers.GetBudgetByID(pool))
			r.Put("/budgets/{id}", handlers.UpdateBudget(svc, pool, false))
			r.Patch("/budgets/{id}", handlers.UpdateBudget(svc, pool, true))
			r.Delete("/budgets/{id}", handlers.DeleteBudget(pool))

			// Transactions
			r.With(middleware.ScopedRateLimit("transactions", cfg.TransactionsRateLimitPerMinute)).Group(func(r chi.Router) {
				r.Get("/transactions", handlers.GetAllTransactions(pool))
				r.Post("/transactions", handlers.CreateTransaction(svc))
				r.Get("/transactions/{id}", handlers.GetTransaction(pool))
				r.Put("/transactions/{id}", handlers.UpdateTransaction(svc, false))
				r.Patch("/transactions/{id}", handlers.UpdateTransaction(svc, true))
				r.Delete("/transactions/{id}", handlers.DeleteTransaction(svc))
			})

			// Notifications
			r.Get("/notifications", handlers.GetAllNotifications(pool))
			r.Get("/notifications/{id}", handlers.GetNotification(pool))
		})

		// Staff routes
		r.With(auth, middleware.StaffMiddleware).Group(func(r chi.Router) {
			// Category
			r.Post("/categories", handlers.CreateCategory(pool))
			r.Put("/categories/{id}", handlers.UpdateCategory(pool, false))
			r.Patch("/categories/{id}", handlers.UpdateCategory(pool, true))
			r.Delete("/categories/{id}", handlers.DeleteCategory(pool))

			// Cache
			r.Post("/admin/cache/clear/{cache_name}", handlers.ClearCache())
		})
	})

	return r
}
