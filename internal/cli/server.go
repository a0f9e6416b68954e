package cli

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/fkhayef/splitledger/docs" // registers the swagger spec
	"github.com/fkhayef/splitledger/internal/balance"
	"github.com/fkhayef/splitledger/internal/config"
	"github.com/fkhayef/splitledger/internal/database"
	"github.com/fkhayef/splitledger/internal/expense"
	expensesplit "github.com/fkhayef/splitledger/internal/expense/split"
	"github.com/fkhayef/splitledger/internal/group"
	"github.com/fkhayef/splitledger/internal/metrics"
	"github.com/fkhayef/splitledger/internal/settlement"
	"github.com/fkhayef/splitledger/internal/user"
	mw "github.com/fkhayef/splitledger/pkg/middleware"
	"github.com/fkhayef/splitledger/pkg/response"
)

// NewRouter builds every feature and mounts it under /api/v1
func NewRouter(db *database.DB, auth config.AuthConfig, log logrus.FieldLogger) http.Handler {
	authn := mw.NewAuthenticator(auth.JWTSecret, auth.DevHeader)

	// Split Strategy Factory (Factory Pattern)
	splitFactory := expensesplit.NewSplitStrategyFactory()

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, log)
	userHandler := user.NewHandler(userService)

	// Group feature
	groupRepo := group.NewRepository(db)
	groupService := group.NewService(groupRepo, userRepo, log)
	groupHandler := group.NewHandler(groupService)

	// Expense feature (with split factory injected)
	expenseRepo := expense.NewRepository(db)
	expenseService := expense.NewService(expenseRepo, groupRepo, userRepo, splitFactory, log)
	expenseHandler := expense.NewHandler(expenseService)

	// Settlement feature
	settlementService := settlement.NewService(expenseRepo, log)
	settlementHandler := settlement.NewHandler(settlementService)

	// Balance feature
	balanceService := balance.NewService(expenseRepo, groupRepo, userRepo, log)
	balanceHandler := balance.NewHandler(balanceService)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(mw.RequestLogger(log))
	r.Use(metrics.Instrument)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/users", userHandler.Routes(authn.Middleware))

		r.Group(func(r chi.Router) {
			r.Use(authn.Middleware)

			r.Route("/groups", func(r chi.Router) {
				groupHandler.RegisterRoutes(r)
				r.Get("/{id}/expenses", expenseHandler.ListByGroup)
				r.Get("/{id}/balances", balanceHandler.GroupBalances)
			})
			r.Route("/expenses", func(r chi.Router) {
				expenseHandler.RegisterRoutes(r)
				r.Post("/{id}/settle", settlementHandler.Settle)
			})
			r.Mount("/balances", balanceHandler.Routes())
		})
	})

	return r
}
