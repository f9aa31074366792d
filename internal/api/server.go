// Package api exposes the expense services as a JSON HTTP API.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Veraticus/spent/internal/budget"
	"github.com/Veraticus/spent/internal/category"
	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/dashboard"
	"github.com/Veraticus/spent/internal/ledger"
	"github.com/Veraticus/spent/internal/service"
)

// UserHeader carries the caller's identity. It is trusted as-is.
const UserHeader = "X-User-ID"

// Options tunes the router.
type Options struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// Server routes HTTP requests to the domain services.
type Server struct {
	categories *category.Registry
	ledger     *ledger.Ledger
	budgets    *budget.Tracker
	dashboard  *dashboard.Aggregator
	store      service.Storage
}

// NewServer wires every service over one store.
func NewServer(store service.Storage, clock common.Clock) *Server {
	return &Server{
		categories: category.NewRegistry(store, clock),
		ledger:     ledger.New(store, clock),
		budgets:    budget.NewTracker(store, clock),
		dashboard:  dashboard.NewAggregator(store, clock),
		store:      store,
	}
}

// Routes builds the chi router.
func (s *Server) Routes(opts Options) http.Handler {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", UserHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.health)

	r.Route("/api", func(api chi.Router) {
		api.Use(s.identify)

		api.Route("/categories", func(c chi.Router) {
			c.Get("/", s.listCategories)
			c.Get("/defaults", s.listDefaultCategories)
			c.Post("/", s.createCategory)
		})

		api.Route("/expenses", func(e chi.Router) {
			e.Post("/", s.createExpense)
			e.Get("/", s.listExpenses)
			e.Get("/{id}", s.getExpense)
			e.Put("/{id}", s.updateExpense)
			e.Delete("/{id}", s.deleteExpense)
		})

		api.Route("/budgets", func(b chi.Router) {
			b.Post("/", s.createBudget)
			b.Get("/", s.listBudgets)
			b.Put("/{id}", s.updateBudget)
			b.Delete("/{id}", s.deleteBudget)
		})

		api.Route("/dashboard", func(d chi.Router) {
			d.Get("/stats", s.stats)
			d.Get("/category-breakdown", s.categoryBreakdown)
			d.Get("/trends", s.trends)
			d.Get("/monthly-comparison", s.monthlyComparison)
		})
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	// A trivial read proves the store is reachable
	if _, err := s.store.CountSharedCategories(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
