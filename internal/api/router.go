// internal/api/router.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fairsplit/internal/api/handler"
	"fairsplit/internal/api/middleware"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Groups   *handler.GroupHandler
	Balances *handler.BalanceHandler
	Users    *handler.UserHandler
	Payments *handler.PaymentHandler
}

// RouterConfig carries the router's non-handler dependencies.
type RouterConfig struct {
	JWTSecret string
	Gatherer  prometheus.Gatherer // Served on /metrics when set
}

// NewRouter sets up and returns a new HTTP router.
func NewRouter(h Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(chimw.RequestID)                       // Add a request ID to the context
	r.Use(chimw.RealIP)                          // Use the real IP address
	r.Use(chimw.Logger)                          // Log HTTP requests
	r.Use(chimw.Recoverer)                       // Recover from panics and return 500
	r.Use(chimw.Timeout(handler.DefaultTimeout)) // Bound every request
	r.Use(chimw.AllowContentType("application/json"))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	auth := middleware.JWTAuth(cfg.JWTSecret)

	// Group registry routes
	r.Route("/groups", func(r chi.Router) {
		r.Get("/", h.Groups.ListGroups)
		r.Get("/{groupID}", h.Groups.GetGroup)
		r.Get("/{groupID}/users", h.Groups.GetGroupWithMembers)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/", h.Groups.CreateGroup)
			r.Put("/{groupID}", h.Groups.UpdateGroup)
			r.Delete("/{groupID}", h.Groups.DeleteGroup)
			r.Post("/{groupID}/users", h.Groups.AddUserToGroup)
			r.Delete("/{groupID}/users/{userID}", h.Groups.RemoveUserFromGroup)
		})
	})

	// Settle-up payments between two users' balances
	r.Route("/payments", func(r chi.Router) {
		r.Get("/", h.Payments.ListPayments)
		r.Get("/{paymentID}", h.Payments.GetPayment)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/", h.Payments.CreatePayment)
			r.Delete("/{paymentID}", h.Payments.DeletePayment)
		})
	})

	// User-scoped routes: lookups, memberships and the balance ledger
	r.Route("/users", func(r chi.Router) {
		r.Get("/by-username/{username}", h.Users.GetByUsername)
		r.Get("/{userID}/groups", h.Groups.ListGroupsForUser)
		r.Get("/{userID}/balance", h.Balances.GetBalance)
		r.Get("/{userID}/balance/history", h.Balances.GetBalanceHistory)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Put("/{userID}/balance", h.Balances.SetBalance)
			r.Post("/{userID}/balance/add", h.Balances.AddToBalance)
		})
	})

	return r
}
