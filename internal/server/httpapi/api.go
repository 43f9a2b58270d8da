// Package httpapi exposes the user and item services over JSON/HTTP.
//
// Every route under /api/auth/me and /api/items requires an
// "Authorization: Bearer <token>" header. Any credential failure is
// answered with 401 {"error":"unauthorized"} regardless of its cause.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// UserService is the subset of services.UserService used by the handlers.
type UserService interface {
	Register(ctx context.Context, email, password, name string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Authenticate(token string) (string, error)
	Profile(ctx context.Context, userID string) (models.PublicUser, error)
}

// ItemService is the subset of services.ItemService used by the handlers.
type ItemService interface {
	List(ctx context.Context, userID string) ([]*models.Item, error)
	Get(ctx context.Context, userID, id string) (*models.Item, error)
	Create(ctx context.Context, userID string, in services.ItemInput) (*models.Item, error)
	Update(ctx context.Context, userID, id string, in services.ItemInput) (*models.Item, error)
	Delete(ctx context.Context, userID, id string) error
}

type API struct {
	users          UserService
	items          ItemService
	metrics        *metrics.Metrics
	logger         logging.Logger
	allowedOrigins map[string]struct{}
	now            func() time.Time
}

type Option func(*API)

// WithLogger sets the logger used for request and error logs.
func WithLogger(l logging.Logger) Option {
	return func(a *API) { a.logger = l.With("module", "http") }
}

// WithMetrics enables request instrumentation and the /metrics route.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *API) { a.metrics = m }
}

// WithAllowedOrigins sets the browser origins accepted by CORS.
func WithAllowedOrigins(origins []string) Option {
	return func(a *API) {
		a.allowedOrigins = make(map[string]struct{}, len(origins))
		for _, o := range origins {
			a.allowedOrigins[o] = struct{}{}
		}
	}
}

func New(us UserService, is ItemService, opts ...Option) *API {
	a := &API{
		users:          us,
		items:          is,
		logger:         logging.Nop{},
		allowedOrigins: map[string]struct{}{},
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Router returns a chi.Router with all routes and middleware mounted.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(a.requestLogger)
	r.Use(a.recoverer)
	r.Use(a.cors)
	if a.metrics != nil {
		r.Use(a.instrument)
		r.Method(http.MethodGet, "/metrics", a.metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", a.Health)

		r.Post("/auth/register", a.Register)
		r.Post("/auth/login", a.Login)
		r.With(a.requireAuth).Get("/auth/me", a.Me)

		r.Route("/items", func(r chi.Router) {
			r.Use(a.requireAuth)
			r.Get("/", a.ListItems)
			r.Post("/", a.CreateItem)
			r.Get("/{itemID}", a.GetItem)
			r.Put("/{itemID}", a.UpdateItem)
			r.Delete("/{itemID}", a.DeleteItem)
		})
	})

	return r
}
