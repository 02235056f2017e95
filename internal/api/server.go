// Package api exposes the storefront over HTTP: accounts, password reset and
// the product catalog.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"storefront/internal/auth"
	"storefront/internal/database"
	"storefront/internal/logging"
	"storefront/internal/models"
)

type CategoryRepository interface {
	Create(ctx context.Context, c *models.Category) error
	List(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, id string) (*models.Category, error)
	Update(ctx context.Context, id, name, description string) (*models.Category, error)
	Delete(ctx context.Context, id string) error
}

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	List(ctx context.Context, page, limit int64) ([]models.Product, int64, error)
	Search(ctx context.Context, f database.ProductFilter) ([]models.Product, error)
	Delete(ctx context.Context, id string) error
}

// Deps are the collaborators of a Server. RateLimit and Gate are pipeline
// steps; RateLimit runs in front of every route except the health check,
// Gate in front of protected routes only.
type Deps struct {
	Accounts   *auth.Accounts
	Resets     *auth.ResetFlow
	Categories CategoryRepository
	Products   ProductRepository
	RateLimit  Step
	Gate       Step
	Log        logging.Logger
	Production bool
}

type Server struct {
	accounts   *auth.Accounts
	resets     *auth.ResetFlow
	categories CategoryRepository
	products   ProductRepository
	rateLimit  Step
	gate       Step
	log        logging.Logger
	production bool
	now        func() time.Time
}

func NewServer(d Deps) *Server {
	return &Server{
		accounts:   d.Accounts,
		resets:     d.Resets,
		categories: d.Categories,
		products:   d.Products,
		rateLimit:  d.RateLimit,
		gate:       d.Gate,
		log:        d.Log.With("component", "api"),
		production: d.Production,
		now:        time.Now,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(requestID)

	r.HandleFunc("/health", health).Methods(http.MethodGet)

	public := func(h handlerFunc) http.HandlerFunc { return s.chain(h, s.rateLimit) }
	protected := func(h handlerFunc) http.HandlerFunc { return s.chain(h, s.rateLimit, s.gate) }

	r.HandleFunc("/signup", public(s.signup)).Methods(http.MethodPost)
	r.HandleFunc("/signin", public(s.signin)).Methods(http.MethodPost)
	r.HandleFunc("/forgot-password", public(s.forgotPassword)).Methods(http.MethodPost)
	r.HandleFunc("/reset-password", public(s.resetPassword)).Methods(http.MethodPost)
	r.HandleFunc("/me", protected(s.me)).Methods(http.MethodGet)

	r.HandleFunc("/categories", public(s.createCategory)).Methods(http.MethodPost)
	r.HandleFunc("/categories", public(s.listCategories)).Methods(http.MethodGet)
	r.HandleFunc("/categories/{id}", public(s.getCategory)).Methods(http.MethodGet)
	r.HandleFunc("/categories/{id}", public(s.updateCategory)).Methods(http.MethodPut)
	r.HandleFunc("/categories/{id}", public(s.deleteCategory)).Methods(http.MethodDelete)

	r.HandleFunc("/products", public(s.createProduct)).Methods(http.MethodPost)
	r.HandleFunc("/products", public(s.listProducts)).Methods(http.MethodGet)
	r.HandleFunc("/products/search", public(s.searchProducts)).Methods(http.MethodGet)
	r.HandleFunc("/deleteproduct/{id}", protected(s.deleteProduct)).Methods(http.MethodDelete)

	r.NotFoundHandler = public(routeError(http.StatusNotFound, "Not found"))
	r.MethodNotAllowedHandler = public(routeError(http.StatusMethodNotAllowed, "Method not allowed"))

	return r
}

func routeError(status int, msg string) handlerFunc {
	return func(http.ResponseWriter, *http.Request) error {
		return &statusError{status: status, message: msg}
	}
}

// requestID tags each request with an id, reusing the caller's X-Request-ID when present.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
