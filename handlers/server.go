package handlers

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/atomic"

	"paydash.app/cloud/internal/email"
	"paydash.app/cloud/internal/ratelimit"
	"paydash.app/cloud/internal/stripeapi"
	"paydash.app/cloud/models"
	"paydash.app/cloud/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

// PaymentsAPI is the slice of the provider client the handlers use.
// Tests swap in a stub.
type PaymentsAPI interface {
	Catalog(ctx context.Context) ([]models.CatalogItem, error)
	CreateProduct(ctx context.Context, input models.ProductInput) (*models.CatalogItem, error)
	RecentProducts(ctx context.Context, limit int) ([]models.CatalogItem, error)
	CreateCheckoutSession(ctx context.Context, priceID string, recurring bool) (*stripe.CheckoutSession, error)
	PaymentsSince(ctx context.Context, since time.Time) ([]models.Payment, error)
	CheckConnection(ctx context.Context) (*stripeapi.AccountInfo, error)
}

// Metrics are process-wide request counters, reported by /api/v1/status.
type Metrics struct {
	CheckoutSessions atomic.Int64
	WebhookEvents    atomic.Int64
	DuplicateEvents  atomic.Int64
	CatalogFallbacks atomic.Int64
}

type Server struct {
	Router    chi.Router
	Storage   storage.Storage
	Stripe    PaymentsAPI
	Receipts  *email.Sender
	Metrics   *Metrics
	Version   string
	templates *template.Template
}

func NewHttpServer(db storage.Storage, api PaymentsAPI) *Server {
	funcs := template.FuncMap{
		"amount": models.FormatAmount,
	}
	templates := template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))

	s := &Server{
		Storage:   db,
		Stripe:    api,
		Metrics:   &Metrics{},
		Version:   "dev",
		templates: templates,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Stripe-Signature"},
	}))

	limiter := ratelimit.New(120, time.Minute)

	r.Get("/", s.Catalog)
	r.Get("/products/new", s.ProductNew)
	r.Post("/products", s.ProductCreate)
	r.Get("/analytics", s.Analytics)
	r.Get("/health", s.Health)

	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Post("/checkout", s.Checkout)
		r.Get("/api/v1/products", s.ProductsAPI)
		r.Get("/api/v1/analytics/revenue", s.RevenueAPI)
		r.Get("/api/v1/status", s.StatusAPI)
		r.Post("/api/v1/webhooks/stripe", s.StripeWebhook)
	})

	s.Router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
