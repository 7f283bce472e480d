package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"bnpl/internal/metrics"
	"bnpl/internal/quotation"
	"bnpl/internal/storage"
	"bnpl/internal/stellar"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the HTTP API server.
// All business state lives behind the repository and gateway interfaces, so
// the same routes serve every storage/ledger deployment variant.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	repository storage.Repository
	gateway    stellar.Gateway
	quotes     *quotation.Engine
	port       int

	// development reveals secret keys and error details in responses
	development bool

	// secret of the demo account installment payments are drawn from;
	// empty means payments degrade to simulated results
	paymentSourceSecret string
}

// Options configures a Server beyond its collaborators
type Options struct {
	Port                int
	Development         bool
	PaymentSourceSecret string
}

// NewServer creates a new API server instance
func NewServer(repository storage.Repository, gateway stellar.Gateway, quotes *quotation.Engine, opts Options) *Server {
	router := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", opts.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:              router,
		repository:          repository,
		gateway:             gateway,
		quotes:              quotes,
		port:                opts.Port,
		development:         opts.Development,
		paymentSourceSecret: opts.PaymentSourceSecret,
	}

	s.registerRoutes()

	return s
}

// registerRoutes sets up all HTTP routes
func (s *Server) registerRoutes() {
	s.router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
		requestDurationMiddleware,
	)

	s.router.NotFound(s.handleNotFound)
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	s.router.Get("/", s.handleIndex)
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/quotation", s.handleQuotation)
		r.Post("/contract", s.handleCreateContract)
		r.Get("/contract/{id}", s.handleGetContract)
		r.Get("/contracts", s.handleListContracts)

		r.Route("/stellar", func(r chi.Router) {
			r.Get("/health", s.handleStellarHealth)
			r.Post("/create-account", s.handleCreateAccount)
			r.Get("/account/{publicKey}", s.handleAccountDetail)
			r.Get("/transactions/{accountID}", s.handleTransactions)
			r.Post("/process-payment", s.handleProcessPayment)
		})
	})
}

// requestDurationMiddleware records handling latency per route pattern
func requestDurationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}
		metrics.RequestDuration.WithLabelValues(pattern).Observe(time.Since(start).Seconds())
	})
}

// Router exposes the configured routes, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	slog.Info("API server starting",
		"port", s.port,
		"development", s.development,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
// Waits for active connections to close or context to timeout
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("API server shutting down...")
	return s.httpServer.Shutdown(ctx)
}
