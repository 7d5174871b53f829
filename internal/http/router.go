package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/dealdesk/internal/auth"
	authHandler "github.com/MrJamesThe3rd/dealdesk/internal/http/auth"
	"github.com/MrJamesThe3rd/dealdesk/internal/http/health"
	"github.com/MrJamesThe3rd/dealdesk/internal/http/transaction"
)

type Options struct {
	AllowedOrigins []string
	Timeout        time.Duration
	MaxInFlight    int

	// UploadsDir and UploadsPrefix expose filesystem-stored documents. Empty disables it.
	UploadsDir    string
	UploadsPrefix string
}

func New(
	opts Options,
	tokens *auth.Tokens,
	healthV1 *health.Handler,
	authV1 *authHandler.Handler,
	transactionsV1 *transaction.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if opts.MaxInFlight > 0 {
		router.Use(middleware.Throttle(opts.MaxInFlight))
	}

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	if opts.UploadsDir != "" && opts.UploadsPrefix != "" {
		router.Handle(opts.UploadsPrefix+"*", http.StripPrefix(opts.UploadsPrefix, http.FileServer(http.Dir(opts.UploadsDir))))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/health", healthV1.Routes)

		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			authV1.Routes(r)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(authHandler.Authenticate(tokens))
			r.Use(middleware.AllowContentType("application/json", "multipart/form-data"))
			transactionsV1.Routes(r)
		})
	})

	return router
}
