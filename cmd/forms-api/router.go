package main

import (
	"net/http"
	"time"

	"chimeral-forms/catalog"
	"chimeral-forms/contact"
	"chimeral-forms/middleware/accesslog"
	"chimeral-forms/middleware/origin"
	"chimeral-forms/middleware/ratelimit"
	"chimeral-forms/middleware/ratelimit/domain"
	"chimeral-forms/respond"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// requestTimeout fica abaixo do WriteTimeout do servidor para o handler
// ver o ctx expirar antes da conexão ser cortada.
const requestTimeout = 25 * time.Second

type routes struct {
	logger    *zap.Logger
	subscribe http.Handler
	notify    http.Handler
	inbox     *contact.Handler
	books     *catalog.Handler

	allowedOrigins []string
	apiRate        *ratelimit.Options
	concurrency    ratelimit.ConcurrencyOptions
}

func newRouter(rt routes) chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(accesslog.Middleware(rt.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(requestTimeout))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "forms-api"})
	})

	router.Route("/api", func(r chi.Router) {
		r.Use(ratelimit.ConcurrencyMiddleware(rt.concurrency))
		if rt.apiRate != nil {
			r.Use(ratelimit.Middleware(*rt.apiRate))
		}

		r.With(origin.Guard(rt.allowedOrigins)).Post("/subscribe", rt.subscribe.ServeHTTP)
		r.Post("/notify", rt.notify.ServeHTTP)
		r.Post("/presskit", rt.inbox.Press)
		r.Post("/contact", rt.inbox.Contact)
		rt.books.RegisterRoutes(r)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound, "endpoint not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return router
}

// guardFactory monta os WindowGuard de cada formulário sobre o backend
// escolhido (memória ou Redis).
type guardFactory struct {
	newLog func(name string, w domain.Window) domain.AttemptLog
	stats  domain.StatsStore
	logger *zap.Logger
}

func (f guardFactory) guard(endpoint, table string, w domain.Window) *ratelimit.WindowGuard {
	g := ratelimit.NewWindowGuard(endpoint, table, f.newLog(endpoint+":"+table, w), w)
	g.Stats = f.stats
	g.Logger = f.logger
	return g
}
