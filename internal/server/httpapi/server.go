// Package httpapi exposes the Memoir JSON API over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/memoir/internal/logging"
	"github.com/dmitrijs2005/memoir/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 5 * time.Second

type HTTPServer struct {
	address    string
	logger     logging.Logger
	users      *services.UserService
	categories *services.CategoryService
	memories   *services.MemoryService
	images     *services.ImageService
	validate   *requestValidator
}

func NewHTTPServer(a string, l logging.Logger, us *services.UserService, cs *services.CategoryService,
	ms *services.MemoryService, is *services.ImageService) *HTTPServer {
	return &HTTPServer{
		address:    a,
		logger:     l.With("module", "http_server"),
		users:      us,
		categories: cs,
		memories:   ms,
		images:     is,
		validate:   newRequestValidator(),
	}
}

// Handler builds the router.
func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.authenticate)

	r.Get("/healthz", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", s.register)
		r.Post("/login", s.login)
		r.Post("/refresh", s.refresh)
		r.Post("/logout", s.logout)
		r.Get("/verify/{token}", s.verify)
		r.Get("/users/{id}", s.getProfile)
		r.Get("/categories/{id}", s.getCategory)
		r.Get("/memories/public", s.listPublicMemories)
		r.Get("/memories/{id}", s.getMemory)

		r.Group(func(r chi.Router) {
			r.Use(requireActor)

			r.Get("/user", s.currentUser)
			r.Put("/users/{id}", s.updateProfile)

			r.Get("/categories", s.listCategories)
			r.Post("/categories", s.createCategory)
			r.Put("/categories/{id}", s.updateCategory)
			r.Delete("/categories/{id}", s.deleteCategory)

			r.Get("/memories", s.listMemories)
			r.Post("/memories", s.createMemory)
			r.Put("/memories/{id}", s.updateMemory)
			r.Delete("/memories/{id}", s.deleteMemory)

			r.Post("/images", s.presignImage)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAdmin)

			r.Get("/users", s.adminListUsers)
			r.Put("/users/{id}", s.adminUpdateUser)
			r.Delete("/users/{id}", s.adminDeleteUser)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-stopped
	return nil
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
