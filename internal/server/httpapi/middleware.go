package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/memoir/internal/common"
	"github.com/dmitrijs2005/memoir/internal/server/access"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type ctxKey string

const (
	actorKey     ctxKey = "actor"
	requestIDKey ctxKey = "requestID"

	requestIDHeader = "X-Request-ID"
)

// actorFrom returns the authenticated actor or nil for anonymous requests.
func actorFrom(ctx context.Context) *access.Actor {
	a, _ := ctx.Value(actorKey).(*access.Actor)
	return a
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// authenticate resolves a bearer token into an actor. Requests without a
// token continue anonymously; requests with a bad one are rejected.
func (s *HTTPServer) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || token == "" {
			s.fail(w, r, common.ErrInvalidToken)
			return
		}

		actor, err := s.users.Authenticate(r.Context(), token)
		if err != nil {
			s.fail(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireActor rejects anonymous requests before their body is read, so
// authentication failures win over validation errors.
func requireActor(next http.Handler) http.Handler {
	return guard(access.RequireAuthenticated, next)
}

func requireAdmin(next http.Handler) http.Handler {
	return guard(access.RequireAdmin, next)
}

func guard(check func(*access.Actor) error, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := check(actorFrom(r.Context())); err != nil {
			writeMessage(w, statusFor(err), err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger tags every request with an id and logs its outcome.
func (s *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		ctx := context.WithValue(r.Context(), requestIDKey, id)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.logger.Info(ctx, "request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}
